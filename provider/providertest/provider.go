// Package providertest provides an in-memory provider.Provider for tests and
// local demos.
package providertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/authgate/provider"
	"github.com/google/uuid"
)

// Op names a Provider method for call counting and error injection.
type Op string

const (
	OpSendMagicLink         Op = "send_magic_link"
	OpAuthenticateMagicLink Op = "authenticate_magic_link"
	OpAuthenticateSession   Op = "authenticate_session"
	OpRevokeSession         Op = "revoke_session"
	OpFindUserByEmail       Op = "find_user_by_email"
)

type storedSession struct {
	principal provider.Principal
	expiresAt time.Time
}

// Provider keeps users, pending magic links, and sessions in memory.
// The zero value is not usable; call New.
type Provider struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]provider.Principal // by email
	magicLinks map[string]string             // token -> email
	sessions   map[string]storedSession
	errs       map[Op]error
	calls      map[Op]int
	sent       []provider.MagicLinkRequest

	// OmitProfile drops Principal from authenticate results.
	OmitProfile bool
	// OmitSessionExpiry drops ExpiresAt from authenticate results.
	OmitSessionExpiry bool
}

var _ provider.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		now:        time.Now,
		users:      make(map[string]provider.Principal),
		magicLinks: make(map[string]string),
		sessions:   make(map[string]storedSession),
		errs:       make(map[Op]error),
		calls:      make(map[Op]int),
	}
}

// WithClock replaces the time source.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
	return p
}

func (p *Provider) PutUser(u provider.Principal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[u.Email] = u
}

// IssueMagicLink registers token as a redeemable link for email.
func (p *Provider) IssueMagicLink(email, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.magicLinks[token] = email
}

// PutSession registers token as a live session for the principal.
func (p *Provider) PutSession(token string, principal provider.Principal, expiresAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[token] = storedSession{principal: principal, expiresAt: expiresAt}
}

// FailWith makes every later call to op return err. A nil err clears it.
func (p *Provider) FailWith(op Op, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.errs, op)
		return
	}
	p.errs[op] = err
}

// Calls reports how many times op was invoked.
func (p *Provider) Calls(op Op) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calls[op]
}

// TotalCalls reports invocations across all operations.
func (p *Provider) TotalCalls() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

// Sent returns copies of every accepted SendMagicLink request.
func (p *Provider) Sent() []provider.MagicLinkRequest {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]provider.MagicLinkRequest, len(p.sent))
	copy(out, p.sent)
	return out
}

// HasSession reports whether token is still registered.
func (p *Provider) HasSession(token string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.sessions[token]
	return ok
}

func (p *Provider) Configured() bool { return true }

func (p *Provider) begin(ctx context.Context, op Op) error {
	p.calls[op]++
	if err := ctx.Err(); err != nil {
		return provider.Unavailable(err)
	}
	return p.errs[op]
}

func (p *Provider) FindUserByEmail(ctx context.Context, email, organizationID string) (provider.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, OpFindUserByEmail); err != nil {
		return provider.Principal{}, err
	}
	u, ok := p.users[email]
	if !ok || (organizationID != "" && u.OrganizationID != organizationID) {
		return provider.Principal{}, provider.ErrUserNotFound
	}
	return u, nil
}

func (p *Provider) SendMagicLink(ctx context.Context, req provider.MagicLinkRequest) (provider.SendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, OpSendMagicLink); err != nil {
		return provider.SendResult{}, err
	}
	u, ok := p.users[req.Email]
	if !ok {
		u = provider.Principal{ID: "user-" + uuid.NewString(), OrganizationID: req.OrganizationID, Email: req.Email}
		p.users[req.Email] = u
	}
	p.sent = append(p.sent, req)
	return provider.SendResult{RequestID: "request-" + uuid.NewString(), UserID: u.ID}, nil
}

func (p *Provider) AuthenticateMagicLink(ctx context.Context, req provider.MagicLinkAuthRequest) (provider.AuthenticateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, OpAuthenticateMagicLink); err != nil {
		return provider.AuthenticateResult{}, err
	}
	email, ok := p.magicLinks[req.Token]
	if !ok {
		return provider.AuthenticateResult{}, &provider.Error{StatusCode: 404, Type: "magic_link_not_found"}
	}
	delete(p.magicLinks, req.Token)

	u := p.users[email]
	if u.ID == "" {
		u = provider.Principal{ID: "user-" + uuid.NewString(), Email: email}
		p.users[email] = u
	}

	token := "sess_" + uuid.NewString()
	expiresAt := p.now().Add(req.SessionDuration)
	p.sessions[token] = storedSession{principal: u, expiresAt: expiresAt}

	out := provider.AuthenticateResult{
		RequestID:      "request-" + uuid.NewString(),
		SessionToken:   token,
		PrincipalID:    u.ID,
		OrganizationID: u.OrganizationID,
	}
	if !p.OmitProfile {
		profile := u
		out.Principal = &profile
	}
	if !p.OmitSessionExpiry {
		out.ExpiresAt = expiresAt
	}
	return out, nil
}

func (p *Provider) AuthenticateSession(ctx context.Context, token string) (provider.SessionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, OpAuthenticateSession); err != nil {
		return provider.SessionResult{}, err
	}
	s, ok := p.sessions[token]
	if !ok || (!s.expiresAt.IsZero() && !s.expiresAt.After(p.now())) {
		return provider.SessionResult{}, &provider.Error{StatusCode: 404, Type: "session_not_found"}
	}
	out := provider.SessionResult{
		RequestID:      "request-" + uuid.NewString(),
		PrincipalID:    s.principal.ID,
		OrganizationID: s.principal.OrganizationID,
	}
	if !p.OmitProfile {
		profile := s.principal
		out.Principal = &profile
	}
	if !p.OmitSessionExpiry {
		out.ExpiresAt = s.expiresAt
	}
	return out, nil
}

func (p *Provider) RevokeSession(ctx context.Context, token string) (provider.RevokeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, OpRevokeSession); err != nil {
		return provider.RevokeResult{}, err
	}
	if _, ok := p.sessions[token]; !ok {
		return provider.RevokeResult{}, &provider.Error{StatusCode: 404, Type: "session_not_found"}
	}
	delete(p.sessions, token)
	return provider.RevokeResult{RequestID: fmt.Sprintf("request-revoke-%d", p.calls[OpRevokeSession])}, nil
}
