package stytch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/authgate/jwt"
	"github.com/MrEthical07/authgate/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	LiveBaseURL = "https://api.stytch.com"
	TestBaseURL = "https://test.stytch.com"

	tracerName      = "github.com/MrEthical07/authgate/provider/stytch"
	maxResponseSize = 1 << 20
)

// Config holds Stytch project credentials and transport settings.
type Config struct {
	ProjectID string
	Secret    string
	// BaseURL defaults to BaseURLForProject(ProjectID).
	BaseURL string
	// Timeout bounds each call, including reading the response body.
	Timeout time.Duration
	// B2B selects the organization-scoped endpoints.
	B2B bool

	HTTPClient *http.Client
	Tracer     trace.Tracer
}

// BaseURLForProject picks the sandbox host for test projects.
func BaseURLForProject(projectID string) string {
	if strings.HasPrefix(projectID, "project-test-") {
		return TestBaseURL
	}
	return LiveBaseURL
}

// Client is the configured provider variant backed by the Stytch REST API.
type Client struct {
	projectID string
	secret    string
	baseURL   string
	b2b       bool
	http      *http.Client
	tracer    trace.Tracer
	now       func() time.Time
}

var _ provider.Provider = (*Client)(nil)

// New validates cfg and returns a ready client. It performs no I/O.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("stytch project id is required")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("stytch secret is required")
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("stytch timeout must be >= 0")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = BaseURLForProject(cfg.ProjectID)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Client{
		projectID: cfg.ProjectID,
		secret:    cfg.Secret,
		baseURL:   baseURL,
		b2b:       cfg.B2B,
		http:      httpClient,
		tracer:    tracer,
		now:       time.Now,
	}, nil
}

func (c *Client) Configured() bool { return true }

func (c *Client) FindUserByEmail(ctx context.Context, email, organizationID string) (provider.Principal, error) {
	if c.b2b {
		req := memberSearchRequest{
			OrganizationIDs: []string{organizationID},
			Limit:           1,
			Query: searchQuery{
				Operator: "AND",
				Operands: []searchOperand{{FilterName: "member_emails", FilterValue: []string{email}}},
			},
		}
		var resp memberSearchResponse
		if err := c.post(ctx, "members.search", "/v1/b2b/organizations/members/search", req, &resp); err != nil {
			return provider.Principal{}, err
		}
		if len(resp.Members) == 0 || resp.Members[0].MemberID == "" {
			return provider.Principal{}, provider.ErrUserNotFound
		}
		return *resp.Members[0].principal(), nil
	}

	req := userSearchRequest{
		Limit: 1,
		Query: searchQuery{
			Operator: "AND",
			Operands: []searchOperand{{FilterName: "email_address", FilterValue: []string{email}}},
		},
	}
	var resp userSearchResponse
	if err := c.post(ctx, "users.search", "/v1/users/search", req, &resp); err != nil {
		return provider.Principal{}, err
	}
	if len(resp.Results) == 0 || resp.Results[0].UserID == "" {
		return provider.Principal{}, provider.ErrUserNotFound
	}
	return *resp.Results[0].principal(), nil
}

func (c *Client) SendMagicLink(ctx context.Context, req provider.MagicLinkRequest) (provider.SendResult, error) {
	if c.b2b {
		body := loginOrSignupRequest{
			OrganizationID:    req.OrganizationID,
			EmailAddress:      req.Email,
			LoginRedirectURL:  req.RedirectURL,
			SignupRedirectURL: req.RedirectURL,
			Locale:            req.Locale,
		}
		var resp loginOrSignupResponse
		if err := c.post(ctx, "magic_links.email.login_or_signup", "/v1/b2b/magic_links/email/login_or_signup", body, &resp); err != nil {
			return provider.SendResult{}, err
		}
		return provider.SendResult{RequestID: resp.RequestID, UserID: resp.Member.MemberID}, nil
	}

	body := loginOrCreateRequest{
		Email:              req.Email,
		LoginMagicLinkURL:  req.RedirectURL,
		SignupMagicLinkURL: req.RedirectURL,
		Locale:             req.Locale,
	}
	var resp loginOrCreateResponse
	if err := c.post(ctx, "magic_links.email.login_or_create", "/v1/magic_links/email/login_or_create", body, &resp); err != nil {
		return provider.SendResult{}, err
	}
	return provider.SendResult{RequestID: resp.RequestID, UserID: resp.UserID}, nil
}

func (c *Client) AuthenticateMagicLink(ctx context.Context, req provider.MagicLinkAuthRequest) (provider.AuthenticateResult, error) {
	minutes := int(req.SessionDuration / time.Minute)

	if c.b2b {
		body := b2bMagicLinkAuthenticateRequest{MagicLinksToken: req.Token, SessionDurationMinutes: minutes}
		var resp b2bMagicLinkAuthenticateResponse
		if err := c.post(ctx, "magic_links.authenticate", "/v1/b2b/magic_links/authenticate", body, &resp); err != nil {
			return provider.AuthenticateResult{}, err
		}
		out := provider.AuthenticateResult{
			RequestID:      resp.RequestID,
			SessionToken:   resp.SessionToken,
			PrincipalID:    resp.MemberID,
			OrganizationID: resp.OrganizationID,
			Principal:      resp.Member.principal(),
		}
		if resp.MemberSession != nil {
			out.ExpiresAt = resp.MemberSession.ExpiresAt
		}
		return out, nil
	}

	body := magicLinkAuthenticateRequest{Token: req.Token, SessionDurationMinutes: minutes}
	var resp magicLinkAuthenticateResponse
	if err := c.post(ctx, "magic_links.authenticate", "/v1/magic_links/authenticate", body, &resp); err != nil {
		return provider.AuthenticateResult{}, err
	}
	out := provider.AuthenticateResult{
		RequestID:    resp.RequestID,
		SessionToken: resp.SessionToken,
		PrincipalID:  resp.UserID,
		Principal:    resp.User.principal(),
	}
	if resp.Session != nil {
		out.ExpiresAt = resp.Session.ExpiresAt
	}
	return out, nil
}

func (c *Client) AuthenticateSession(ctx context.Context, token string) (provider.SessionResult, error) {
	body, diag := c.credentialBody(token)

	if c.b2b {
		var resp b2bSessionAuthenticateResponse
		if err := c.post(ctx, "sessions.authenticate", "/v1/b2b/sessions/authenticate", body, &resp, diag...); err != nil {
			return provider.SessionResult{}, err
		}
		out := provider.SessionResult{RequestID: resp.RequestID, Principal: resp.Member.principal()}
		if resp.MemberSession != nil {
			out.PrincipalID = resp.MemberSession.MemberID
			out.OrganizationID = resp.MemberSession.OrganizationID
			out.ExpiresAt = resp.MemberSession.ExpiresAt
		}
		return out, nil
	}

	var resp sessionAuthenticateResponse
	if err := c.post(ctx, "sessions.authenticate", "/v1/sessions/authenticate", body, &resp, diag...); err != nil {
		return provider.SessionResult{}, err
	}
	out := provider.SessionResult{RequestID: resp.RequestID, Principal: resp.User.principal()}
	if resp.Session != nil {
		out.PrincipalID = resp.Session.UserID
		out.ExpiresAt = resp.Session.ExpiresAt
	}
	if out.PrincipalID == "" && out.Principal != nil {
		out.PrincipalID = out.Principal.ID
	}
	return out, nil
}

func (c *Client) RevokeSession(ctx context.Context, token string) (provider.RevokeResult, error) {
	path := "/v1/sessions/revoke"
	if c.b2b {
		path = "/v1/b2b/sessions/revoke"
	}
	body, diag := c.credentialBody(token)
	var resp revokeResponse
	if err := c.post(ctx, "sessions.revoke", path, body, &resp, diag...); err != nil {
		return provider.RevokeResult{}, err
	}
	return provider.RevokeResult{RequestID: resp.RequestID}, nil
}

// credentialBody sends credentials that decode as a JWT in session_jwt and
// everything else, including eyJ-prefixed garbage, in session_token. The
// unverified header and exp go on the span; the provider still decides.
func (c *Client) credentialBody(token string) (sessionCredential, []attribute.KeyValue) {
	claims, err := jwt.Inspect(token)
	if err != nil {
		return sessionCredential{SessionToken: token}, []attribute.KeyValue{
			attribute.String("session.credential", "token"),
		}
	}

	diag := []attribute.KeyValue{
		attribute.String("session.credential", "jwt"),
		attribute.String("session.jwt.alg", claims.Algorithm),
		attribute.Bool("session.jwt.expired", claims.Expired(c.now())),
	}
	if claims.KeyID != "" {
		diag = append(diag, attribute.String("session.jwt.kid", claims.KeyID))
	}
	return sessionCredential{SessionJWT: token}, diag
}

func (c *Client) post(ctx context.Context, op, path string, in, out any, attrs ...attribute.KeyValue) (err error) {
	ctx, span := c.tracer.Start(ctx, "stytch."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodPost),
			attribute.String("url.path", path),
			attribute.Bool("stytch.b2b", c.b2b),
		),
		trace.WithAttributes(attrs...),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
		}
		span.End()
	}()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.SetBasicAuth(c.projectID, c.secret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.Unavailable(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return provider.Unavailable(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return provider.Unavailable(fmt.Errorf("%s: status %d", op, resp.StatusCode))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		span.SetAttributes(attribute.String("stytch.error_type", apiErr.ErrorType))
		return &provider.Error{
			StatusCode: resp.StatusCode,
			Type:       apiErr.ErrorType,
			Message:    apiErr.ErrorMessage,
			RequestID:  apiErr.RequestID,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return provider.Unavailable(fmt.Errorf("decode %s response: %w", op, err))
	}
	return nil
}

// NewProvider returns a Client when both credentials are present and
// provider.Unconfigured otherwise.
func NewProvider(cfg Config) (provider.Provider, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" || strings.TrimSpace(cfg.Secret) == "" {
		return provider.Unconfigured{}, nil
	}
	return New(cfg)
}
