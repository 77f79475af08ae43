package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/authgate/provider"
	"github.com/MrEthical07/authgate/provider/providertest"
)

var errThrottled = errors.New("throttled")

func TestClassifyProviderError(t *testing.T) {
	cases := []struct {
		err  error
		want FailureKind
	}{
		{nil, FailureNone},
		{provider.ErrNotConfigured, FailureNotConfigured},
		{provider.Unavailable(context.DeadlineExceeded), FailureUnavailable},
		{provider.ErrUserNotFound, FailureUserNotFound},
		{&provider.Error{StatusCode: 401, Type: "unauthorized_credentials"}, FailureRejected},
		{&provider.Error{StatusCode: 429, Type: "too_many_requests"}, FailureProviderThrottled},
		{errors.New("boom"), FailureInternal},
	}
	for _, tc := range cases {
		if got := ClassifyProviderError(tc.err); got != tc.want {
			t.Fatalf("ClassifyProviderError(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestRunLoginUnknownUserSkipsSend(t *testing.T) {
	p := providertest.New()
	res := RunLogin(context.Background(), LoginInput{Email: "ghost@example.com"}, LoginDeps{
		Provider:            p,
		RequireExistingUser: true,
	})
	if res.Failure != FailureUserNotFound || res.Stage != StageLookup {
		t.Fatalf("expected user-not-found at lookup, got %+v", res)
	}
	if p.Calls(providertest.OpSendMagicLink) != 0 {
		t.Fatal("send must not run after a failed lookup")
	}
}

func TestRunLoginSendsWithRedirect(t *testing.T) {
	p := providertest.New()
	p.PutUser(provider.Principal{ID: "user-1", Email: "alice@example.com"})

	res := RunLogin(context.Background(), LoginInput{Email: "alice@example.com", Locale: "fr"}, LoginDeps{
		Provider:            p,
		RequireExistingUser: true,
		RedirectURL:         "https://app.example.com/auth/callback",
	})
	if res.Failure != FailureNone || res.Send.RequestID == "" || res.UserID != "user-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	sent := p.Sent()
	if len(sent) != 1 || sent[0].RedirectURL != "https://app.example.com/auth/callback" || sent[0].Locale != "fr" {
		t.Fatalf("unexpected send request %+v", sent)
	}
}

func TestRunLoginThrottle(t *testing.T) {
	p := providertest.New()
	deps := LoginDeps{
		Provider:         p,
		ThrottleRejected: errThrottled,
		Throttle: func(context.Context, string, string) error {
			return errThrottled
		},
	}
	res := RunLogin(context.Background(), LoginInput{Email: "a@example.com"}, deps)
	if res.Failure != FailureRateLimited || res.Stage != StageThrottle {
		t.Fatalf("expected throttle failure, got %+v", res)
	}
	if p.TotalCalls() != 0 {
		t.Fatal("throttled login must not reach the provider")
	}

	backendDown := errors.New("redis down")
	deps.Throttle = func(context.Context, string, string) error { return backendDown }
	res = RunLogin(context.Background(), LoginInput{Email: "a@example.com"}, deps)
	if res.Failure != FailureNone || !errors.Is(res.ThrottleErr, backendDown) {
		t.Fatalf("throttle backend failure must be reported and bypassed, got %+v", res)
	}
}

func TestRunLoginUnconfiguredFailsFast(t *testing.T) {
	called := false
	res := RunLogin(context.Background(), LoginInput{Email: "a@example.com"}, LoginDeps{
		Provider: provider.Unconfigured{},
		Throttle: func(context.Context, string, string) error {
			called = true
			return nil
		},
	})
	if res.Failure != FailureNotConfigured {
		t.Fatalf("expected not configured, got %+v", res)
	}
	if called {
		t.Fatal("throttle must not be consulted for an unconfigured provider")
	}
}

func TestRunAuthenticateDispatch(t *testing.T) {
	p := providertest.New()
	p.PutSession("sess_abc", provider.Principal{ID: "user-1"}, time.Now().Add(time.Hour))
	p.IssueMagicLink("bob@example.com", "ml-token")
	deps := AuthenticateDeps{Provider: p, SessionDuration: time.Hour}

	res := RunAuthenticate(context.Background(), "sess_abc", FlowSession, deps)
	if res.Failure != FailureNone || res.Session.PrincipalID != "user-1" {
		t.Fatalf("unexpected session result %+v", res)
	}
	if p.Calls(providertest.OpAuthenticateSession) != 1 || p.Calls(providertest.OpAuthenticateMagicLink) != 0 {
		t.Fatal("session flow must call AuthenticateSession only")
	}

	res = RunAuthenticate(context.Background(), "ml-token", FlowMagicLink, deps)
	if res.Failure != FailureNone || res.MagicLink.SessionToken == "" {
		t.Fatalf("unexpected magic link result %+v", res)
	}

	res = RunAuthenticate(context.Background(), "ml-token", FlowMagicLink, deps)
	if res.Failure != FailureRejected {
		t.Fatalf("redeemed magic link must be rejected, got %+v", res)
	}
}

func TestRunSessionOps(t *testing.T) {
	p := providertest.New()
	p.PutSession("sess_live", provider.Principal{ID: "user-2"}, time.Now().Add(time.Hour))
	deps := SessionDeps{Provider: p}

	if res := RunValidateSession(context.Background(), "sess_live", deps); res.Failure != FailureNone {
		t.Fatalf("expected live session, got %+v", res)
	}
	if res := RunRevokeSession(context.Background(), "sess_live", deps); res.Failure != FailureNone {
		t.Fatalf("expected revoke success, got %+v", res)
	}
	if res := RunValidateSession(context.Background(), "sess_live", deps); res.Failure != FailureRejected {
		t.Fatalf("revoked session must be rejected, got %+v", res)
	}

	p.FailWith(providertest.OpRevokeSession, provider.Unavailable(errors.New("503")))
	if res := RunRevokeSession(context.Background(), "sess_any", deps); res.Failure != FailureUnavailable {
		t.Fatalf("expected unavailable, got %+v", res)
	}
}

func TestServiceInitialized(t *testing.T) {
	if (Service{}).Initialized() {
		t.Fatal("zero service must not report initialized")
	}
	p := providertest.New()
	s := New(Deps{
		Login:        LoginDeps{Provider: p},
		Authenticate: AuthenticateDeps{Provider: p},
		Session:      SessionDeps{Provider: p},
	})
	if !s.Initialized() {
		t.Fatal("wired service must report initialized")
	}
}
