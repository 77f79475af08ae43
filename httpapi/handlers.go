package httpapi

import (
	"net/http"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/middleware"
)

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req authgate.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	res, err := a.engine.InitiateLogin(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *api) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authgate.AuthenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	info, err := a.engine.Authenticate(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	a.setSession(w, info)
	writeJSON(w, http.StatusCreated, info.Principal())
}

func (a *api) callback(w http.ResponseWriter, r *http.Request) {
	info, err := a.engine.AuthenticateCallback(r.Context(), r.URL.Query().Get("stytch_token"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	a.setSession(w, info)
	writeJSON(w, http.StatusOK, info.Principal())
}

// logout clears the cookie whenever a credential was presented, even if the
// provider refused the revocation.
func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	credential, ok := a.credential(r)
	if ok {
		http.SetCookie(w, a.engine.Carrier().ClearCookie())
	}

	res, err := a.engine.Logout(r.Context(), credential)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	credential, _ := a.credential(r)
	principal, err := a.engine.CurrentPrincipal(r.Context(), credential)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, principal)
}

func (a *api) validate(w http.ResponseWriter, r *http.Request) {
	credential, _ := a.credential(r)
	a.logger.DebugContext(r.Context(), "validating session",
		"request_id", authgate.RequestIDFromContext(r.Context()),
		"has_cookie", a.engine.Carrier().Value(r) != "",
		"has_auth_header", r.Header.Get("Authorization") != "",
	)

	info, err := a.engine.ValidateSession(r.Context(), credential)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	principal := info.Principal()
	writeJSON(w, http.StatusOK, authgate.ValidationResult{
		Valid:     true,
		User:      principal,
		ExpiresAt: principal.ExpiresAt,
	})
}

type healthBody struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	mode := "unconfigured"
	if a.engine.ProviderConfigured() {
		mode = "configured"
	}
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Provider: mode})
}

func (a *api) credential(r *http.Request) (string, bool) {
	return middleware.CredentialFromRequest(r, a.engine.Carrier().Name())
}

func (a *api) setSession(w http.ResponseWriter, info authgate.SessionInfo) {
	http.SetCookie(w, a.engine.Carrier().SetCookie(info.SessionToken, info.ExpiresAt, a.now()))
}
