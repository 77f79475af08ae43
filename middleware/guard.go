package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MrEthical07/authgate"
)

type sessionContextKey struct{}

// SessionFromContext returns the session injected by RequireSession.
func SessionFromContext(ctx context.Context) (authgate.SessionInfo, bool) {
	info, ok := ctx.Value(sessionContextKey{}).(authgate.SessionInfo)
	return info, ok
}

// CredentialFromRequest returns the session credential carried by r: the
// Authorization header when present, else the named cookie.
func CredentialFromRequest(r *http.Request, cookieName string) (string, bool) {
	if r == nil {
		return "", false
	}
	var cookieValue string
	if c, err := r.Cookie(cookieName); err == nil {
		cookieValue = c.Value
	}
	return authgate.ExtractCredential(r.Header.Get("Authorization"), cookieValue)
}

// RequireSession rejects requests without a valid session and passes the
// validated SessionInfo to next through the request context.
func RequireSession(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, authgate.ErrEngineNotReady)
				return
			}

			credential, _ := CredentialFromRequest(r, engine.Carrier().Name())
			info, err := engine.ValidateSession(r.Context(), credential)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError encodes err as {"error": kind, "message": public message} with
// the status from authgate.HTTPStatus.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authgate.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   string(authgate.Kind(err)),
		Message: authgate.PublicMessage(err),
	})
}
