package httpapi

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

// Options tunes the router. The zero value is usable.
type Options struct {
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
	// Now is the clock used for cookie Max-Age; defaults to time.Now.
	Now func() time.Time
}

type api struct {
	engine *authgate.Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewRouter returns the HTTP surface for engine.
func NewRouter(engine *authgate.Engine, opts Options) http.Handler {
	a := &api{
		engine: engine,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(clientMeta)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors(engine.Config().AllowedOrigins()))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", a.login)
		r.Post("/authenticate", a.authenticate)
		r.Get("/callback", a.callback)
		r.Post("/logout", a.logout)
		r.Get("/me", a.me)
		r.Get("/validate", a.validate)
	})
	r.Get("/healthz", a.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return r
}

// requestID reuses a client-supplied X-Request-ID or mints a uuid, and
// echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(authgate.WithRequestID(r.Context(), id)))
	})
}

// clientMeta records the caller IP (after RealIP) and user agent for the
// login throttle and audit events.
func clientMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := authgate.WithClientIP(r.Context(), ip)
		ctx = authgate.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return authgate.ErrInvalidBody
	}
	return nil
}
