package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds the services the HTTP router needs.
type RouterServices struct {
	Auth         AuthServiceInterface
	Validator    CredentialValidatorInterface
	Scanner      RouterScanner
	Tokens       AccessTokenReader
	CookieDomain string
	LandingPath  string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Validator:    services.Validator,
		CookieDomain: services.CookieDomain,
		LandingPath:  services.LandingPath,
		Logger:       services.Logger,
	}

	mux.Handle("POST /api/auth/login", http.HandlerFunc(authHandlers.LoginAPI))
	mux.Handle("POST /auth/login", http.HandlerFunc(authHandlers.SessionLogin))
	mux.Handle("GET /auth/login", http.HandlerFunc(authHandlers.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(authHandlers.Callback))
	mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(authHandlers.Status))

	if services.Scanner != nil && services.Tokens != nil {
		routerHandlers := &RouterHandlers{
			Scanner: services.Scanner,
			Tokens:  services.Tokens,
			Logger:  services.Logger,
		}
		requireAuth := RequireAuth(services.Auth)
		mux.Handle("GET /api/routers", requireAuth(http.HandlerFunc(routerHandlers.List)))
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Logging(logger)(Recover(logger)(mux))
}
