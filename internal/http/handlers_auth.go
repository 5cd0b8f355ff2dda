package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// AuthServiceInterface defines the auth operations the HTTP layer needs.
type AuthServiceInterface interface {
	Login(ctx context.Context, method domainauth.Method, creds domainauth.Credentials) domainauth.Result
	LoginWithFederatedIdentity(ctx context.Context) (domainauth.Result, *ports.RedirectLogin, error)
	HandleRedirectResponse(ctx context.Context, cb ports.Callback) (*domainauth.Result, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domainauth.User, error)
	IsAuthenticated(ctx context.Context) bool
}

// CredentialValidatorInterface is the two-step validator backing the
// login API endpoint.
type CredentialValidatorInterface interface {
	Validate(ctx context.Context, creds domainauth.Credentials) (ports.ValidatedUser, error)
}

// loginEntryPath is where failed federated round-trips land.
const loginEntryPath = "/auth/login"

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Validator    CredentialValidatorInterface
	CookieDomain string
	LandingPath  string // post-login destination, "/" when empty
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) landing() string {
	if h.LandingPath != "" {
		return h.LandingPath
	}
	return "/"
}

// loginRequest is the login API request body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the login API success body. The field names are the
// contract consumers and the remote-validator client rely on.
type loginResponse struct {
	UserEmail    string `json:"useremail"`
	AccessLevel  string `json:"accesslevel"`
	TechID       string `json:"techId,omitempty"`
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// LoginAPI handles the credential-validation endpoint.
// POST /api/auth/login.
func (h *AuthHandlers) LoginAPI(w http.ResponseWriter, r *http.Request) {
	if h.Validator == nil {
		WriteError(w, http.StatusInternalServerError, apperrors.MsgServiceAuth)
		return
	}

	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	h.logger().InfoContext(r.Context(), "login attempt", "username", req.Username)

	validated, err := h.Validator.Validate(r.Context(), domainauth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login rejected",
			"username", req.Username,
			"code", apperrors.GetCode(err),
			"error", err)
		WriteError(w, statusForError(err), apperrors.UserMessage(err))
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		UserEmail:    validated.UserEmail,
		AccessLevel:  validated.AccessLevel,
		TechID:       validated.TechID,
		Token:        validated.Tokens.IdentityToken,
		AccessToken:  validated.Tokens.AccessToken,
		RefreshToken: validated.Tokens.RefreshToken,
	})
}

// sessionLoginRequest is the session login request body. Method is
// optional; the orchestrator falls back to its default adapter.
type sessionLoginRequest struct {
	Method   string `json:"method,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionLogin dispatches a credential login through the orchestrator,
// which persists the session the auth guard and the router API read.
// POST /auth/login.
func (h *AuthHandlers) SessionLogin(w http.ResponseWriter, r *http.Request) {
	var req sessionLoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	h.logger().InfoContext(r.Context(), "session login attempt",
		"username", req.Username,
		"method", req.Method)

	res := h.Svc.Login(r.Context(), domainauth.Method(req.Method), domainauth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = apperrors.MsgInternal
		}
		WriteError(w, http.StatusUnauthorized, msg)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    res.User,
	})
}

// statusForError maps a validation failure to its HTTP status. Bad
// user credentials are the caller's problem; everything else is ours.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Login starts the federated login flow.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	res, redirect, err := h.Svc.LoginWithFederatedIdentity(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, apperrors.UserMessage(err))
		return
	}

	if redirect == nil {
		// Silent login satisfied the request; no provider round-trip.
		if res.User != nil {
			h.logger().InfoContext(r.Context(), "silent login", "username", res.User.Username)
		}
		http.Redirect(w, r, redirectURI, http.StatusFound)
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{
		State:       redirect.State,
		Nonce:       redirect.Nonce,
		RedirectURI: redirectURI,
	})
	http.Redirect(w, r, redirect.AuthURL, http.StatusFound)
}

// Callback completes the federated redirect. It must run before any
// authenticated-route guard; failures send the browser back to the
// login entry point rather than rendering an error.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		h.failToLogin(w, r, "missing_code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.failToLogin(w, r, "invalid_state")
		return
	}
	nonce := ""
	if nonceCookie, err := r.Cookie("oauth_nonce"); err == nil {
		nonce = nonceCookie.Value
	}

	res, err := h.Svc.HandleRedirectResponse(r.Context(), ports.Callback{
		Code:  code,
		State: state,
		Nonce: nonce,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "federated callback failed",
			"code", apperrors.GetCode(err),
			"error", err)
		h.failToLogin(w, r, "federated_flow")
		return
	}
	if res == nil || !res.Success {
		h.failToLogin(w, r, "login_failed")
		return
	}

	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// failToLogin clears the round-trip cookies and sends the browser back
// to the login entry point with a machine-readable error tag.
func (h *AuthHandlers) failToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")
	http.Redirect(w, r, loginEntryPath+"?error="+url.QueryEscape(reason), http.StatusFound)
}

// Logout tears down the session.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Logout(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		WriteError(w, http.StatusInternalServerError, apperrors.MsgInternal)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.IsAuthenticated(r.Context()) {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	user, err := h.Svc.CurrentUser(r.Context())
	if err != nil || user == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values pinned in cookies across the
// provider round-trip.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := isSecureRequest(r)
	for name, value := range map[string]string{
		"oauth_state":         p.State,
		"oauth_nonce":         p.Nonce,
		"post_login_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// getPostLoginRedirect returns the post-login redirect and clears its cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := h.landing()
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		if candidate := safeRedirectPath(redirectCookie.Value); candidate != "/" {
			redirectURI = candidate
		}
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirectURI
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// safeRedirectPath ensures the redirect is a same-origin relative path
// starting with "/". Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
