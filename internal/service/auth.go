package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Adapters  []ports.CredentialAdapter
	Federated ports.FederatedProvider // optional; federated calls fail soft when nil
	Store     ports.TokenStore
	Logger    *slog.Logger
}

// AuthService orchestrates login, session persistence, and logout
// across the registered credential adapters. Every login path persists
// the session before returning a successful result, so a caller that
// sees Success=true can rely on the store.
type AuthService struct {
	adapters  map[domainauth.Method]ports.CredentialAdapter
	federated ports.FederatedProvider
	store     ports.TokenStore
	logger    *slog.Logger
}

// DefaultMethod is the credential method used when the caller does not
// name one.
const DefaultMethod = domainauth.MethodCognito

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	adapters := make(map[domainauth.Method]ports.CredentialAdapter, len(opts.Adapters))
	for _, a := range opts.Adapters {
		adapters[a.Method()] = a
	}
	return &AuthService{
		adapters:  adapters,
		federated: opts.Federated,
		store:     opts.Store,
		logger:    logger,
	}
}

// failResult is the generic expected-failure result. Callers never see
// internal detail through it.
func failResult() domainauth.Result {
	return domainauth.Result{Message: apperrors.MsgInternal}
}

// Login runs a credential login with the adapter registered for the
// given method (DefaultMethod when empty). A panicking adapter is
// contained here: the caller gets a failed result, never a crash.
func (s *AuthService) Login(ctx context.Context, method domainauth.Method, creds domainauth.Credentials) (res domainauth.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("login panicked", "method", method, "panic", fmt.Sprint(r))
			res = failResult()
		}
	}()

	if method == "" {
		method = DefaultMethod
	}
	adapter, ok := s.adapters[method]
	if !ok {
		s.logger.Warn("no adapter registered for method", "method", method)
		return failResult()
	}

	res, err := adapter.Login(ctx, creds)
	if err != nil {
		s.logger.Error("adapter login failed", "method", method, "error", err)
		return failResult()
	}
	if !res.Success {
		return res
	}
	return s.persist(ctx, res)
}

// LoginWithFederatedIdentity starts the redirect-based federated flow.
// When an existing provider session satisfies the login silently the
// result is complete and persisted; otherwise the result carries the
// redirect URL and the caller must send the browser there.
func (s *AuthService) LoginWithFederatedIdentity(ctx context.Context) (domainauth.Result, *ports.RedirectLogin, error) {
	if s.federated == nil {
		return failResult(), nil, apperrors.FederatedFlow("federated login is not configured")
	}

	res, redirect, err := s.federated.Initiate(ctx)
	if err != nil {
		s.logger.Error("federated initiate failed", "error", err)
		return domainauth.Result{Message: apperrors.UserMessage(err)}, nil, err
	}
	if redirect != nil {
		return domainauth.Result{RedirectURL: redirect.AuthURL}, redirect, nil
	}
	return s.persist(ctx, *res), nil, nil
}

// HandleRedirectResponse completes a pending federated callback. It
// returns nil when nothing was pending and no provider session exists.
func (s *AuthService) HandleRedirectResponse(ctx context.Context, cb ports.Callback) (*domainauth.Result, error) {
	if s.federated == nil {
		return nil, nil
	}
	res, err := s.federated.Resume(ctx, cb)
	if err != nil {
		s.logger.Error("federated resume failed", "error", err)
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	persisted := s.persist(ctx, *res)
	return &persisted, nil
}

// persist writes the session record for a successful result. A storage
// failure downgrades the result: a session that cannot be read back is
// not a login.
func (s *AuthService) persist(ctx context.Context, res domainauth.Result) domainauth.Result {
	if !res.Success {
		return res
	}
	if err := s.store.SaveLogin(ctx, res.Record()); err != nil {
		s.logger.Error("persist session failed", "error", err)
		return failResult()
	}
	return res
}

// Logout tears down the local session and, for federated logins,
// notifies the identity provider best-effort. Idempotent: logging out
// with no session succeeds.
func (s *AuthService) Logout(ctx context.Context) error {
	method, err := s.store.AuthMethod(ctx)
	if err != nil {
		s.logger.Warn("read auth method during logout", "error", err)
	}

	if method == domainauth.MethodAzure && s.federated != nil {
		if err := s.federated.SignOut(ctx); err != nil {
			s.logger.Warn("federated sign-out failed, clearing local session anyway", "error", err)
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear session")
	}
	s.logger.Info("logged out", "method", method)
	return nil
}

// CurrentUser returns the stored user record, or nil when no session exists.
func (s *AuthService) CurrentUser(ctx context.Context) (*domainauth.User, error) {
	return s.store.User(ctx)
}

// Token returns the session identity token, or "" when absent.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	return s.store.IdentityToken(ctx)
}

// AccessToken returns the backend access token, or "" when absent.
func (s *AuthService) AccessToken(ctx context.Context) (string, error) {
	return s.store.AccessToken(ctx)
}

// GetAuthMethod returns the stored adapter tag, or "" when absent.
func (s *AuthService) GetAuthMethod(ctx context.Context) (domainauth.Method, error) {
	return s.store.AuthMethod(ctx)
}

// IsAuthenticated reports whether an identity token is stored.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.store.IsAuthenticated(ctx)
}
