package ports

// Package ports defines interfaces (hexagonal ports) for auth-related
// behavior. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
)

// CredentialAdapter is one login strategy. The three variants
// (federated, service-exchange, static) are mutually exclusive per
// login attempt; the orchestrator selects one by its Method tag.
//
// Expected failures (bad credentials, upstream rejection) come back as
// a Result with Success=false; the error return is reserved for truly
// unexpected conditions.
type CredentialAdapter interface {
	Method() domainauth.Method
	Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Result, error)
}

// RedirectLogin carries everything the HTTP layer needs to send the
// browser to the identity provider: the provider auth URL plus the
// state and nonce to pin in cookies for the round-trip.
type RedirectLogin struct {
	AuthURL string
	State   string
	Nonce   string
}

// Callback is the set of parameters the identity provider returns on
// its redirect back to the application. A zero Callback means no
// redirect is pending.
type Callback struct {
	Code  string
	State string
	Nonce string
}

// Pending reports whether the callback carries a redirect response.
func (c Callback) Pending() bool { return c.Code != "" }

// FederatedProvider initiates and completes the redirect-based
// federated identity flow.
type FederatedProvider interface {
	// Initiate attempts silent reuse of an existing federated session
	// first. On silent success it returns a completed result; otherwise
	// it returns the redirect the caller must perform. Exactly one of
	// the two returns is non-nil on success.
	Initiate(ctx context.Context) (*domainauth.Result, *RedirectLogin, error)

	// Resume is called once on startup of the redirect target page. It
	// processes a pending callback if present, or attempts silent token
	// acquisition against any already-known account. (nil, nil) means
	// no session and no error: the user never logged in via this path.
	Resume(ctx context.Context, cb Callback) (*domainauth.Result, error)

	// SignOut invalidates the federated session with the identity
	// provider. Best-effort: the caller logs failures and proceeds with
	// local teardown regardless.
	SignOut(ctx context.Context) error
}

// ValidatedUser is the normalized record the credential-validation flow
// produces: the backend-confirmed email and access level, optional tech
// id, and the token bundle for subsequent backend calls.
type ValidatedUser struct {
	UserEmail   string
	AccessLevel string
	TechID      string
	Tokens      domainauth.TokenBundle
}

// CredentialValidator performs the two-step service-token exchange and
// user-credential validation. The in-process implementation lives in
// internal/service; an HTTP implementation posting to the login
// endpoint lives in internal/adapters/exchange.
type CredentialValidator interface {
	Validate(ctx context.Context, creds domainauth.Credentials) (ValidatedUser, error)
}

// TokenIssuer exchanges a fixed service credential for a bearer token
// set (the InitiateAuth-equivalent operation).
type TokenIssuer interface {
	InitiateAuth(ctx context.Context, username, password string) (domainauth.TokenBundle, error)
}

// UserDirectory validates the real user credential against the business
// backend, authorized by a bearer token from the TokenIssuer.
type UserDirectory interface {
	GetUserInfo(ctx context.Context, bearer string, creds domainauth.Credentials) (ValidatedUser, error)
}
