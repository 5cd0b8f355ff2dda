package ports

import (
	"context"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
)

// KeyValue is one storage tier of the token/session store. Get returns
// ErrKeyNotFound (from internal/store) wrapped or sentinel-equal when
// the key is absent; Delete of a missing key is not an error.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenStore persists the token bundle, the serialized user record, the
// auth-method tag, and the MES side keys for the active session. Reads
// check a session-scoped tier before the persistent tier; writes go to
// exactly one tier.
type TokenStore interface {
	// SaveLogin persists a full session record. It either writes every
	// key or none; a partially written session is a defect.
	SaveLogin(ctx context.Context, rec domainauth.SessionRecord) error

	// User returns the stored user record, or nil when no session exists.
	User(ctx context.Context) (*domainauth.User, error)

	// IdentityToken returns the stored identity token, or "" when absent.
	IdentityToken(ctx context.Context) (string, error)

	// AccessToken returns the stored backend access token, or "" when absent.
	AccessToken(ctx context.Context) (string, error)

	// AuthMethod returns the stored adapter tag, or "" when absent.
	AuthMethod(ctx context.Context) (domainauth.Method, error)

	// IsAuthenticated reports whether an identity token is present in
	// any tier. Cheap and side-effect-free.
	IsAuthenticated(ctx context.Context) bool

	// Clear removes every key written by every adapter, across all
	// tiers, including legacy keys. Idempotent.
	Clear(ctx context.Context) error
}
