package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// Storage keys. The spellings mirror the original client-side store so
// the record layout stays recognizable across implementations.
const (
	KeyIdentityToken = "IdToken"
	KeyAccessToken   = "AccessToken"
	KeyRefreshToken  = "RefreshToken"
	KeyUser          = "mes_user"
	KeyAuthMethod    = "mes_auth_method"
	KeyTechID        = "techId"
	KeyAccessLevel   = "accessLevel"

	// keyLegacyToken predates the IdToken/AccessToken split. Never
	// written anymore, but logout still clears it.
	keyLegacyToken = "mes_auth_token"
)

// allKeys is every key any adapter has ever written. Clear removes all
// of them; leaving one behind (a stale identity token in particular)
// is a security defect.
var allKeys = []string{
	KeyIdentityToken,
	KeyAccessToken,
	KeyRefreshToken,
	KeyUser,
	KeyAuthMethod,
	KeyTechID,
	KeyAccessLevel,
	keyLegacyToken,
}

// Tiered is the token/session store facade over an ordered list of
// storage tiers. Reads check tiers in order (session-scoped first,
// persistent second); every login writes exactly one tier.
type Tiered struct {
	tiers []ports.KeyValue // read order
	write ports.KeyValue   // single write target
}

var _ ports.TokenStore = (*Tiered)(nil)

// NewTiered builds a tiered store. readOrder must list at least one
// tier; writeTier must be one of them (the persistent tier in the
// canonical wiring, so sessions survive a client restart).
func NewTiered(readOrder []ports.KeyValue, writeTier ports.KeyValue) (*Tiered, error) {
	if len(readOrder) == 0 {
		return nil, errors.New("at least one storage tier is required")
	}
	if writeTier == nil {
		return nil, errors.New("write tier is required")
	}
	found := false
	for _, tier := range readOrder {
		if tier == writeTier {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("write tier must be part of the read order")
	}
	return &Tiered{tiers: readOrder, write: writeTier}, nil
}

// get returns the first tier's value for key, or ErrKeyNotFound when no
// tier holds it.
func (t *Tiered) get(ctx context.Context, key string) (string, error) {
	for _, tier := range t.tiers {
		v, err := tier.Get(ctx, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrKeyNotFound) {
			return "", err
		}
	}
	return "", ErrKeyNotFound
}

// SaveLogin persists a session record to the write tier. The identity
// token and a valid user role are mandatory: a user record without an
// identity token must never be stored. The previous bundle is removed
// first, so a new login replaces it entirely; a key the new record
// leaves empty (a basic login after a cognito one, say) must not keep
// serving the old session's value. On a partial write failure the
// already-written keys are rolled back so no half-session survives.
func (t *Tiered) SaveLogin(ctx context.Context, rec domainauth.SessionRecord) error {
	if rec.Tokens.Empty() {
		return apperrors.Validation("session record has no identity token")
	}
	if !rec.User.Role.Valid() {
		return apperrors.Validation("session record has no valid role")
	}

	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}

	if err := t.write.Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clear previous session: %w", err)
	}

	writes := []struct{ key, value string }{
		{KeyIdentityToken, rec.Tokens.IdentityToken},
		{KeyAccessToken, rec.Tokens.AccessToken},
		{KeyRefreshToken, rec.Tokens.RefreshToken},
		{KeyUser, string(userJSON)},
		{KeyAuthMethod, string(rec.User.AuthMethod)},
		{KeyTechID, rec.TechID},
		{KeyAccessLevel, rec.AccessLevel},
	}

	written := make([]string, 0, len(writes))
	for _, w := range writes {
		if w.value == "" {
			continue // optional keys are simply absent
		}
		if err := t.write.Set(ctx, w.key, w.value); err != nil {
			// Roll back whatever landed; best effort, the write error wins.
			_ = t.write.Delete(ctx, written...)
			return fmt.Errorf("persist session key %s: %w", w.key, err)
		}
		written = append(written, w.key)
	}
	return nil
}

// User returns the stored user record, or nil when no session exists.
// A corrupt record reads as no session rather than an error to the
// caller's login-state checks.
func (t *Tiered) User(ctx context.Context) (*domainauth.User, error) {
	raw, err := t.get(ctx, KeyUser)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var u domainauth.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, nil
	}
	return &u, nil
}

// IdentityToken returns the stored identity token, or "" when absent.
func (t *Tiered) IdentityToken(ctx context.Context) (string, error) {
	return t.optional(ctx, KeyIdentityToken)
}

// AccessToken returns the stored backend access token, or "" when absent.
func (t *Tiered) AccessToken(ctx context.Context) (string, error) {
	return t.optional(ctx, KeyAccessToken)
}

// TechID returns the stored MES technician id, or "" when absent.
func (t *Tiered) TechID(ctx context.Context) (string, error) {
	return t.optional(ctx, KeyTechID)
}

// AccessLevel returns the stored MES access level, or "" when absent.
func (t *Tiered) AccessLevel(ctx context.Context) (string, error) {
	return t.optional(ctx, KeyAccessLevel)
}

// AuthMethod returns the stored adapter tag, or "" when absent.
func (t *Tiered) AuthMethod(ctx context.Context) (domainauth.Method, error) {
	v, err := t.optional(ctx, KeyAuthMethod)
	return domainauth.Method(v), err
}

func (t *Tiered) optional(ctx context.Context, key string) (string, error) {
	v, err := t.get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

// IsAuthenticated reports whether an identity token is present in any
// tier. It swallows tier errors: an unreachable store reads as "not
// authenticated", never as a panic on a page guard.
func (t *Tiered) IsAuthenticated(ctx context.Context) bool {
	v, err := t.get(ctx, KeyIdentityToken)
	return err == nil && v != ""
}

// Clear removes every session key from every tier, legacy keys
// included. Idempotent: clearing an empty store is a no-op.
func (t *Tiered) Clear(ctx context.Context) error {
	var firstErr error
	for _, tier := range t.tiers {
		if err := tier.Delete(ctx, allKeys...); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("clear session keys: %w", err)
		}
	}
	return firstErr
}
