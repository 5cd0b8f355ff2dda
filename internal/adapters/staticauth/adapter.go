package staticauth

// Package staticauth implements the fixed-credential demo adapter. It
// validates against one configured username/password pair and issues a
// synthetic token. Demo and air-gapped deployments only.

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// Config holds the demo credential pair and user shape.
type Config struct {
	Username string
	Password string
	Email    string
	Name     string
	Role     domainauth.Role

	// Delay simulates upstream latency so the demo path exercises the
	// same loading states as the real adapters. Zero disables it.
	Delay time.Duration
}

// Adapter validates a single static credential pair.
type Adapter struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.CredentialAdapter = (*Adapter)(nil)

// NewAdapter creates a static-credential adapter. Username and password
// must both be configured.
func NewAdapter(cfg Config, logger *slog.Logger) (*Adapter, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("static auth requires a configured username and password")
	}
	if cfg.Email == "" {
		cfg.Email = cfg.Username + "@mes.local"
	}
	if cfg.Name == "" {
		cfg.Name = "Demo User"
	}
	if !cfg.Role.Valid() {
		cfg.Role = domainauth.RoleAdmin
	}
	return &Adapter{cfg: cfg, logger: logger, now: time.Now}, nil
}

// Method returns the credential method this adapter serves.
func (a *Adapter) Method() domainauth.Method { return domainauth.MethodBasic }

// Login checks the credential pair against the configured one. The
// optional delay honors context cancellation.
func (a *Adapter) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Result, error) {
	if a.cfg.Delay > 0 {
		timer := time.NewTimer(a.cfg.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domainauth.Result{}, ctx.Err()
		}
	}

	if creds.Username != a.cfg.Username || creds.Password != a.cfg.Password {
		a.logger.Warn("static login rejected", "username", creds.Username)
		return domainauth.Result{Message: apperrors.MsgInvalidCredentials}, nil
	}

	user := domainauth.User{
		ID:         a.cfg.Username,
		Username:   a.cfg.Username,
		Email:      a.cfg.Email,
		Name:       a.cfg.Name,
		Role:       a.cfg.Role,
		AuthMethod: domainauth.MethodBasic,
	}
	a.logger.Info("login succeeded", "username", user.Username, "method", user.AuthMethod)

	return domainauth.Result{
		Success: true,
		User:    &user,
		Tokens:  domainauth.TokenBundle{IdentityToken: a.syntheticToken()},
	}, nil
}

// syntheticToken issues an opaque marker token. It carries no claims
// and is never verified; it only keeps the session store's
// identity-token invariant satisfied.
func (a *Adapter) syntheticToken() string {
	seed := fmt.Sprintf("%s:%d", a.cfg.Username, a.now().UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(seed))
}
