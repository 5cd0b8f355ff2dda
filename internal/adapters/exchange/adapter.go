package exchange

// Package exchange implements the service-token credential adapter: a
// two-step flow that first obtains a service bearer token, then
// validates the user-supplied credential against the business backend.

import (
	"context"
	"log/slog"

	"github.com/mesworks/mes-auth/internal/claims"
	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// Adapter is the service-exchange credential adapter. The heavy lifting
// is delegated to a CredentialValidator (in-process or remote over
// HTTP); this adapter maps the outcome to a Result and a canonical
// user-facing message.
type Adapter struct {
	validator ports.CredentialValidator
	logger    *slog.Logger
}

var _ ports.CredentialAdapter = (*Adapter)(nil)

// NewAdapter creates a service-exchange adapter.
func NewAdapter(validator ports.CredentialValidator, logger *slog.Logger) *Adapter {
	return &Adapter{validator: validator, logger: logger}
}

// Method returns the credential method this adapter serves.
func (a *Adapter) Method() domainauth.Method { return domainauth.MethodCognito }

// Login runs the exchange-and-validate flow. Every expected failure
// (bad credentials, issuer rejection, network) becomes a failed Result
// with a user-safe message; detail goes to the log only.
func (a *Adapter) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Result, error) {
	if creds.Username == "" || creds.Password == "" {
		return domainauth.Result{Message: apperrors.MsgInvalidCredentials}, nil
	}

	validated, err := a.validator.Validate(ctx, creds)
	if err != nil {
		a.logger.Warn("credential validation failed",
			"username", creds.Username,
			"code", apperrors.GetCode(err),
			"error", err)
		return domainauth.Result{Message: apperrors.UserMessage(err)}, nil
	}

	user := claims.MapBackendUser(validated.UserEmail, validated.AccessLevel)
	a.logger.Info("login succeeded",
		"username", user.Username,
		"role", user.Role,
		"method", user.AuthMethod)

	return domainauth.Result{
		Success:     true,
		User:        &user,
		Tokens:      validated.Tokens,
		TechID:      validated.TechID,
		AccessLevel: validated.AccessLevel,
	}, nil
}
