package service

import (
	"context"
	"log/slog"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// ServiceCredential is the fixed credential pair exchanged for a
// service bearer token in step one of credential validation. It is
// configuration, never user input, and must never be logged.
type ServiceCredential struct {
	Username string
	Password string
}

// CredentialValidationOptions groups dependencies for the validation service.
type CredentialValidationOptions struct {
	Issuer     ports.TokenIssuer
	Directory  ports.UserDirectory
	Credential ServiceCredential
	Logger     *slog.Logger
}

// CredentialValidationService runs the two-step exchange-and-validate
// flow: obtain a service token, then validate the user credential
// against the directory. Step two never runs when step one fails.
type CredentialValidationService struct {
	issuer     ports.TokenIssuer
	directory  ports.UserDirectory
	credential ServiceCredential
	logger     *slog.Logger
}

var _ ports.CredentialValidator = (*CredentialValidationService)(nil)

// NewCredentialValidationService constructs the validation service.
func NewCredentialValidationService(opts CredentialValidationOptions) *CredentialValidationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialValidationService{
		issuer:     opts.Issuer,
		directory:  opts.Directory,
		credential: opts.Credential,
		logger:     logger,
	}
}

// Validate performs both steps. The bearer for step two is the service
// identity token, falling back to the service access token. Token
// fields from the directory response supersede the step-one bundle.
func (s *CredentialValidationService) Validate(ctx context.Context, creds domainauth.Credentials) (ports.ValidatedUser, error) {
	if creds.Username == "" || creds.Password == "" {
		return ports.ValidatedUser{}, apperrors.Validation("username and password are required")
	}

	serviceTokens, err := s.issuer.InitiateAuth(ctx, s.credential.Username, s.credential.Password)
	if err != nil {
		// Hard stop: the user credential is never sent when the service
		// exchange fails.
		return ports.ValidatedUser{}, err
	}

	bearer := serviceTokens.IdentityToken
	if bearer == "" {
		bearer = serviceTokens.AccessToken
	}
	if bearer == "" {
		return ports.ValidatedUser{}, apperrors.ServiceAuth("token issuer returned an empty token set")
	}

	validated, err := s.directory.GetUserInfo(ctx, bearer, creds)
	if err != nil {
		return ports.ValidatedUser{}, err
	}

	// Backend-issued tokens win over the service bundle; missing fields
	// fall back so the session always carries a usable pair.
	if validated.Tokens.IdentityToken == "" {
		validated.Tokens.IdentityToken = serviceTokens.IdentityToken
	}
	if validated.Tokens.AccessToken == "" {
		validated.Tokens.AccessToken = serviceTokens.AccessToken
	}
	if validated.Tokens.RefreshToken == "" {
		validated.Tokens.RefreshToken = serviceTokens.RefreshToken
	}

	s.logger.Info("credential validated", "username", validated.UserEmail, "accessLevel", validated.AccessLevel)
	return validated, nil
}
