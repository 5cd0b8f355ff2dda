package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

const remoteTimeout = 30 * time.Second

// RemoteValidator validates credentials by posting them to a deployed
// login endpoint instead of running the exchange in-process. Used when
// the token-issuer configuration lives on another instance.
type RemoteValidator struct {
	endpoint   string
	httpClient *http.Client
}

var _ ports.CredentialValidator = (*RemoteValidator)(nil)

// NewRemoteValidator creates a validator for the given login endpoint
// URL, e.g. "https://dash.example.com/api/auth/login".
func NewRemoteValidator(endpoint string, httpClient *http.Client) (*RemoteValidator, error) {
	if endpoint == "" {
		return nil, errors.New("login endpoint URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: remoteTimeout}
	}
	return &RemoteValidator{endpoint: strings.TrimSpace(endpoint), httpClient: httpClient}, nil
}

type remoteLoginResponse struct {
	UserEmail    string `json:"useremail"`
	AccessLevel  string `json:"accesslevel"`
	TechID       string `json:"techId"`
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Error        string `json:"error"`
}

// Validate posts the credential to the remote login endpoint and maps
// the response to a ValidatedUser. Status codes follow the endpoint's
// contract: 401 means bad credentials, anything else non-2xx is a
// service failure.
func (v *RemoteValidator) Validate(ctx context.Context, creds domainauth.Credentials) (ports.ValidatedUser, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeTransport, "reach login endpoint")
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed remoteLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode login response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		msg := parsed.Error
		if msg == "" {
			msg = apperrors.MsgInvalidCredentials
		}
		return ports.ValidatedUser{}, apperrors.InvalidCredentials(msg)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return ports.ValidatedUser{}, apperrors.ServiceAuth("login endpoint returned status " + resp.Status)
	}

	return ports.ValidatedUser{
		UserEmail:   parsed.UserEmail,
		AccessLevel: parsed.AccessLevel,
		TechID:      parsed.TechID,
		Tokens: domainauth.TokenBundle{
			IdentityToken: parsed.Token,
			AccessToken:   parsed.AccessToken,
			RefreshToken:  parsed.RefreshToken,
		},
	}, nil
}
