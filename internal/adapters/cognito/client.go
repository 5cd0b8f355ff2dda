package cognito

// Package cognito implements the service-token issuer client. It
// reproduces the InitiateAuth wire contract directly rather than
// pulling in a provider SDK: the exchange is one POST with a fixed
// target header and a password-grant-shaped body.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

const (
	contentTypeAmzJSON = "application/x-amz-json-1.1"
	initiateAuthTarget = "AWSCognitoIdentityProviderService.InitiateAuth"

	// DefaultAuthFlow is the password-grant-style flow used for the
	// fixed service credential.
	DefaultAuthFlow = "USER_PASSWORD_AUTH"

	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the token issuer client.
type Config struct {
	Endpoint   string // e.g. https://cognito-idp.us-east-1.amazonaws.com/
	ClientID   string
	AuthFlow   string       // defaults to DefaultAuthFlow
	HTTPClient *http.Client // optional; a 30s-timeout client is built when nil
}

// Client calls the token issuer's InitiateAuth operation.
type Client struct {
	endpoint   string
	clientID   string
	authFlow   string
	httpClient *http.Client
}

var _ ports.TokenIssuer = (*Client)(nil)

// NewClient creates a token issuer client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("token issuer endpoint is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("token issuer client ID is required")
	}

	authFlow := cfg.AuthFlow
	if authFlow == "" {
		authFlow = DefaultAuthFlow
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		clientID:   cfg.ClientID,
		authFlow:   authFlow,
		httpClient: httpClient,
	}, nil
}

// Wire types. Field names are the provider's contract.

type initiateAuthRequest struct {
	AuthFlow       string         `json:"AuthFlow"`
	ClientID       string         `json:"ClientId"`
	AuthParameters authParameters `json:"AuthParameters"`
}

type authParameters struct {
	Username string `json:"USERNAME"`
	Password string `json:"PASSWORD"`
}

type initiateAuthResponse struct {
	AuthenticationResult authenticationResult `json:"AuthenticationResult"`
}

type authenticationResult struct {
	IDToken      string `json:"IdToken"`
	AccessToken  string `json:"AccessToken"`
	RefreshToken string `json:"RefreshToken"`
	ExpiresIn    int    `json:"ExpiresIn"`
	TokenType    string `json:"TokenType"`
}

// InitiateAuth exchanges the service credential for a bearer token set.
// A non-200 from the issuer is a service_auth failure; neither the
// credential nor the provider error body ever reaches the caller's
// error message. Transport failures (including timeouts) come back as
// transport errors.
func (c *Client) InitiateAuth(ctx context.Context, username, password string) (domainauth.TokenBundle, error) {
	body, err := json.Marshal(initiateAuthRequest{
		AuthFlow: c.authFlow,
		ClientID: c.clientID,
		AuthParameters: authParameters{
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return domainauth.TokenBundle{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode initiate auth request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domainauth.TokenBundle{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build initiate auth request")
	}
	req.Header.Set("Content-Type", contentTypeAmzJSON)
	req.Header.Set("X-Amz-Target", initiateAuthTarget)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainauth.TokenBundle{}, apperrors.Wrap(err, apperrors.ErrCodeTransport, "reach token issuer")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Deliberately drop the provider body: it can name the service
		// account or carry provider internals.
		return domainauth.TokenBundle{}, apperrors.ServiceAuth("token issuer rejected the service credential")
	}

	var parsed initiateAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domainauth.TokenBundle{}, apperrors.Wrap(err, apperrors.ErrCodeServiceAuth, "decode token issuer response")
	}

	result := parsed.AuthenticationResult
	if result.IDToken == "" && result.AccessToken == "" {
		return domainauth.TokenBundle{}, apperrors.ServiceAuth("token issuer returned no tokens")
	}

	return domainauth.TokenBundle{
		IdentityToken: result.IDToken,
		AccessToken:   result.AccessToken,
		RefreshToken:  result.RefreshToken,
	}, nil
}
