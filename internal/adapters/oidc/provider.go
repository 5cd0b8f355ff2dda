package oidc

// Package oidc implements the federated credential adapter: the
// redirect-based OIDC authorization-code flow plus silent token
// renewal against an already-established provider session.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/mesworks/mes-auth/internal/claims"
	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

// ProviderConfig holds configuration for the federated provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
	Logger       *slog.Logger
}

// account is the provider-side session cached after a completed login.
// Silent renewal draws fresh tokens from its token source without a
// browser round-trip.
type account struct {
	username string
	claims   claims.IDTokenClaims
	source   oauth2.TokenSource
	idToken  string
}

// Provider implements ports.FederatedProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	logoutURL  string
	httpClient *http.Client
	logger     *slog.Logger

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier

	mu      sync.Mutex
	current *account
}

var _ ports.FederatedProvider = (*Provider)(nil)

// NewProvider creates a federated provider. The discovery document is
// fetched once, up front.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
		logger:     logger,
	}

	// Single discovery fetch for endpoints and JWKS.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// Initiate attempts silent renewal first; when no provider session is
// cached it returns the redirect the caller must perform.
func (p *Provider) Initiate(ctx context.Context) (*domainauth.Result, *ports.RedirectLogin, error) {
	if res, err := p.silent(ctx); err == nil && res != nil {
		return res, nil, nil
	} else if err != nil {
		p.logger.Warn("silent token acquisition failed, falling back to redirect", "error", err)
	}

	state, err := generateRandomString(32)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "generate state")
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "generate nonce")
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return nil, &ports.RedirectLogin{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// Resume completes a pending redirect callback, or falls back to
// silent acquisition against the cached account. (nil, nil) means no
// federated session exists and none was being established.
func (p *Provider) Resume(ctx context.Context, cb ports.Callback) (*domainauth.Result, error) {
	if cb.Pending() {
		return p.completeExchange(ctx, cb)
	}
	res, err := p.silent(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "silent token acquisition")
	}
	return res, nil
}

// SignOut drops the cached provider session and, when an end-session
// endpoint is configured, notifies the identity provider. Best-effort.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	acct := p.current
	p.current = nil
	p.mu.Unlock()

	if p.logoutURL == "" || acct == nil {
		return nil
	}

	endSession := p.logoutURL
	if acct.idToken != "" {
		sep := "?"
		if strings.Contains(endSession, "?") {
			sep = "&"
		}
		endSession += sep + "id_token_hint=" + url.QueryEscape(acct.idToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endSession, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "build end-session request")
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "reach end-session endpoint")
	}
	_ = resp.Body.Close()
	return nil
}

func (p *Provider) completeExchange(ctx context.Context, cb ports.Callback) (*domainauth.Result, error) {
	if cb.State == "" {
		return nil, apperrors.FederatedFlow("state is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, cb.Code)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "exchange code for token")
	}

	rawID, err := getIDTokenFromToken(token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "token response")
	}

	if p.hasOpenIDScope() {
		idTok, err := p.verifier.Verify(ctx, rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeFederatedFlow, "verify id_token")
		}
		if cb.Nonce != "" {
			var nonceClaim struct {
				Nonce string `json:"nonce"`
			}
			if err := idTok.Claims(&nonceClaim); err != nil || nonceClaim.Nonce != cb.Nonce {
				return nil, apperrors.FederatedFlow("invalid nonce")
			}
		}
	}

	return p.establish(ctx, token, rawID), nil
}

// silent draws a fresh token from the cached account's source. Returns
// (nil, nil) when no account is cached.
func (p *Provider) silent(ctx context.Context) (*domainauth.Result, error) {
	p.mu.Lock()
	acct := p.current
	p.mu.Unlock()
	if acct == nil {
		return nil, nil
	}

	token, err := acct.source.Token()
	if err != nil {
		// The provider session is gone; forget the account so the next
		// attempt goes through the redirect.
		p.mu.Lock()
		if p.current == acct {
			p.current = nil
		}
		p.mu.Unlock()
		return nil, err
	}

	rawID, idErr := getIDTokenFromToken(token)
	if idErr != nil {
		rawID = acct.idToken
	}
	return p.establish(ctx, token, rawID), nil
}

// establish decodes claims, caches the account for later silent
// renewal, and assembles the login result. Claim decoding failures
// degrade to defaults rather than failing the login.
func (p *Provider) establish(ctx context.Context, token *oauth2.Token, rawID string) *domainauth.Result {
	decoded, err := claims.DecodeIDToken(rawID)
	if err != nil {
		p.logger.Warn("id token claims could not be decoded, using defaults", "error", err)
		decoded = claims.IDTokenClaims{}
	}

	username := decoded.PreferredUsername
	if username == "" {
		username = decoded.Email
	}
	if username == "" {
		username = decoded.Subject
	}
	user := claims.MapFederatedUser(username, decoded)

	p.mu.Lock()
	p.current = &account{
		username: username,
		claims:   decoded,
		source:   p.config.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, p.httpClient), token),
		idToken:  rawID,
	}
	p.mu.Unlock()

	p.logger.Info("federated session established", "username", username, "role", user.Role)

	return &domainauth.Result{
		Success: true,
		User:    &user,
		Tokens: domainauth.TokenBundle{
			IdentityToken: rawID,
			AccessToken:   token.AccessToken,
		},
		AccessLevel: decoded.AccessLevel,
		TechID:      decoded.EmployeeID,
	}
}

// generateRandomString generates a cryptographically secure URL-safe
// random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from an oauth2 token response.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
