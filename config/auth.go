package config

import (
	"fmt"
	"strings"
)

// AuthMode selects the default credential adapter.
type AuthMode string

const (
	// AuthModeCognito uses the service-token exchange adapter.
	AuthModeCognito AuthMode = "cognito"
	// AuthModeAzure uses the federated redirect adapter.
	AuthModeAzure AuthMode = "azure"
	// AuthModeBasic uses the static demo adapter (development only).
	AuthModeBasic AuthMode = "basic"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "cognito", "azure", "basic":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: cognito, azure, basic)", v)
	}
}

// AzureConfig contains the federated (OIDC) adapter configuration.
type AzureConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// Enabled reports whether the federated adapter is configured.
func (c AzureConfig) Enabled() bool {
	return c.ClientID != "" && c.DiscoveryURL != ""
}

// CognitoConfig contains the service-token issuer configuration. The
// service credential pair is never logged.
type CognitoConfig struct {
	Endpoint        string `env:"ENDPOINT"`
	ClientID        string `env:"CLIENT_ID"`
	AuthFlow        string `env:"AUTH_FLOW"        envDefault:"USER_PASSWORD_AUTH"`
	ServiceUsername string `env:"SERVICE_USERNAME"`
	ServicePassword string `env:"SERVICE_PASSWORD"`
}

// Enabled reports whether the exchange adapter is configured.
func (c CognitoConfig) Enabled() bool {
	return c.Endpoint != "" && c.ClientID != ""
}

// BasicConfig controls the static demo adapter identity.
// Used for development and air-gapped demos only.
type BasicConfig struct {
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD" envDefault:"admin"`
	Email    string `env:"EMAIL"    envDefault:""`
	Name     string `env:"NAME"     envDefault:""`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential adapter serves unqualified logins.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"cognito"`

	// Azure configuration (federated redirect flow).
	Azure AzureConfig `envPrefix:"AZURE_"`

	// Cognito configuration (service-token exchange flow).
	Cognito CognitoConfig `envPrefix:"COGNITO_"`

	// Basic configuration (static demo flow).
	Basic BasicConfig `envPrefix:"BASIC_AUTH_"`
}

// Sanitize applies guardrails to authentication configuration.
func (a *AuthConfig) Sanitize() {
	// An unconfigured exchange adapter cannot serve the default mode;
	// fall back to the static adapter so a bare dev environment boots.
	if a.Mode == AuthModeCognito && !a.Cognito.Enabled() {
		a.Mode = AuthModeBasic
	}
	if a.Mode == AuthModeAzure && !a.Azure.Enabled() {
		a.Mode = AuthModeBasic
	}
}
