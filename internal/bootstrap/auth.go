package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mesworks/mes-auth/config"
	"github.com/mesworks/mes-auth/internal/adapters/cognito"
	"github.com/mesworks/mes-auth/internal/adapters/exchange"
	"github.com/mesworks/mes-auth/internal/adapters/mesbackend"
	"github.com/mesworks/mes-auth/internal/adapters/oidc"
	"github.com/mesworks/mes-auth/internal/adapters/staticauth"
	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	"github.com/mesworks/mes-auth/internal/ports"
	"github.com/mesworks/mes-auth/internal/service"
	"github.com/mesworks/mes-auth/internal/store"
)

// AuthContainer holds the wired auth services and supporting clients.
type AuthContainer struct {
	Auth      *service.AuthService
	Validator ports.CredentialValidator
	Backend   *mesbackend.Client
	Store     ports.TokenStore
}

// AuthBuildConfig contains configuration for the auth wiring.
type AuthBuildConfig struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient // optional; memory-only store when nil
	Logger      *slog.Logger
}

// BuildAuthServices wires the token store, credential adapters, and
// the orchestrating auth service from configuration. Adapters whose
// configuration is absent are simply not registered.
func BuildAuthServices(ctx context.Context, cfg AuthBuildConfig) (*AuthContainer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	tokenStore, err := buildTokenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	container := &AuthContainer{Store: tokenStore}
	var adapters []ports.CredentialAdapter

	// Business backend client, shared by the exchange flow and the
	// router data endpoint.
	if appCfg.Backend.Enabled() {
		backend, err := mesbackend.NewClient(mesbackend.Config{
			BaseURL:  appCfg.Backend.BaseURL,
			SenderID: appCfg.Backend.SenderID,
			ClientID: appCfg.Backend.ClientID,
			Location: appCfg.Backend.Location,
		})
		if err != nil {
			return nil, fmt.Errorf("build backend client: %w", err)
		}
		container.Backend = backend
	}

	if appCfg.Auth.Cognito.Enabled() && container.Backend != nil {
		issuer, err := cognito.NewClient(cognito.Config{
			Endpoint: appCfg.Auth.Cognito.Endpoint,
			ClientID: appCfg.Auth.Cognito.ClientID,
			AuthFlow: appCfg.Auth.Cognito.AuthFlow,
		})
		if err != nil {
			return nil, fmt.Errorf("build token issuer: %w", err)
		}
		validator := service.NewCredentialValidationService(service.CredentialValidationOptions{
			Issuer:    issuer,
			Directory: container.Backend,
			Credential: service.ServiceCredential{
				Username: appCfg.Auth.Cognito.ServiceUsername,
				Password: appCfg.Auth.Cognito.ServicePassword,
			},
			Logger: logger,
		})
		container.Validator = validator
		adapters = append(adapters, exchange.NewAdapter(validator, logger))
	}

	if appCfg.IsDev || appCfg.Auth.Mode == config.AuthModeBasic {
		static, err := staticauth.NewAdapter(staticauth.Config{
			Username: appCfg.Auth.Basic.Username,
			Password: appCfg.Auth.Basic.Password,
			Email:    appCfg.Auth.Basic.Email,
			Name:     appCfg.Auth.Basic.Name,
			Role:     domainauth.RoleAdmin,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build static adapter: %w", err)
		}
		adapters = append(adapters, static)
	}

	var federated ports.FederatedProvider
	if appCfg.Auth.Azure.Enabled() {
		provider, err := oidc.Shared(ctx, oidc.ProviderConfig{
			ClientID:     appCfg.Auth.Azure.ClientID,
			ClientSecret: appCfg.Auth.Azure.ClientSecret,
			RedirectURL:  appCfg.Auth.Azure.RedirectURL,
			Scope:        appCfg.Auth.Azure.Scope,
			DiscoveryURL: appCfg.Auth.Azure.DiscoveryURL,
			LogoutURL:    appCfg.Auth.Azure.LogoutURL,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build federated provider: %w", err)
		}
		federated = provider
	}

	container.Auth = service.NewAuthService(service.AuthServiceOptions{
		Adapters:  adapters,
		Federated: federated,
		Store:     tokenStore,
		Logger:    logger,
	})
	return container, nil
}

// buildTokenStore assembles the tiered session store: a session-scoped
// memory tier in front of the persistent Redis tier. Without Redis the
// memory tier serves both roles.
func buildTokenStore(cfg AuthBuildConfig, logger *slog.Logger) (ports.TokenStore, error) {
	mem := store.NewMemory()
	if cfg.RedisClient == nil {
		logger.Warn("redis not configured, sessions will not survive a restart")
		return store.NewTiered([]ports.KeyValue{mem}, mem)
	}

	var (
		prefix = "mesauth:"
		ttl    = store.DefaultSessionTTL
	)
	if cfg.Config != nil {
		if cfg.Config.Redis.KeyPrefix != "" {
			prefix = cfg.Config.Redis.KeyPrefix
		}
		if cfg.Config.Redis.SessionTTL > 0 {
			ttl = cfg.Config.Redis.SessionTTL
		}
	}

	persistent := store.NewRedis(cfg.RedisClient, prefix, ttl)
	return store.NewTiered([]ports.KeyValue{mem, persistent}, persistent)
}
