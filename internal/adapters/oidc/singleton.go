package oidc

import (
	"context"
	"sync"
)

// The shared provider is built once and reused for every federated
// call, so discovery happens a single time and the cached provider
// session survives across requests.

var (
	sharedMu sync.Mutex
	shared   *Provider
)

// Shared returns the process-wide provider, building it on first use.
func Shared(ctx context.Context, config ProviderConfig) (*Provider, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		return shared, nil
	}
	p, err := NewProvider(ctx, config)
	if err != nil {
		return nil, err
	}
	shared = p
	return shared, nil
}

// ResetShared drops the shared provider so the next Shared call
// rebuilds it. Used when provider configuration changes and in tests.
func ResetShared() {
	sharedMu.Lock()
	shared = nil
	sharedMu.Unlock()
}
