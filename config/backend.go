package config

// BackendConfig contains the MES business backend configuration.
type BackendConfig struct {
	// BaseURL is the backend API root, e.g. "https://api.plant.example/mes".
	BaseURL string `env:"BASE_URL"`

	// SenderID, ClientID, and Location identify this application in the
	// message envelope header on command calls.
	SenderID string `env:"SENDER_ID" envDefault:"mes-auth"`
	ClientID string `env:"CLIENT_ID" envDefault:"dashboard"`
	Location string `env:"LOCATION"  envDefault:""`
}

// Enabled reports whether the backend client is configured.
func (b BackendConfig) Enabled() bool { return b.BaseURL != "" }
