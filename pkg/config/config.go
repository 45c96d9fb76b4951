// Package config loads and validates the configuration for the credential
// node server and the node instances it hosts.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server            ServerConfig            `yaml:"server" envconfig:"SERVER"`
	Logging           LoggingConfig           `yaml:"logging" envconfig:"LOGGING"`
	CredentialService CredentialServiceConfig `yaml:"credential_service" envconfig:"CREDENTIAL_SERVICE"`
	Worker            WorkerConfig            `yaml:"worker" envconfig:"WORKER"`
	StateStore        StateStoreConfig        `yaml:"state_store" envconfig:"STATE_STORE"`
	Nodes             NodesConfig             `yaml:"nodes" envconfig:"NODES"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host" envconfig:"HOST"`
	Port int    `yaml:"port" envconfig:"PORT"`
	CORS CORSConfig `yaml:"cors" envconfig:"CORS"`
}

// CORSConfig contains CORS settings for the flow endpoints
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" envconfig:"FORMAT"` // json, text
}

// CredentialServiceConfig contains routing parameters for the remote
// credentialing service.
type CredentialServiceConfig struct {
	// BaseURL is the API base, e.g. https://api.credentials.example.com/v1
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`
	// EnvironmentID is the environment the nodes operate in
	EnvironmentID string `yaml:"environment_id" envconfig:"ENVIRONMENT_ID"`
	// Timeout is the HTTP timeout for remote calls (seconds)
	Timeout int `yaml:"timeout" envconfig:"TIMEOUT"`
}

// WorkerConfig contains the service-account credentials used to obtain
// bearer tokens for remote calls.
type WorkerConfig struct {
	TokenURL     string `yaml:"token_url" envconfig:"TOKEN_URL"`
	ClientID     string `yaml:"client_id" envconfig:"CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" envconfig:"CLIENT_SECRET"`
}

// StateStoreConfig contains transaction state store configuration
type StateStoreConfig struct {
	Type    string        `yaml:"type" envconfig:"TYPE"` // memory, mongodb
	MongoDB MongoDBConfig `yaml:"mongodb" envconfig:"MONGODB"`
}

// MongoDBConfig contains MongoDB-specific configuration
type MongoDBConfig struct {
	URI        string `yaml:"uri" envconfig:"URI"`
	Database   string `yaml:"database" envconfig:"DATABASE"`
	Collection string `yaml:"collection" envconfig:"COLLECTION"`
	Timeout    int    `yaml:"timeout" envconfig:"TIMEOUT"` // seconds
}

// NodesConfig carries per-node defaults for the hosted node instances.
type NodesConfig struct {
	// TimeoutSeconds bounds how long a pairing or verification
	// transaction may keep polling before it times out.
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	// DigitalWalletApplicationID identifies the wallet application used
	// for pairing and push delivery.
	DigitalWalletApplicationID string `yaml:"digital_wallet_application_id" envconfig:"DIGITAL_WALLET_APPLICATION_ID"`
	// ApplicationInstanceID identifies the calling application instance
	// for push verification sessions.
	ApplicationInstanceID string `yaml:"application_instance_id" envconfig:"APPLICATION_INSTANCE_ID"`
	// CredentialTypeID is the credential type issued and updated by the
	// hosted nodes.
	CredentialTypeID string `yaml:"credential_type_id" envconfig:"CREDENTIAL_TYPE_ID"`
	// AttributeMapping maps credential attribute names to the state keys
	// their values are projected from.
	AttributeMapping map[string]string `yaml:"attribute_mapping" envconfig:"ATTRIBUTE_MAPPING"`
	// RequestedCredentialType and RequestedCredentialKeys describe what a
	// verification session asks the subject to present.
	RequestedCredentialType string   `yaml:"requested_credential_type" envconfig:"REQUESTED_CREDENTIAL_TYPE"`
	RequestedCredentialKeys []string `yaml:"requested_credential_keys" envconfig:"REQUESTED_CREDENTIAL_KEYS"`
	// AllowDeliveryChoice lets users pick the delivery channel.
	AllowDeliveryChoice bool `yaml:"allow_delivery_choice" envconfig:"ALLOW_DELIVERY_CHOICE"`
	// StoreResponse persists terminal remote responses in session state.
	StoreResponse bool `yaml:"store_response" envconfig:"STORE_RESPONSE"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if provided (overrides defaults)
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, that's ok - we'll use defaults and env vars
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("CREDNODE", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible default values
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CredentialService: CredentialServiceConfig{
			Timeout: 30, // seconds
		},
		StateStore: StateStoreConfig{
			Type: "memory",
			MongoDB: MongoDBConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "crednodes",
				Collection: "flow_state",
				Timeout:    10,
			},
		},
		Nodes: NodesConfig{
			TimeoutSeconds: 120,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.CredentialService.BaseURL == "" {
		return fmt.Errorf("credential_service base_url is required")
	}

	if c.CredentialService.EnvironmentID == "" {
		return fmt.Errorf("credential_service environment_id is required")
	}

	if c.Worker.TokenURL == "" || c.Worker.ClientID == "" {
		return fmt.Errorf("worker token_url and client_id are required")
	}

	if c.StateStore.Type != "memory" && c.StateStore.Type != "mongodb" {
		return fmt.Errorf("invalid state store type: %s (must be memory or mongodb)", c.StateStore.Type)
	}

	if c.StateStore.Type == "mongodb" && c.StateStore.MongoDB.URI == "" {
		return fmt.Errorf("mongodb uri is required when using mongodb state store")
	}

	if c.Nodes.TimeoutSeconds <= 0 {
		return fmt.Errorf("nodes timeout_seconds must be positive")
	}

	return nil
}

// Address returns the server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
