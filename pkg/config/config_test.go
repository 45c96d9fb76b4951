package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 8080},
		CredentialService: CredentialServiceConfig{
			BaseURL:       "https://api.example.com/v1",
			EnvironmentID: "env-1",
			Timeout:       30,
		},
		Worker: WorkerConfig{
			TokenURL: "https://auth.example.com/token",
			ClientID: "worker-1",
		},
		StateStore: StateStoreConfig{Type: "memory"},
		Nodes:      NodesConfig{TimeoutSeconds: 120},
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port
			if err := cfg.Validate(); err == nil {
				t.Error("expected error for invalid port")
			}
		})
	}
}

func TestConfig_Validate_MissingService(t *testing.T) {
	cfg := validConfig()
	cfg.CredentialService.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing base_url")
	}

	cfg = validConfig()
	cfg.CredentialService.EnvironmentID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing environment_id")
	}
}

func TestConfig_Validate_MissingWorker(t *testing.T) {
	cfg := validConfig()
	cfg.Worker.ClientID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing worker client_id")
	}
}

func TestConfig_Validate_StateStore(t *testing.T) {
	cfg := validConfig()
	cfg.StateStore.Type = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported state store type")
	}

	cfg = validConfig()
	cfg.StateStore.Type = "mongodb"
	cfg.StateStore.MongoDB.URI = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for mongodb store without uri")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  host: 127.0.0.1
  port: 9090
credential_service:
  base_url: https://api.example.com/v1
  environment_id: env-42
worker:
  token_url: https://auth.example.com/token
  client_id: worker-42
  client_secret: s3cret
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.CredentialService.EnvironmentID != "env-42" {
		t.Errorf("expected environment env-42, got %s", cfg.CredentialService.EnvironmentID)
	}
	// Defaults survive a partial file
	if cfg.StateStore.Type != "memory" {
		t.Errorf("expected default state store memory, got %s", cfg.StateStore.Type)
	}
	if cfg.Nodes.TimeoutSeconds != 120 {
		t.Errorf("expected default timeout 120, got %d", cfg.Nodes.TimeoutSeconds)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected validation error: defaults have no service config")
	}
}
