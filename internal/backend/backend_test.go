package backend

import (
	"context"
	"testing"

	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

func TestNew_MemoryBackend(t *testing.T) {
	cfg := &config.Config{
		StateStore: config.StateStoreConfig{Type: "memory"},
	}

	store, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("expected ping to succeed, got %v", err)
	}
}

func TestNew_DefaultToMemory(t *testing.T) {
	cfg := &config.Config{
		StateStore: config.StateStoreConfig{Type: ""},
	}

	store, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected no error for empty type, got %v", err)
	}
	defer func() { _ = store.Close() }()
}

func TestNew_UnsupportedType(t *testing.T) {
	cfg := &config.Config{
		StateStore: config.StateStoreConfig{Type: "redis"},
	}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unsupported state store type")
	}
}

func TestNew_MongoDBWithInvalidURI(t *testing.T) {
	cfg := &config.Config{
		StateStore: config.StateStoreConfig{
			Type: "mongodb",
			MongoDB: config.MongoDBConfig{
				URI:      "mongodb://invalid-host-that-does-not-exist:27017",
				Database: "test",
				Timeout:  1, // Short timeout for faster test failure
			},
		},
	}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for invalid MongoDB URI")
	}
}
