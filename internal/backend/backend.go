// Package backend selects and constructs the configured transaction
// state store.
package backend

import (
	"context"
	"fmt"

	"github.com/sirosfoundation/go-credential-nodes/internal/state"
	"github.com/sirosfoundation/go-credential-nodes/internal/state/memory"
	"github.com/sirosfoundation/go-credential-nodes/internal/state/mongodb"
	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

// Type defines the type of state store backend
type Type string

const (
	// TypeMemory uses in-memory storage (for testing/development)
	TypeMemory Type = "memory"
	// TypeMongoDB uses MongoDB storage (for production)
	TypeMongoDB Type = "mongodb"
)

// New creates a state store based on the configuration
func New(ctx context.Context, cfg *config.Config) (state.Store, error) {
	switch Type(cfg.StateStore.Type) {
	case TypeMemory, "":
		return memory.NewStore(), nil
	case TypeMongoDB:
		store, err := mongodb.NewStore(ctx, &cfg.StateStore.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB state store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported state store type: %s", cfg.StateStore.Type)
	}
}
