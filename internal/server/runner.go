package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/node"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// Runner invokes registered nodes against per-session persisted state,
// playing the role the surrounding flow evaluator has in production: it
// loads the bag, runs one invocation, and saves or clears the bag.
type Runner struct {
	store  state.Store
	nodes  map[string]node.Node
	keys   state.Keys
	logger *zap.Logger
}

// NewRunner creates a runner over the given state store.
func NewRunner(store state.Store, keys state.Keys, logger *zap.Logger) *Runner {
	return &Runner{
		store:  store,
		nodes:  make(map[string]node.Node),
		keys:   keys,
		logger: logger.Named("runner"),
	}
}

// Register adds a node under a flow name.
func (r *Runner) Register(flow string, n node.Node) {
	r.nodes[flow] = n
}

// Flows lists the registered flow names.
func (r *Runner) Flows() []string {
	flows := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		flows = append(flows, name)
	}
	return flows
}

// Invoke runs one node invocation for a session. Input entries, when
// present, are merged into the bag before the node runs (the upstream
// steps' contribution). On a terminal outcome the session state is
// cleared and the stored response, if any, is returned as output.
func (r *Runner) Invoke(ctx context.Context, flow, sessionID string, input map[string]any, sig node.Signal) (*node.Result, any, error) {
	n, ok := r.nodes[flow]
	if !ok {
		return nil, nil, fmt.Errorf("unknown flow %q", flow)
	}

	bag, err := r.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session state: %w", err)
	}
	for k, v := range input {
		bag.Put(k, v)
	}

	result := n.Process(ctx, bag, sig)

	if result.Suspended() {
		if err := r.store.Save(ctx, sessionID, bag); err != nil {
			return nil, nil, fmt.Errorf("failed to save session state: %w", err)
		}
		return result, nil, nil
	}

	var output any
	if raw, ok := bag.GetRaw(r.keys.Response); ok {
		output = raw
	}

	if err := r.store.Delete(ctx, sessionID); err != nil {
		r.logger.Warn("Failed to clear session state",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	r.logger.Info("Flow finished",
		zap.String("flow", flow),
		zap.String("session_id", sessionID),
		zap.String("outcome", string(result.Outcome)),
	)
	return result, output, nil
}
