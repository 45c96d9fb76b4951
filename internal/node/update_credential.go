package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// UpdateCredentialConfig configures a credential update node instance.
type UpdateCredentialConfig struct {
	// CredentialTypeID is the remote credential type being updated.
	CredentialTypeID string
	// Attributes maps output attribute names to source state keys.
	Attributes Projection
	// StoreResponse persists the updated credential resource in the bag.
	StoreResponse bool
	// Keys names the persisted state entries.
	Keys state.Keys
}

// UpdateCredentialNode replaces the data of a previously issued
// credential with freshly projected attribute values.
type UpdateCredentialNode struct {
	cfg    UpdateCredentialConfig
	svc    CredentialService
	logger *zap.Logger
}

// NewUpdateCredentialNode creates a credential update node.
func NewUpdateCredentialNode(cfg UpdateCredentialConfig, svc CredentialService, logger *zap.Logger) *UpdateCredentialNode {
	return &UpdateCredentialNode{cfg: cfg, svc: svc, logger: logger.Named("update_credential")}
}

func (n *UpdateCredentialNode) Name() string { return "UpdateCredentialNode" }

func (n *UpdateCredentialNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeFailure}
}

func (n *UpdateCredentialNode) Process(ctx context.Context, bag state.Bag, _ Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		subject, err := subjectID(bag, n.cfg.Keys)
		if err != nil {
			return nil, err
		}
		credentialID, ok := bag.GetString(n.cfg.Keys.CredentialID)
		if !ok {
			return nil, &ValidationError{Key: n.cfg.Keys.CredentialID}
		}

		req := &credsvc.CredentialRequest{
			CredentialType: credsvc.ResourceRef{ID: n.cfg.CredentialTypeID},
			Data:           n.cfg.Attributes.Build(bag),
		}
		cred, err := n.svc.UpdateCredential(ctx, subject, credentialID, req)
		if err != nil {
			return nil, err
		}

		if n.cfg.StoreResponse && len(cred.Raw) > 0 {
			bag.PutRaw(n.cfg.Keys.Response, cred.Raw)
		}

		n.logger.Debug("Credential updated", zap.String("credential_id", credentialID))
		return terminal(OutcomeSuccess), nil
	})
}
