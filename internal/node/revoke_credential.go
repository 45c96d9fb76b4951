package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// RevokeCredentialConfig configures a credential revoke node instance.
type RevokeCredentialConfig struct {
	// Keys names the persisted state entries.
	Keys state.Keys
}

// RevokeCredentialNode revokes a previously issued credential. A missing
// remote credential is the not_found outcome, not a failure.
type RevokeCredentialNode struct {
	cfg    RevokeCredentialConfig
	svc    CredentialService
	logger *zap.Logger
}

// NewRevokeCredentialNode creates a credential revoke node.
func NewRevokeCredentialNode(cfg RevokeCredentialConfig, svc CredentialService, logger *zap.Logger) *RevokeCredentialNode {
	return &RevokeCredentialNode{cfg: cfg, svc: svc, logger: logger.Named("revoke_credential")}
}

func (n *RevokeCredentialNode) Name() string { return "RevokeCredentialNode" }

func (n *RevokeCredentialNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeNotFound, OutcomeFailure}
}

func (n *RevokeCredentialNode) Process(ctx context.Context, bag state.Bag, _ Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		subject, err := subjectID(bag, n.cfg.Keys)
		if err != nil {
			return nil, err
		}
		credentialID, ok := bag.GetString(n.cfg.Keys.CredentialID)
		if !ok {
			return nil, &ValidationError{Key: n.cfg.Keys.CredentialID}
		}

		result, err := n.svc.RevokeCredential(ctx, subject, credentialID)
		if err != nil {
			return nil, err
		}

		if result == credsvc.RevokeNotFound {
			n.logger.Debug("Credential already gone", zap.String("credential_id", credentialID))
			return terminal(OutcomeNotFound), nil
		}

		n.logger.Debug("Credential revoked", zap.String("credential_id", credentialID))
		return terminal(OutcomeSuccess), nil
	})
}
