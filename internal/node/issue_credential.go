package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// IssueCredentialConfig configures a credential issue node instance.
type IssueCredentialConfig struct {
	// CredentialTypeID is the remote credential type to issue.
	CredentialTypeID string
	// Attributes maps output attribute names to source state keys.
	Attributes Projection
	// StoreResponse persists the issued credential resource in the bag.
	StoreResponse bool
	// Keys names the persisted state entries.
	Keys state.Keys
}

// IssueCredentialNode issues a credential to the subject, projecting the
// configured attributes from session state into the credential data.
type IssueCredentialNode struct {
	cfg    IssueCredentialConfig
	svc    CredentialService
	logger *zap.Logger
}

// NewIssueCredentialNode creates a credential issue node.
func NewIssueCredentialNode(cfg IssueCredentialConfig, svc CredentialService, logger *zap.Logger) *IssueCredentialNode {
	return &IssueCredentialNode{cfg: cfg, svc: svc, logger: logger.Named("issue_credential")}
}

func (n *IssueCredentialNode) Name() string { return "IssueCredentialNode" }

func (n *IssueCredentialNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeFailure}
}

func (n *IssueCredentialNode) Process(ctx context.Context, bag state.Bag, _ Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		subject, err := subjectID(bag, n.cfg.Keys)
		if err != nil {
			return nil, err
		}

		req := &credsvc.CredentialRequest{
			CredentialType: credsvc.ResourceRef{ID: n.cfg.CredentialTypeID},
			Data:           n.cfg.Attributes.Build(bag),
		}
		cred, err := n.svc.IssueCredential(ctx, subject, req)
		if err != nil {
			return nil, err
		}

		bag.Put(n.cfg.Keys.CredentialID, cred.ID)
		if n.cfg.StoreResponse && len(cred.Raw) > 0 {
			bag.PutRaw(n.cfg.Keys.Response, cred.Raw)
		}

		n.logger.Debug("Credential issued",
			zap.String("credential_id", cred.ID),
			zap.String("status", cred.Status),
		)
		return terminal(OutcomeSuccess), nil
	})
}
