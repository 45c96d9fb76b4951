package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// FindWalletsConfig configures a find-wallets node instance.
type FindWalletsConfig struct {
	// ActiveOnly restricts the search to wallets that completed pairing.
	ActiveOnly bool
	// Keys names the persisted state entries.
	Keys state.Keys
}

// FindWalletsNode looks up the subject's paired wallets and records the
// first match for downstream nodes. No wallets is the not_found outcome.
type FindWalletsNode struct {
	cfg    FindWalletsConfig
	svc    CredentialService
	logger *zap.Logger
}

// NewFindWalletsNode creates a find-wallets node.
func NewFindWalletsNode(cfg FindWalletsConfig, svc CredentialService, logger *zap.Logger) *FindWalletsNode {
	return &FindWalletsNode{cfg: cfg, svc: svc, logger: logger.Named("find_wallets")}
}

func (n *FindWalletsNode) Name() string { return "FindWalletsNode" }

func (n *FindWalletsNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeNotFound, OutcomeFailure}
}

func (n *FindWalletsNode) Process(ctx context.Context, bag state.Bag, _ Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		subject, err := subjectID(bag, n.cfg.Keys)
		if err != nil {
			return nil, err
		}

		wallets, err := n.svc.FindWallets(ctx, subject)
		if err != nil {
			return nil, err
		}

		for _, wallet := range wallets {
			if n.cfg.ActiveOnly && wallet.Status != credsvc.WalletStatusActive {
				continue
			}
			bag.Put(n.cfg.Keys.WalletID, wallet.ID)
			n.logger.Debug("Wallet found",
				zap.String("wallet_id", wallet.ID),
				zap.String("status", wallet.Status),
			)
			return terminal(OutcomeSuccess), nil
		}

		return terminal(OutcomeNotFound), nil
	})
}
