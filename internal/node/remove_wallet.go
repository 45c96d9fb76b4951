package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// RemoveWalletConfig configures a remove-wallet node instance.
type RemoveWalletConfig struct {
	// Keys names the persisted state entries.
	Keys state.Keys
}

// RemoveWalletNode deletes the wallet named in session state. A wallet
// the service no longer knows is the not_found outcome.
type RemoveWalletNode struct {
	cfg    RemoveWalletConfig
	svc    CredentialService
	logger *zap.Logger
}

// NewRemoveWalletNode creates a remove-wallet node.
func NewRemoveWalletNode(cfg RemoveWalletConfig, svc CredentialService, logger *zap.Logger) *RemoveWalletNode {
	return &RemoveWalletNode{cfg: cfg, svc: svc, logger: logger.Named("remove_wallet")}
}

func (n *RemoveWalletNode) Name() string { return "RemoveWalletNode" }

func (n *RemoveWalletNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeNotFound, OutcomeFailure}
}

func (n *RemoveWalletNode) Process(ctx context.Context, bag state.Bag, _ Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		walletID, ok := bag.GetString(n.cfg.Keys.WalletID)
		if !ok {
			return nil, &ValidationError{Key: n.cfg.Keys.WalletID}
		}

		deleted, err := n.svc.DeleteWallet(ctx, walletID)
		if err != nil {
			return nil, err
		}

		bag.Remove(n.cfg.Keys.WalletID)

		if !deleted {
			return terminal(OutcomeNotFound), nil
		}

		n.logger.Debug("Wallet removed", zap.String("wallet_id", walletID))
		return terminal(OutcomeSuccess), nil
	})
}
