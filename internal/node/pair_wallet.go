package node

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// PairWalletConfig configures a wallet pairing node instance.
type PairWalletConfig struct {
	// Timeout bounds total polling time.
	Timeout time.Duration
	// DigitalWalletApplicationID is the wallet application to pair with.
	DigitalWalletApplicationID string
	// DeliveryMethod is the static delivery method when selection is
	// disabled.
	DeliveryMethod DeliveryMethod
	// AllowDeliveryChoice lets the user pick QR code, email or SMS.
	AllowDeliveryChoice bool
	// QRMessage is shown above the pairing QR code.
	QRMessage string
	// WaitMessage is shown while a pairing link was sent out of band.
	WaitMessage string
	// ChoiceMessage is shown with the delivery selection prompt.
	ChoiceMessage string
	// StoreResponse persists the paired wallet resource in the bag.
	StoreResponse bool
	// Keys names the persisted state entries.
	Keys state.Keys
}

// PairWalletNode drives a wallet pairing transaction: create the wallet,
// deliver the pairing link, poll until the wallet turns active, expires
// or the node times out.
type PairWalletNode struct {
	cfg     PairWalletConfig
	machine *PollingMachine
	logger  *zap.Logger
}

// NewPairWalletNode creates a wallet pairing node.
func NewPairWalletNode(cfg PairWalletConfig, svc CredentialService, logger *zap.Logger) *PairWalletNode {
	logger = logger.Named("pair_wallet")
	txn := &pairingTransaction{cfg: cfg, svc: svc}
	return &PairWalletNode{
		cfg:     cfg,
		machine: NewPollingMachine(PollingConfig{
			Timeout:             cfg.Timeout,
			DefaultMethod:       cfg.DeliveryMethod,
			Methods:             PairingDeliveryMethods,
			AllowDeliveryChoice: cfg.AllowDeliveryChoice,
			ChoiceMessage:       cfg.ChoiceMessage,
			StoreResponse:       cfg.StoreResponse,
			Keys:                cfg.Keys,
		}, txn, logger),
		logger: logger,
	}
}

func (n *PairWalletNode) Name() string { return "PairWalletNode" }

func (n *PairWalletNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeFailure, OutcomeTimeout}
}

func (n *PairWalletNode) Process(ctx context.Context, bag state.Bag, sig Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		return n.machine.Next(ctx, bag, sig)
	})
}

// pairingTransaction adapts the digital wallet API to the polling
// machine's transaction contract.
type pairingTransaction struct {
	cfg PairWalletConfig
	svc CredentialService
}

func (t *pairingTransaction) Start(ctx context.Context, bag state.Bag, method DeliveryMethod) (*StartResult, error) {
	subject, err := subjectID(bag, t.cfg.Keys)
	if err != nil {
		return nil, err
	}

	req := &credsvc.CreateWalletRequest{
		DigitalWalletApplication: credsvc.ResourceRef{ID: t.cfg.DigitalWalletApplicationID},
	}
	if nm := method.notificationMethod(); nm != "" {
		req.Notification = &credsvc.Notification{Methods: []string{nm}}
	}

	wallet, err := t.svc.CreateWallet(ctx, subject, req)
	if err != nil {
		return nil, err
	}

	return &StartResult{
		ID:      wallet.ID,
		Prompts: t.prompts(method, wallet.PairingSession),
	}, nil
}

func (t *pairingTransaction) Poll(ctx context.Context, id string, method DeliveryMethod) (*PollResult, error) {
	wallet, err := t.svc.ReadWallet(ctx, id)
	if err != nil {
		return nil, err
	}

	switch wallet.Status {
	case credsvc.WalletStatusPairingRequired:
		return &PollResult{
			Disposition: PollPending,
			Prompts:     t.prompts(method, wallet.PairingSession),
		}, nil
	case credsvc.WalletStatusActive:
		return &PollResult{Disposition: PollSucceeded, Response: wallet.Raw}, nil
	case credsvc.WalletStatusExpired:
		return &PollResult{Disposition: PollExpired}, nil
	default:
		return nil, &credsvc.ProtocolError{Status: wallet.Status}
	}
}

func (t *pairingTransaction) prompts(method DeliveryMethod, session *credsvc.PairingSession) []Prompt {
	if method == DeliveryQRCode {
		url := ""
		if session != nil {
			url = session.QRURL
		}
		return []Prompt{QRPrompt{Message: t.cfg.QRMessage, URL: url}}
	}

	message := t.cfg.WaitMessage
	if message == "" {
		message = fmt.Sprintf("A pairing link was sent via %s", method)
	}
	return []Prompt{TextPrompt{Message: message}}
}
