package node

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// VerifyCredentialConfig configures a credential verification node
// instance.
type VerifyCredentialConfig struct {
	// Timeout bounds total polling time.
	Timeout time.Duration
	// Message accompanies the presentation request on the user's device.
	Message string
	// RequestedCredentials names the credential types and attribute keys
	// the subject must present.
	RequestedCredentials []credsvc.RequestedCredential
	// ApplicationInstanceID targets push delivery at a paired wallet
	// application instance.
	ApplicationInstanceID string
	// DigitalWalletApplicationID identifies the wallet application for
	// push delivery.
	DigitalWalletApplicationID string
	// DeliveryMethod is the static delivery method when selection is
	// disabled.
	DeliveryMethod DeliveryMethod
	// AllowDeliveryChoice lets the user pick QR code or push.
	AllowDeliveryChoice bool
	// QRMessage is shown above the verification QR code.
	QRMessage string
	// PushMessage is shown while awaiting approval on the device.
	PushMessage string
	// ChoiceMessage is shown with the delivery selection prompt.
	ChoiceMessage string
	// StoreResponse persists the verified session data in the bag.
	StoreResponse bool
	// Keys names the persisted state entries.
	Keys state.Keys
}

// VerifyCredentialNode drives a credential verification transaction:
// create a presentation session, deliver it by QR code or push, poll
// until verification succeeds, expires or the node times out.
type VerifyCredentialNode struct {
	cfg     VerifyCredentialConfig
	machine *PollingMachine
	logger  *zap.Logger
}

// NewVerifyCredentialNode creates a credential verification node.
func NewVerifyCredentialNode(cfg VerifyCredentialConfig, svc CredentialService, logger *zap.Logger) *VerifyCredentialNode {
	logger = logger.Named("verify_credential")
	txn := &verificationTransaction{cfg: cfg, svc: svc}
	return &VerifyCredentialNode{
		cfg:     cfg,
		machine: NewPollingMachine(PollingConfig{
			Timeout:             cfg.Timeout,
			DefaultMethod:       cfg.DeliveryMethod,
			Methods:             VerificationDeliveryMethods,
			AllowDeliveryChoice: cfg.AllowDeliveryChoice,
			ChoiceMessage:       cfg.ChoiceMessage,
			StoreResponse:       cfg.StoreResponse,
			Keys:                cfg.Keys,
		}, txn, logger),
		logger: logger,
	}
}

func (n *VerifyCredentialNode) Name() string { return "VerifyCredentialNode" }

func (n *VerifyCredentialNode) Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeFailure, OutcomeTimeout}
}

func (n *VerifyCredentialNode) Process(ctx context.Context, bag state.Bag, sig Signal) *Result {
	return run(n.logger, n.Name(), func() (*Result, error) {
		return n.machine.Next(ctx, bag, sig)
	})
}

// verificationTransaction adapts the presentation session API to the
// polling machine's transaction contract.
type verificationTransaction struct {
	cfg VerifyCredentialConfig
	svc CredentialService
}

func (t *verificationTransaction) Start(ctx context.Context, bag state.Bag, method DeliveryMethod) (*StartResult, error) {
	req := &credsvc.CreateSessionRequest{
		Message:              t.cfg.Message,
		Protocol:             "NATIVE",
		RequestedCredentials: t.cfg.RequestedCredentials,
	}
	if method == DeliveryPush {
		req.ApplicationInstance = &credsvc.ResourceRef{ID: t.cfg.ApplicationInstanceID}
		req.DigitalWalletApplication = &credsvc.ResourceRef{ID: t.cfg.DigitalWalletApplicationID}
	}

	session, err := t.svc.CreateVerificationSession(ctx, req)
	if err != nil {
		return nil, err
	}

	return &StartResult{
		ID:      session.ID,
		Prompts: t.prompts(method, session.QRURL),
	}, nil
}

func (t *verificationTransaction) Poll(ctx context.Context, id string, method DeliveryMethod) (*PollResult, error) {
	data, err := t.svc.ReadSessionData(ctx, id)
	if err != nil {
		return nil, err
	}

	switch data.Status {
	case credsvc.SessionStatusInitial:
		return &PollResult{
			Disposition: PollPending,
			Prompts:     t.prompts(method, data.QRURL),
		}, nil
	case credsvc.SessionStatusSuccessful:
		return &PollResult{Disposition: PollSucceeded, Response: data.Raw}, nil
	case credsvc.SessionStatusExpired:
		return &PollResult{Disposition: PollExpired}, nil
	default:
		return nil, &credsvc.ProtocolError{Status: data.Status}
	}
}

func (t *verificationTransaction) prompts(method DeliveryMethod, qrURL string) []Prompt {
	if method == DeliveryPush {
		message := t.cfg.PushMessage
		if message == "" {
			message = "Approve the request on your device"
		}
		return []Prompt{TextPrompt{Message: message}}
	}
	return []Prompt{QRPrompt{Message: t.cfg.QRMessage, URL: qrURL}}
}
