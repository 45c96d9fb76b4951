package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/node"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

// RegisterNodes builds the standard node set from configuration and
// registers each under its flow name.
func RegisterNodes(runner *Runner, cfg *config.Config, svc node.CredentialService, logger *zap.Logger) {
	keys := state.DefaultKeys()
	timeout := time.Duration(cfg.Nodes.TimeoutSeconds) * time.Second

	runner.Register("pairing", node.NewPairWalletNode(node.PairWalletConfig{
		Timeout:                    timeout,
		DigitalWalletApplicationID: cfg.Nodes.DigitalWalletApplicationID,
		DeliveryMethod:             node.DeliveryQRCode,
		AllowDeliveryChoice:        cfg.Nodes.AllowDeliveryChoice,
		QRMessage:                  "Scan the QR code with your wallet app to pair",
		WaitMessage:                "Follow the pairing link we sent you",
		ChoiceMessage:              "How should we deliver your pairing link?",
		StoreResponse:              cfg.Nodes.StoreResponse,
		Keys:                       keys,
	}, svc, logger))

	runner.Register("verification", node.NewVerifyCredentialNode(node.VerifyCredentialConfig{
		Timeout: timeout,
		Message: "Please present your credential",
		RequestedCredentials: []credsvc.RequestedCredential{
			{Type: cfg.Nodes.RequestedCredentialType, Keys: cfg.Nodes.RequestedCredentialKeys},
		},
		ApplicationInstanceID:      cfg.Nodes.ApplicationInstanceID,
		DigitalWalletApplicationID: cfg.Nodes.DigitalWalletApplicationID,
		DeliveryMethod:             node.DeliveryQRCode,
		AllowDeliveryChoice:        cfg.Nodes.AllowDeliveryChoice,
		QRMessage:                  "Scan the QR code with your wallet app to present",
		PushMessage:                "Approve the verification request on your device",
		ChoiceMessage:              "How should we deliver the verification request?",
		StoreResponse:              cfg.Nodes.StoreResponse,
		Keys:                       keys,
	}, svc, logger))

	runner.Register("issue", node.NewIssueCredentialNode(node.IssueCredentialConfig{
		CredentialTypeID: cfg.Nodes.CredentialTypeID,
		Attributes:       node.Projection(cfg.Nodes.AttributeMapping),
		StoreResponse:    cfg.Nodes.StoreResponse,
		Keys:             keys,
	}, svc, logger))

	runner.Register("update", node.NewUpdateCredentialNode(node.UpdateCredentialConfig{
		CredentialTypeID: cfg.Nodes.CredentialTypeID,
		Attributes:       node.Projection(cfg.Nodes.AttributeMapping),
		StoreResponse:    cfg.Nodes.StoreResponse,
		Keys:             keys,
	}, svc, logger))

	runner.Register("revoke", node.NewRevokeCredentialNode(node.RevokeCredentialConfig{
		Keys: keys,
	}, svc, logger))

	runner.Register("find-wallets", node.NewFindWalletsNode(node.FindWalletsConfig{
		ActiveOnly: true,
		Keys:       keys,
	}, svc, logger))

	runner.Register("remove-wallet", node.NewRemoveWalletNode(node.RemoveWalletConfig{
		Keys: keys,
	}, svc, logger))
}
