package credsvc

import "encoding/json"

// Wallet pairing lifecycle statuses as reported by the service.
const (
	WalletStatusPairingRequired = "PAIRING_REQUIRED"
	WalletStatusActive          = "ACTIVE"
	WalletStatusExpired         = "EXPIRED"
)

// Verification session lifecycle statuses as reported by the service.
const (
	SessionStatusInitial    = "INITIAL"
	SessionStatusSuccessful = "VERIFICATION_SUCCESSFUL"
	SessionStatusExpired    = "EXPIRED"
)

// Credential revocation status value expected from a revoke call.
const CredentialStatusRevoked = "REVOKED"

// PairingSession carries the delivery artifacts for a pending wallet pairing.
type PairingSession struct {
	ID     string `json:"id,omitempty"`
	QRURL  string `json:"qrUrl,omitempty"`
	Status string `json:"status,omitempty"`
}

// DigitalWallet represents a digital wallet resource.
type DigitalWallet struct {
	ID             string          `json:"id"`
	Status         string          `json:"status,omitempty"`
	PairingSession *PairingSession `json:"pairingSession,omitempty"`

	// Raw is the undecoded response body, kept for nodes configured to
	// persist the full remote response.
	Raw json.RawMessage `json:"-"`
}

// WalletList is the result of a find-wallets call.
type WalletList struct {
	Wallets []DigitalWallet `json:"digitalWallets"`
}

// CreateWalletRequest is the body for creating a digital wallet.
type CreateWalletRequest struct {
	DigitalWalletApplication ResourceRef   `json:"digitalWalletApplication"`
	Notification             *Notification `json:"notification,omitempty"`
}

// ResourceRef references a remote resource by id.
type ResourceRef struct {
	ID string `json:"id"`
}

// Notification selects the delivery channels for a pairing link.
type Notification struct {
	Methods []string `json:"methods"`
}

// Credential represents an issued credential resource.
type Credential struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// CredentialRequest is the body for issuing or updating a credential.
type CredentialRequest struct {
	CredentialType ResourceRef    `json:"credentialType"`
	Data           map[string]any `json:"data"`
}

// RevokeResult is the outcome of a revoke call.
type RevokeResult int

const (
	RevokeRevoked RevokeResult = iota
	RevokeNotFound
)

// RequestedCredential names a credential type and the attribute keys a
// verification session asks the subject to present.
type RequestedCredential struct {
	Type string   `json:"type"`
	Keys []string `json:"keys"`
}

// CreateSessionRequest is the body for creating a verification session.
type CreateSessionRequest struct {
	Message                  string                `json:"message"`
	Protocol                 string                `json:"protocol"`
	RequestedCredentials     []RequestedCredential `json:"requestedCredentials"`
	ApplicationInstance      *ResourceRef          `json:"applicationInstance,omitempty"`
	DigitalWalletApplication *ResourceRef          `json:"digitalWalletApplication,omitempty"`
}

// VerificationSession represents a presentation session resource.
type VerificationSession struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
	QRURL  string `json:"qrUrl,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// SessionData is the polled state of a verification session.
type SessionData struct {
	Status       string          `json:"status"`
	QRURL        string          `json:"qrUrl,omitempty"`
	VerifiedData json.RawMessage `json:"verifiedData,omitempty"`

	Raw json.RawMessage `json:"-"`
}
