// Package node implements the authentication-flow nodes that pair
// digital wallets and issue, update, verify and revoke credentials
// against the remote credentialing service.
//
// Each node is stateless between invocations: it reads the session's
// persisted state bag and the inbound signal, performs at most one
// remote call, mutates the bag, and either suspends with prompts or
// returns a terminal outcome.
package node

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/auth"
	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// Outcome is a named terminal result consumed by the surrounding flow.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeNotFound Outcome = "not_found"
	OutcomeTimeout  Outcome = "timeout"
)

// Signal is the inbound user-input signal for one invocation.
type Signal interface {
	isSignal()
}

// NoSignal marks a fresh entry with no callback input.
type NoSignal struct{}

// DeliveryChoice carries the ordinal index of the delivery method the
// user selected.
type DeliveryChoice struct {
	Index int
}

// PollTick indicates the host waited one interval and is re-invoking
// the node to check transaction status.
type PollTick struct{}

func (NoSignal) isSignal()       {}
func (DeliveryChoice) isSignal() {}
func (PollTick) isSignal()       {}

// Prompt is one UI instruction emitted while a node is suspended.
type Prompt interface {
	isPrompt()
}

// ChoicePrompt asks the user to pick one of a fixed ordered option set.
type ChoicePrompt struct {
	Message string
	Options []string
}

// TextPrompt shows a message to the user.
type TextPrompt struct {
	Message string
}

// QRPrompt shows a message plus a link to render as a QR code.
type QRPrompt struct {
	Message string
	URL     string
}

// PollPrompt instructs the host to wait and re-invoke with a poll tick.
// WaitMs is advisory.
type PollPrompt struct {
	WaitMs int
}

func (ChoicePrompt) isPrompt() {}
func (TextPrompt) isPrompt()   {}
func (QRPrompt) isPrompt()     {}
func (PollPrompt) isPrompt()   {}

// Result is the output of one node invocation: either a terminal
// outcome, or a set of prompts to show while suspended.
type Result struct {
	Outcome Outcome
	Prompts []Prompt
}

// Suspended reports whether the invocation suspended awaiting input.
func (r *Result) Suspended() bool {
	return r.Outcome == ""
}

func suspend(prompts ...Prompt) *Result {
	return &Result{Prompts: prompts}
}

func terminal(outcome Outcome) *Result {
	return &Result{Outcome: outcome}
}

// Node is one step in an authentication flow.
type Node interface {
	// Name identifies the node type in logs.
	Name() string

	// Outcomes returns the node's declared outcome set. Process only
	// ever returns outcomes from this set.
	Outcomes() []Outcome

	// Process executes one invocation. Errors never propagate: any
	// internal failure is logged and mapped to the failure outcome.
	Process(ctx context.Context, bag state.Bag, sig Signal) *Result
}

// ValidationError reports a required state value missing or blank at
// node entry. No remote call is made.
type ValidationError struct {
	Key string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required state value %q is missing", e.Key)
}

// ErrNoTransaction reports a poll tick arriving without a persisted
// transaction id.
var ErrNoTransaction = errors.New("poll resumed without a prior transaction")

// run executes a node body and maps any error to the failure outcome,
// logging it with enough context to tell the error classes apart.
func run(logger *zap.Logger, name string, fn func() (*Result, error)) *Result {
	res, err := fn()
	if err == nil {
		return res
	}

	var validationErr *ValidationError
	var remoteErr *credsvc.RemoteError
	var protoErr *credsvc.ProtocolError

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Node input validation failed",
			zap.String("node", name),
			zap.String("key", validationErr.Key),
		)
	case errors.Is(err, auth.ErrTokenUnavailable):
		logger.Error("Node could not obtain worker token",
			zap.String("node", name),
			zap.Error(err),
		)
	case errors.As(err, &protoErr):
		// Contract break with the remote service. Kept distinct from
		// ordinary remote failures in the logs even though both map to
		// the failure outcome.
		logger.Error("Remote service violated its transaction contract",
			zap.String("node", name),
			zap.String("remote_status", protoErr.Status),
		)
	case errors.As(err, &remoteErr):
		logger.Error("Remote call failed",
			zap.String("node", name),
			zap.Int("http_status", remoteErr.StatusCode),
			zap.String("body", remoteErr.Body),
		)
	default:
		logger.Error("Node execution failed",
			zap.String("node", name),
			zap.Error(err),
		)
	}

	return terminal(OutcomeFailure)
}

// subjectID resolves the remote user identifier from the primary state
// key, falling back to the object-attribute bag an upstream registration
// step may have populated.
func subjectID(bag state.Bag, keys state.Keys) (string, error) {
	if id, ok := bag.GetString(keys.SubjectID); ok {
		return id, nil
	}
	if attrs, ok := bag["objectAttributes"].(map[string]any); ok {
		if id, ok := attrs[keys.SubjectID].(string); ok && id != "" {
			return id, nil
		}
	}
	return "", &ValidationError{Key: keys.SubjectID}
}

// CredentialService is the remote operation set the nodes depend on.
// *credsvc.Client implements it.
type CredentialService interface {
	FindWallets(ctx context.Context, userID string) ([]credsvc.DigitalWallet, error)
	CreateWallet(ctx context.Context, userID string, req *credsvc.CreateWalletRequest) (*credsvc.DigitalWallet, error)
	ReadWallet(ctx context.Context, walletID string) (*credsvc.DigitalWallet, error)
	DeleteWallet(ctx context.Context, walletID string) (bool, error)
	IssueCredential(ctx context.Context, userID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error)
	UpdateCredential(ctx context.Context, userID, credentialID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error)
	RevokeCredential(ctx context.Context, userID, credentialID string) (credsvc.RevokeResult, error)
	CreateVerificationSession(ctx context.Context, req *credsvc.CreateSessionRequest) (*credsvc.VerificationSession, error)
	ReadSessionData(ctx context.Context, sessionID string) (*credsvc.SessionData, error)
}
