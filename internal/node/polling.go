package node

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

// PollIntervalMs is the advisory wait between poll ticks and the unit
// added to the persisted elapsed-time counter each cycle. Shared by the
// pairing and verification flows.
const PollIntervalMs = 5000

// PollDisposition classifies the remote status observed by a poll.
type PollDisposition int

const (
	// PollPending: the transaction has not reached a terminal state.
	PollPending PollDisposition = iota
	// PollSucceeded: the transaction completed successfully.
	PollSucceeded
	// PollExpired: the remote service expired the transaction.
	PollExpired
)

// StartResult is the outcome of starting a remote transaction.
type StartResult struct {
	// ID is the remote transaction identifier to persist.
	ID string
	// Prompts are the delivery-specific UI instructions.
	Prompts []Prompt
}

// PollResult is the outcome of one remote status read.
type PollResult struct {
	Disposition PollDisposition
	// Prompts re-emitted while pending.
	Prompts []Prompt
	// Response is the terminal remote payload, persisted when the node
	// is configured to store it.
	Response json.RawMessage
}

// Transaction is the remote long-running transaction a polling node
// drives: wallet pairing or credential verification.
type Transaction interface {
	// Start begins the transaction with the given delivery method.
	Start(ctx context.Context, bag state.Bag, method DeliveryMethod) (*StartResult, error)

	// Poll reads the transaction's remote status.
	Poll(ctx context.Context, id string, method DeliveryMethod) (*PollResult, error)
}

// PollingConfig configures one polling node instance.
type PollingConfig struct {
	// Timeout bounds total polling time before the timeout outcome.
	Timeout time.Duration
	// DefaultMethod is used when delivery selection is disabled.
	DefaultMethod DeliveryMethod
	// Methods is the ordered option set offered when selection is
	// enabled. Choice indexes are ordinals into this slice.
	Methods []DeliveryMethod
	// AllowDeliveryChoice enables the delivery-method selection prompt.
	AllowDeliveryChoice bool
	// ChoiceMessage is shown with the selection prompt.
	ChoiceMessage string
	// StoreResponse persists the terminal remote response in the bag.
	StoreResponse bool
	// Keys names the persisted state entries.
	Keys state.Keys
}

// PollingMachine is the reentrant control logic behind the pairing and
// verification nodes. Every invocation reconstructs its position purely
// from the persisted bag plus the inbound signal; it holds no state of
// its own between calls.
type PollingMachine struct {
	cfg    PollingConfig
	txn    Transaction
	logger *zap.Logger
}

// NewPollingMachine creates a machine driving the given transaction.
func NewPollingMachine(cfg PollingConfig, txn Transaction, logger *zap.Logger) *PollingMachine {
	return &PollingMachine{cfg: cfg, txn: txn, logger: logger}
}

// Next executes one invocation: entry dispatch on the inbound signal,
// at most one remote call, then suspend or terminal outcome. Bag writes
// happen only after a remote call has succeeded.
func (m *PollingMachine) Next(ctx context.Context, bag state.Bag, sig Signal) (*Result, error) {
	if _, err := subjectID(bag, m.cfg.Keys); err != nil {
		return nil, err
	}

	switch sig := sig.(type) {
	case DeliveryChoice:
		method, err := methodAt(m.cfg.Methods, sig.Index)
		if err != nil {
			return nil, err
		}
		return m.start(ctx, bag, method, sig.Index, true)

	case PollTick:
		return m.poll(ctx, bag)

	case NoSignal:
		if m.cfg.AllowDeliveryChoice {
			return suspend(choicePrompt(m.cfg.ChoiceMessage, m.cfg.Methods)), nil
		}
		return m.start(ctx, bag, m.cfg.DefaultMethod, 0, false)

	default:
		return nil, fmt.Errorf("unsupported signal %T", sig)
	}
}

func (m *PollingMachine) start(ctx context.Context, bag state.Bag, method DeliveryMethod, choiceIndex int, chosen bool) (*Result, error) {
	started, err := m.txn.Start(ctx, bag, method)
	if err != nil {
		return nil, err
	}

	bag.Put(m.cfg.Keys.TransactionID, started.ID)
	bag.Put(m.cfg.Keys.ElapsedMs, PollIntervalMs)
	if chosen {
		bag.Put(m.cfg.Keys.DeliveryMethod, choiceIndex)
	}

	m.logger.Debug("Transaction started",
		zap.String("transaction_id", started.ID),
		zap.Stringer("delivery_method", method),
	)

	return suspend(append(started.Prompts, PollPrompt{WaitMs: PollIntervalMs})...), nil
}

func (m *PollingMachine) poll(ctx context.Context, bag state.Bag) (*Result, error) {
	id, ok := bag.GetString(m.cfg.Keys.TransactionID)
	if !ok {
		return nil, ErrNoTransaction
	}

	method := m.cfg.DefaultMethod
	if idx, ok := bag.GetInt(m.cfg.Keys.DeliveryMethod); m.cfg.AllowDeliveryChoice && ok {
		resolved, err := methodAt(m.cfg.Methods, idx)
		if err != nil {
			return nil, err
		}
		method = resolved
	}

	// Timeout accounting happens before the status read: the invocation
	// that crosses the threshold makes no remote call.
	elapsed, _ := bag.GetInt(m.cfg.Keys.ElapsedMs)
	if time.Duration(elapsed)*time.Millisecond >= m.cfg.Timeout {
		m.clear(bag)
		m.logger.Debug("Transaction timed out",
			zap.String("transaction_id", id),
			zap.Int("elapsed_ms", elapsed),
		)
		return terminal(OutcomeTimeout), nil
	}

	polled, err := m.txn.Poll(ctx, id, method)
	if err != nil {
		return nil, err
	}

	switch polled.Disposition {
	case PollPending:
		bag.Put(m.cfg.Keys.ElapsedMs, elapsed+PollIntervalMs)
		return suspend(append(polled.Prompts, PollPrompt{WaitMs: PollIntervalMs})...), nil

	case PollSucceeded:
		if m.cfg.StoreResponse && len(polled.Response) > 0 {
			bag.PutRaw(m.cfg.Keys.Response, polled.Response)
		}
		m.clear(bag)
		return terminal(OutcomeSuccess), nil

	case PollExpired:
		m.clear(bag)
		return terminal(OutcomeFailure), nil

	default:
		return nil, fmt.Errorf("unknown poll disposition %d", polled.Disposition)
	}
}

// clear removes the in-flight transaction keys. The stored response key
// is left alone: it is a declared output, not transaction state.
func (m *PollingMachine) clear(bag state.Bag) {
	bag.Remove(m.cfg.Keys.TransactionID)
	bag.Remove(m.cfg.Keys.DeliveryMethod)
	bag.Remove(m.cfg.Keys.ElapsedMs)
}
