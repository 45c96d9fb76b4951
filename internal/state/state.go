// Package state defines the externally persisted transaction state that
// carries a flow across invocations of the stateless nodes.
package state

import (
	"context"
	"encoding/json"
	"errors"
)

// Common errors
var (
	ErrNotFound = errors.New("session state not found")
	ErrDatabase = errors.New("state store error")
)

// Bag is one session's persisted key/value state. Nodes read the inputs
// placed there by upstream steps and record transaction progress in it;
// the host persists it between invocations.
type Bag map[string]any

// GetString returns the string value for key, if present and non-empty.
func (b Bag) GetString(key string) (string, bool) {
	v, ok := b[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// GetInt returns the integer value for key. Numeric values survive JSON
// and BSON round trips as float64 or int variants; all are accepted.
func (b Bag) GetInt(key string) (int, bool) {
	switch v := b[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetRaw returns the value for key re-encoded as JSON.
func (b Bag) GetRaw(key string) (json.RawMessage, bool) {
	v, ok := b[key]
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores a value under key.
func (b Bag) Put(key string, value any) {
	b[key] = value
}

// PutRaw stores a JSON document under key as a decoded value, so every
// store backend can persist it natively.
func (b Bag) PutRaw(key string, raw json.RawMessage) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		b[key] = string(raw)
		return
	}
	b[key] = v
}

// Remove deletes a key.
func (b Bag) Remove(key string) {
	delete(b, key)
}

// Clone returns an independent copy of the bag.
func (b Bag) Clone() Bag {
	out := make(Bag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Keys names the state entries a node instance reads and writes. Every
// name is configurable per node instance; DefaultKeys gives the documented
// defaults.
type Keys struct {
	// SubjectID is where an upstream step left the remote user identifier.
	SubjectID string
	// TransactionID holds the wallet or verification-session id while a
	// transaction is in flight.
	TransactionID string
	// DeliveryMethod holds the user's delivery-method choice index.
	DeliveryMethod string
	// ElapsedMs accumulates polling time against the configured timeout.
	ElapsedMs string
	// Response optionally receives the terminal remote response.
	Response string
	// WalletID is where the remove-wallet node reads the wallet to delete.
	WalletID string
	// CredentialID is where update/revoke nodes read the credential id,
	// and where the issue node records it.
	CredentialID string
}

// DefaultKeys returns the documented default state key names.
func DefaultKeys() Keys {
	return Keys{
		SubjectID:      "subjectId",
		TransactionID:  "credentialTransactionId",
		DeliveryMethod: "credentialDeliveryMethod",
		ElapsedMs:      "credentialElapsedMs",
		Response:       "credentialResponse",
		WalletID:       "digitalWalletId",
		CredentialID:   "credentialId",
	}
}

// Store persists session bags across invocations. Implementations must be
// safe for concurrent use by independent sessions; a single session is
// never accessed concurrently.
type Store interface {
	// Load returns the bag for a session, or an empty bag if none exists.
	Load(ctx context.Context, sessionID string) (Bag, error)

	// Save persists the bag for a session, replacing any previous state.
	Save(ctx context.Context, sessionID string, bag Bag) error

	// Delete removes a session's state entirely.
	Delete(ctx context.Context, sessionID string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases backing resources.
	Close() error
}
