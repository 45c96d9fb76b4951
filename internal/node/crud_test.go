package node

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
	"github.com/sirosfoundation/go-credential-nodes/internal/state"
)

func TestIssueCredential_ProjectsAttributes(t *testing.T) {
	var captured *credsvc.CredentialRequest
	svc := &fakeService{
		issueCredential: func(ctx context.Context, userID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error) {
			assert.Equal(t, "user-1", userID)
			captured = req
			return &credsvc.Credential{
				ID:     "c1",
				Status: "ACTIVE",
				Raw:    json.RawMessage(`{"id":"c1","status":"ACTIVE"}`),
			}, nil
		},
	}

	node := NewIssueCredentialNode(IssueCredentialConfig{
		CredentialTypeID: "type-1",
		Attributes: Projection{
			"givenName": "givenName",
			"surname":   "sn",
			"email":     "mail",
		},
		StoreResponse: true,
		Keys:          state.DefaultKeys(),
	}, svc, zap.NewNop())

	bag := state.Bag{
		"subjectId": "user-1",
		"givenName": "Ada",
		"sn":        "Lovelace",
		// "mail" absent: silently skipped
	}

	res := node.Process(context.Background(), bag, NoSignal{})
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	assert.Equal(t, "type-1", captured.CredentialType.ID)
	assert.Equal(t, map[string]any{"givenName": "Ada", "surname": "Lovelace"}, captured.Data)

	id, ok := bag.GetString("credentialId")
	require.True(t, ok)
	assert.Equal(t, "c1", id)

	_, ok = bag.GetRaw("credentialResponse")
	assert.True(t, ok)
}

func TestIssueCredential_MissingSubject(t *testing.T) {
	svc := &fakeService{}
	node := NewIssueCredentialNode(IssueCredentialConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	res := node.Process(context.Background(), state.Bag{}, NoSignal{})
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Zero(t, svc.calls)
}

func TestUpdateCredential_RequiresCredentialID(t *testing.T) {
	svc := &fakeService{}
	node := NewUpdateCredentialNode(UpdateCredentialConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	res := node.Process(context.Background(), state.Bag{"subjectId": "user-1"}, NoSignal{})
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Zero(t, svc.calls)
}

func TestUpdateCredential_Success(t *testing.T) {
	svc := &fakeService{
		updateCredential: func(ctx context.Context, userID, credentialID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error) {
			assert.Equal(t, "c1", credentialID)
			return &credsvc.Credential{ID: "c1"}, nil
		},
	}
	node := NewUpdateCredentialNode(UpdateCredentialConfig{
		CredentialTypeID: "type-1",
		Attributes:       Projection{"givenName": "givenName"},
		Keys:             state.DefaultKeys(),
	}, svc, zap.NewNop())

	bag := state.Bag{"subjectId": "user-1", "credentialId": "c1", "givenName": "Ada"}
	res := node.Process(context.Background(), bag, NoSignal{})
	assert.Equal(t, OutcomeSuccess, res.Outcome)
}

func TestRevokeCredential_Success(t *testing.T) {
	svc := &fakeService{
		revokeCredential: func(ctx context.Context, userID, credentialID string) (credsvc.RevokeResult, error) {
			return credsvc.RevokeRevoked, nil
		},
	}
	node := NewRevokeCredentialNode(RevokeCredentialConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	bag := state.Bag{"subjectId": "user-1", "credentialId": "c1"}
	res := node.Process(context.Background(), bag, NoSignal{})
	assert.Equal(t, OutcomeSuccess, res.Outcome)
}

// A 404 on revoke is the documented not-found outcome, not a failure.
func TestRevokeCredential_NotFound(t *testing.T) {
	svc := &fakeService{
		revokeCredential: func(ctx context.Context, userID, credentialID string) (credsvc.RevokeResult, error) {
			return credsvc.RevokeNotFound, nil
		},
	}
	node := NewRevokeCredentialNode(RevokeCredentialConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	bag := state.Bag{"subjectId": "user-1", "credentialId": "c1"}
	res := node.Process(context.Background(), bag, NoSignal{})
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestFindWallets_RecordsFirstActiveWallet(t *testing.T) {
	svc := &fakeService{
		findWallets: func(ctx context.Context, userID string) ([]credsvc.DigitalWallet, error) {
			return []credsvc.DigitalWallet{
				{ID: "w-old", Status: credsvc.WalletStatusExpired},
				{ID: "w1", Status: credsvc.WalletStatusActive},
			}, nil
		},
	}
	node := NewFindWalletsNode(FindWalletsConfig{ActiveOnly: true, Keys: state.DefaultKeys()}, svc, zap.NewNop())

	bag := state.Bag{"subjectId": "user-1"}
	res := node.Process(context.Background(), bag, NoSignal{})
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	id, ok := bag.GetString("digitalWalletId")
	require.True(t, ok)
	assert.Equal(t, "w1", id)
}

func TestFindWallets_NoWallets(t *testing.T) {
	svc := &fakeService{
		findWallets: func(ctx context.Context, userID string) ([]credsvc.DigitalWallet, error) {
			return nil, nil
		},
	}
	node := NewFindWalletsNode(FindWalletsConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	res := node.Process(context.Background(), state.Bag{"subjectId": "user-1"}, NoSignal{})
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestRemoveWallet_Success(t *testing.T) {
	svc := &fakeService{
		deleteWallet: func(ctx context.Context, walletID string) (bool, error) {
			assert.Equal(t, "w1", walletID)
			return true, nil
		},
	}
	node := NewRemoveWalletNode(RemoveWalletConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	bag := state.Bag{"digitalWalletId": "w1"}
	res := node.Process(context.Background(), bag, NoSignal{})
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	_, ok := bag.GetString("digitalWalletId")
	assert.False(t, ok, "wallet id consumed")
}

func TestRemoveWallet_NotFound(t *testing.T) {
	svc := &fakeService{
		deleteWallet: func(ctx context.Context, walletID string) (bool, error) {
			return false, nil
		},
	}
	node := NewRemoveWalletNode(RemoveWalletConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	res := node.Process(context.Background(), state.Bag{"digitalWalletId": "w1"}, NoSignal{})
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestRemoveWallet_MissingWalletID(t *testing.T) {
	svc := &fakeService{}
	node := NewRemoveWalletNode(RemoveWalletConfig{Keys: state.DefaultKeys()}, svc, zap.NewNop())

	res := node.Process(context.Background(), state.Bag{}, NoSignal{})
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Zero(t, svc.calls)
}
