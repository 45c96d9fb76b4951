package credsvc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.CredentialServiceConfig{
		BaseURL:       srv.URL,
		EnvironmentID: "env-1",
		Timeout:       5,
	}
	return NewClient(cfg, staticTokens("tok-1"), zap.NewNop()), srv
}

func TestFindWallets(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/environments/env-1/users/user-1/digitalWallets", r.URL.Path)
		_, _ = w.Write([]byte(`{"_embedded":{"digitalWallets":[{"id":"w1","status":"ACTIVE"}]}}`))
	}))

	wallets, err := client.FindWallets(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, "w1", wallets[0].ID)
	assert.Equal(t, WalletStatusActive, wallets[0].Status)
}

func TestFindWallets_NotFoundIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	wallets, err := client.FindWallets(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestCreateWallet(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"w1","status":"PAIRING_REQUIRED","pairingSession":{"qrUrl":"https://x"}}`))
	}))

	wallet, err := client.CreateWallet(context.Background(), "user-1", &CreateWalletRequest{
		DigitalWalletApplication: ResourceRef{ID: "app-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "w1", wallet.ID)
	assert.Equal(t, WalletStatusPairingRequired, wallet.Status)
	require.NotNil(t, wallet.PairingSession)
	assert.Equal(t, "https://x", wallet.PairingSession.QRURL)
	assert.NotEmpty(t, wallet.Raw)
}

func TestDeleteWallet(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	ok, err := client.DeleteWallet(context.Background(), "w1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.DeleteWallet(context.Background(), "w1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokeCredential(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, revokeContentType, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"id":"c1","status":"REVOKED"}`))
	}))

	result, err := client.RevokeCredential(context.Background(), "user-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, RevokeRevoked, result)
}

func TestRevokeCredential_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	result, err := client.RevokeCredential(context.Background(), "user-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, RevokeNotFound, result)
}

func TestRevokeCredential_UnexpectedStatusField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","status":"ACTIVE"}`))
	}))

	_, err := client.RevokeCredential(context.Background(), "user-1", "c1")
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "ACTIVE", protoErr.Status)
}

func TestRemoteError_CarriesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream broke`))
	}))

	_, err := client.ReadWallet(context.Background(), "w1")
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "upstream broke")
}

func TestReadSessionData(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/environments/env-1/presentationSessions/s1/sessionData", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"VERIFICATION_SUCCESSFUL","verifiedData":{"givenName":"Ada"}}`))
	}))

	data, err := client.ReadSessionData(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, SessionStatusSuccessful, data.Status)
	assert.NotEmpty(t, data.VerifiedData)
}

type failingTokens struct{}

func (failingTokens) Token(ctx context.Context) (string, error) {
	return "", errors.New("token endpoint unavailable")
}

func TestTokenFailure_NoRemoteCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := &config.CredentialServiceConfig{BaseURL: srv.URL, EnvironmentID: "env-1"}
	client := NewClient(cfg, failingTokens{}, zap.NewNop())

	_, err := client.ReadWallet(context.Background(), "w1")
	require.Error(t, err)
	assert.False(t, called)
}
