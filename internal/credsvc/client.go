// Package credsvc implements the client for the remote credentialing
// service: wallet pairing, credential issuance and revocation, and
// verification sessions.
package credsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

const revokeContentType = "application/vnd.pingidentity.validations.revokeCredential+json"

// TokenSource supplies bearer tokens for remote calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client issues the fixed set of remote operations against the
// credentialing API. It is safe for concurrent use.
type Client struct {
	cfg        *config.CredentialServiceConfig
	tokens     TokenSource
	logger     *zap.Logger
	httpClient *http.Client
}

// NewClient creates a new credentialing service client.
func NewClient(cfg *config.CredentialServiceConfig, tokens TokenSource, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		logger: logger.Named("credsvc"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) envURL(parts ...string) string {
	u := fmt.Sprintf("%s/environments/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.EnvironmentID))
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

// do performs one HTTP call with bearer auth and returns status and body.
func (c *Client) do(ctx context.Context, method, reqURL, contentType string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("credential service request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Remote call completed",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
	)

	return resp.StatusCode, data, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// FindWallets lists the digital wallets paired for a subject. A 404 is
// the documented empty result, not an error.
func (c *Client) FindWallets(ctx context.Context, userID string) ([]DigitalWallet, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.envURL("users", userID, "digitalWallets"), "", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var list struct {
		Embedded WalletList `json:"_embedded"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse wallet list: %w", err)
	}
	return list.Embedded.Wallets, nil
}

// CreateWallet starts a wallet pairing transaction for a subject.
func (c *Client) CreateWallet(ctx context.Context, userID string, req *CreateWalletRequest) (*DigitalWallet, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.envURL("users", userID, "digitalWallets"), "", req)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var wallet DigitalWallet
	if err := json.Unmarshal(body, &wallet); err != nil {
		return nil, fmt.Errorf("failed to parse wallet: %w", err)
	}
	wallet.Raw = body
	return &wallet, nil
}

// ReadWallet fetches the pairing status of a digital wallet.
func (c *Client) ReadWallet(ctx context.Context, walletID string) (*DigitalWallet, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.envURL("digitalWallets", walletID), "", nil)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var wallet DigitalWallet
	if err := json.Unmarshal(body, &wallet); err != nil {
		return nil, fmt.Errorf("failed to parse wallet: %w", err)
	}
	wallet.Raw = body
	return &wallet, nil
}

// DeleteWallet removes a digital wallet. Returns false when the wallet
// does not exist.
func (c *Client) DeleteWallet(ctx context.Context, walletID string) (bool, error) {
	status, body, err := c.do(ctx, http.MethodDelete, c.envURL("digitalWallets", walletID), "", nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if !success(status) {
		return false, &RemoteError{StatusCode: status, Body: string(body)}
	}
	return true, nil
}

// IssueCredential issues a new credential to a subject.
func (c *Client) IssueCredential(ctx context.Context, userID string, req *CredentialRequest) (*Credential, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.envURL("users", userID, "credentials"), "", req)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var cred Credential
	if err := json.Unmarshal(body, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}
	cred.Raw = body
	return &cred, nil
}

// UpdateCredential replaces the data of an issued credential.
func (c *Client) UpdateCredential(ctx context.Context, userID, credentialID string, req *CredentialRequest) (*Credential, error) {
	status, body, err := c.do(ctx, http.MethodPut, c.envURL("users", userID, "credentials", credentialID), "", req)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var cred Credential
	if err := json.Unmarshal(body, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}
	cred.Raw = body
	return &cred, nil
}

// RevokeCredential revokes an issued credential. A 404 is the documented
// not-found result. Any 2xx whose status field is not REVOKED is a
// protocol violation.
func (c *Client) RevokeCredential(ctx context.Context, userID, credentialID string) (RevokeResult, error) {
	reqURL := c.envURL("users", userID, "credentials", credentialID)
	status, body, err := c.do(ctx, http.MethodPost, reqURL, revokeContentType, struct{}{})
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return RevokeNotFound, nil
	}
	if !success(status) {
		return 0, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var cred Credential
	if err := json.Unmarshal(body, &cred); err != nil {
		return 0, fmt.Errorf("failed to parse revoke response: %w", err)
	}
	if cred.Status != CredentialStatusRevoked {
		return 0, &ProtocolError{Status: cred.Status}
	}
	return RevokeRevoked, nil
}

// CreateVerificationSession starts a presentation session. The request
// carries the delivery-specific fields (application instance for push,
// none for QR).
func (c *Client) CreateVerificationSession(ctx context.Context, req *CreateSessionRequest) (*VerificationSession, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.envURL("presentationSessions"), "", req)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var session VerificationSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse verification session: %w", err)
	}
	session.Raw = body
	return &session, nil
}

// ReadSessionData polls the state of a verification session.
func (c *Client) ReadSessionData(ctx context.Context, sessionID string) (*SessionData, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.envURL("presentationSessions", sessionID, "sessionData"), "", nil)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &RemoteError{StatusCode: status, Body: string(body)}
	}

	var data SessionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session data: %w", err)
	}
	data.Raw = body
	return &data, nil
}
