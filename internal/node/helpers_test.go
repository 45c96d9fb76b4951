package node

import (
	"context"

	"github.com/sirosfoundation/go-credential-nodes/internal/credsvc"
)

// fakeService scripts the remote operation set for node tests. Each
// operation delegates to a function field and counts its calls.
type fakeService struct {
	calls int

	findWallets         func(ctx context.Context, userID string) ([]credsvc.DigitalWallet, error)
	createWallet        func(ctx context.Context, userID string, req *credsvc.CreateWalletRequest) (*credsvc.DigitalWallet, error)
	readWallet          func(ctx context.Context, walletID string) (*credsvc.DigitalWallet, error)
	deleteWallet        func(ctx context.Context, walletID string) (bool, error)
	issueCredential     func(ctx context.Context, userID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error)
	updateCredential    func(ctx context.Context, userID, credentialID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error)
	revokeCredential    func(ctx context.Context, userID, credentialID string) (credsvc.RevokeResult, error)
	createSession       func(ctx context.Context, req *credsvc.CreateSessionRequest) (*credsvc.VerificationSession, error)
	readSessionData     func(ctx context.Context, sessionID string) (*credsvc.SessionData, error)
}

func (f *fakeService) FindWallets(ctx context.Context, userID string) ([]credsvc.DigitalWallet, error) {
	f.calls++
	return f.findWallets(ctx, userID)
}

func (f *fakeService) CreateWallet(ctx context.Context, userID string, req *credsvc.CreateWalletRequest) (*credsvc.DigitalWallet, error) {
	f.calls++
	return f.createWallet(ctx, userID, req)
}

func (f *fakeService) ReadWallet(ctx context.Context, walletID string) (*credsvc.DigitalWallet, error) {
	f.calls++
	return f.readWallet(ctx, walletID)
}

func (f *fakeService) DeleteWallet(ctx context.Context, walletID string) (bool, error) {
	f.calls++
	return f.deleteWallet(ctx, walletID)
}

func (f *fakeService) IssueCredential(ctx context.Context, userID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error) {
	f.calls++
	return f.issueCredential(ctx, userID, req)
}

func (f *fakeService) UpdateCredential(ctx context.Context, userID, credentialID string, req *credsvc.CredentialRequest) (*credsvc.Credential, error) {
	f.calls++
	return f.updateCredential(ctx, userID, credentialID, req)
}

func (f *fakeService) RevokeCredential(ctx context.Context, userID, credentialID string) (credsvc.RevokeResult, error) {
	f.calls++
	return f.revokeCredential(ctx, userID, credentialID)
}

func (f *fakeService) CreateVerificationSession(ctx context.Context, req *credsvc.CreateSessionRequest) (*credsvc.VerificationSession, error) {
	f.calls++
	return f.createSession(ctx, req)
}

func (f *fakeService) ReadSessionData(ctx context.Context, sessionID string) (*credsvc.SessionData, error) {
	f.calls++
	return f.readSessionData(ctx, sessionID)
}
