package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
)

// fakeCredentials serves canned token material so adapter tests never touch
// the database or the cipher.
type fakeCredentials struct {
	creds     map[string]*credentials.Credential
	instagram *credentials.InstagramCredential
	page      *credentials.Credential
}

func (f *fakeCredentials) Get(ctx context.Context, userEmail, platform, pageID string) (*credentials.Credential, error) {
	cred, ok := f.creds[platform]
	if !ok {
		return nil, fmt.Errorf("%s: %w", platform, credentials.ErrNotConnected)
	}
	return cred, nil
}

func (f *fakeCredentials) Put(ctx context.Context, cred *credentials.Credential) error {
	if f.creds == nil {
		f.creds = make(map[string]*credentials.Credential)
	}
	f.creds[cred.Platform] = cred
	return nil
}

func (f *fakeCredentials) ResolveInstagram(ctx context.Context, userEmail string) (*credentials.InstagramCredential, error) {
	if f.instagram == nil {
		return nil, fmt.Errorf("instagram: %w", credentials.ErrNotConnected)
	}
	return f.instagram, nil
}

func (f *fakeCredentials) ResolveFacebookPage(ctx context.Context, userEmail string) (*credentials.Credential, error) {
	if f.page == nil {
		return nil, fmt.Errorf("facebook: %w", credentials.ErrNotConnected)
	}
	return f.page, nil
}

func (f *fakeCredentials) ListExpiring(ctx context.Context, before time.Time) ([]*credentials.Credential, error) {
	return nil, nil
}
