package credentials

import (
	"context"
	"fmt"
)

// InstagramCredential is the effective credential for publishing to an
// Instagram business account: the account itself plus the access token of
// the Facebook Page it is linked to. Instagram accounts have no usable
// token of their own.
type InstagramCredential struct {
	InstagramUserID string
	PageID          string
	PageToken       string
}

// ResolveInstagram walks the credential chain for the user's active
// Instagram account: facebook connection → active instagram user →
// linked page → page-scoped token.
func (s *store) ResolveInstagram(ctx context.Context, userEmail string) (*InstagramCredential, error) {
	fb, err := s.Get(ctx, userEmail, "facebook", "")
	if err != nil {
		return nil, err
	}
	if fb.ActiveInstagramUserID == "" {
		return nil, fmt.Errorf("instagram: no active account selected: %w", ErrNotConnected)
	}

	account, err := s.ig.GetByInstagramID(ctx, userEmail, fb.ActiveInstagramUserID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("instagram account %s: %w", fb.ActiveInstagramUserID, ErrNotConnected)
	}

	page, err := s.Get(ctx, userEmail, "facebook-page", account.PageID)
	if err != nil {
		return nil, err
	}

	return &InstagramCredential{
		InstagramUserID: account.InstagramID,
		PageID:          account.PageID,
		PageToken:       page.AccessToken,
	}, nil
}

// ResolveFacebookPage returns the page-scoped credential for the user's
// active Facebook Page.
func (s *store) ResolveFacebookPage(ctx context.Context, userEmail string) (*Credential, error) {
	fb, err := s.Get(ctx, userEmail, "facebook", "")
	if err != nil {
		return nil, err
	}
	if fb.ActiveFacebookPageID == "" {
		return nil, fmt.Errorf("facebook: no active page selected: %w", ErrNotConnected)
	}

	return s.Get(ctx, userEmail, "facebook-page", fb.ActiveFacebookPageID)
}
