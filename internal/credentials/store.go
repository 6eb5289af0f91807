package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/repository"
	"github.com/cortexcart/cortexcart-api/pkg/crypto"
)

// ErrNotConnected is returned when no credential row exists for the
// requested (user, platform, page) tuple. Callers must treat it as "the
// user never connected this platform", not as an internal fault.
var ErrNotConnected = errors.New("platform not connected")

// Credential is decrypted token material ready for use against a platform
// API. It never reaches storage in this form.
type Credential struct {
	UserEmail             string
	Platform              string
	PageID                string
	AccessToken           string
	RefreshToken          string
	TokenExpiresAt        time.Time
	ActiveFacebookPageID  string
	ActiveInstagramUserID string
	RealmID               string
	PhoneNumberID         string
}

type Store interface {
	Get(ctx context.Context, userEmail, platform, pageID string) (*Credential, error)
	Put(ctx context.Context, cred *Credential) error
	ResolveInstagram(ctx context.Context, userEmail string) (*InstagramCredential, error)
	ResolveFacebookPage(ctx context.Context, userEmail string) (*Credential, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*Credential, error)
}

type store struct {
	sc  repository.SocialConnectionRepository
	ig  repository.InstagramAccountRepository
	box *crypto.Box
}

func NewStore(sc repository.SocialConnectionRepository, ig repository.InstagramAccountRepository, box *crypto.Box) Store {
	return &store{sc: sc, ig: ig, box: box}
}

func (s *store) Get(ctx context.Context, userEmail, platform, pageID string) (*Credential, error) {
	row, err := s.sc.Get(ctx, userEmail, platform, pageID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%s: %w", platform, ErrNotConnected)
	}

	return s.decrypt(row)
}

func (s *store) Put(ctx context.Context, cred *Credential) error {
	encryptedAccess, err := s.box.Seal(cred.AccessToken)
	if err != nil {
		return err
	}

	var encryptedRefresh string
	if cred.RefreshToken != "" {
		encryptedRefresh, err = s.box.Seal(cred.RefreshToken)
		if err != nil {
			return err
		}
	}

	return s.sc.Upsert(ctx, &models.SocialConnection{
		UserEmail:      cred.UserEmail,
		Platform:       cred.Platform,
		PageID:         cred.PageID,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: cred.TokenExpiresAt,
		RealmID:        cred.RealmID,
		PhoneNumberID:  cred.PhoneNumberID,
	})
}

// ListExpiring returns decrypted credentials whose tokens expire before the
// given time, for the refresh job. Rows that fail decryption are skipped so
// one corrupt row cannot stall every refresh.
func (s *store) ListExpiring(ctx context.Context, before time.Time) ([]*Credential, error) {
	rows, err := s.sc.ListExpiring(ctx, before)
	if err != nil {
		return nil, err
	}

	creds := make([]*Credential, 0, len(rows))
	for _, row := range rows {
		cred, err := s.decrypt(row)
		if err != nil {
			continue
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

func (s *store) decrypt(row *models.SocialConnection) (*Credential, error) {
	access, err := s.box.Open(row.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypting access token: %w", err)
	}

	var refresh string
	if row.RefreshToken != "" {
		refresh, err = s.box.Open(row.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("decrypting refresh token: %w", err)
		}
	}

	return &Credential{
		UserEmail:             row.UserEmail,
		Platform:              row.Platform,
		PageID:                row.PageID,
		AccessToken:           access,
		RefreshToken:          refresh,
		TokenExpiresAt:        row.TokenExpiresAt,
		ActiveFacebookPageID:  row.ActiveFacebookPageID,
		ActiveInstagramUserID: row.ActiveInstagramUserID,
		RealmID:               row.RealmID,
		PhoneNumberID:         row.PhoneNumberID,
	}, nil
}
