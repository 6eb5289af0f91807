package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/pkg/crypto"
)

type memConnectionRepo struct {
	rows map[string]*models.SocialConnection
}

func newMemConnectionRepo() *memConnectionRepo {
	return &memConnectionRepo{rows: make(map[string]*models.SocialConnection)}
}

func connKey(userEmail, platform, pageID string) string {
	return userEmail + "|" + platform + "|" + pageID
}

func (r *memConnectionRepo) Get(ctx context.Context, userEmail, platform, pageID string) (*models.SocialConnection, error) {
	return r.rows[connKey(userEmail, platform, pageID)], nil
}

func (r *memConnectionRepo) GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.SocialConnection, error) {
	for _, row := range r.rows {
		if row.Platform == "whatsapp" && row.PhoneNumberID == phoneNumberID {
			return row, nil
		}
	}
	return nil, nil
}

func (r *memConnectionRepo) Upsert(ctx context.Context, sc *models.SocialConnection) error {
	key := connKey(sc.UserEmail, sc.Platform, sc.PageID)
	if existing, ok := r.rows[key]; ok {
		existing.AccessToken = sc.AccessToken
		existing.RefreshToken = sc.RefreshToken
		existing.TokenExpiresAt = sc.TokenExpiresAt
		return nil
	}
	clone := *sc
	r.rows[key] = &clone
	return nil
}

func (r *memConnectionRepo) SetActiveFacebookPage(ctx context.Context, userEmail, pageID string) error {
	row := r.rows[connKey(userEmail, "facebook", "")]
	if row == nil {
		return errors.New("no facebook connection")
	}
	row.ActiveFacebookPageID = pageID
	return nil
}

func (r *memConnectionRepo) SetActiveInstagramUser(ctx context.Context, userEmail, instagramUserID string) error {
	row := r.rows[connKey(userEmail, "facebook", "")]
	if row == nil {
		return errors.New("no facebook connection")
	}
	row.ActiveInstagramUserID = instagramUserID
	return nil
}

func (r *memConnectionRepo) ListByUser(ctx context.Context, userEmail string) ([]*models.SocialConnection, error) {
	var out []*models.SocialConnection
	for _, row := range r.rows {
		if row.UserEmail == userEmail {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialConnection, error) {
	var out []*models.SocialConnection
	for _, row := range r.rows {
		if !row.TokenExpiresAt.IsZero() && row.TokenExpiresAt.Before(before) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memConnectionRepo) Remove(ctx context.Context, userEmail, platform, pageID string) error {
	delete(r.rows, connKey(userEmail, platform, pageID))
	return nil
}

type memInstagramRepo struct {
	accounts []*models.InstagramAccount
}

func (r *memInstagramRepo) GetByInstagramID(ctx context.Context, userEmail, instagramID string) (*models.InstagramAccount, error) {
	for _, a := range r.accounts {
		if a.UserEmail == userEmail && a.InstagramID == instagramID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memInstagramRepo) ListByUser(ctx context.Context, userEmail string) ([]*models.InstagramAccount, error) {
	return r.accounts, nil
}

func (r *memInstagramRepo) Upsert(ctx context.Context, ia *models.InstagramAccount) error {
	r.accounts = append(r.accounts, ia)
	return nil
}

func newTestStore(t *testing.T) (Store, *memConnectionRepo, *memInstagramRepo) {
	t.Helper()
	box, err := crypto.NewBox([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("creating box: %v", err)
	}
	sc := newMemConnectionRepo()
	ig := &memInstagramRepo{}
	return NewStore(sc, ig, box), sc, ig
}

func TestStoreRoundTripEncrypts(t *testing.T) {
	ctx := context.Background()
	store, repo, _ := newTestStore(t)

	err := store.Put(ctx, &Credential{
		UserEmail:    "merchant@example.com",
		Platform:     "pinterest",
		AccessToken:  "plain-access",
		RefreshToken: "plain-refresh",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	row := repo.rows[connKey("merchant@example.com", "pinterest", "")]
	if row == nil {
		t.Fatal("no row stored")
	}
	if row.AccessToken == "plain-access" || row.RefreshToken == "plain-refresh" {
		t.Fatal("tokens stored in plaintext")
	}

	cred, err := store.Get(ctx, "merchant@example.com", "pinterest", "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cred.AccessToken != "plain-access" || cred.RefreshToken != "plain-refresh" {
		t.Errorf("round trip mismatch: %+v", cred)
	}
}

func TestStoreGetNotConnected(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "merchant@example.com", "x", "")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestResolveInstagramChain(t *testing.T) {
	ctx := context.Background()
	store, repo, ig := newTestStore(t)

	if err := store.Put(ctx, &Credential{
		UserEmail:   "merchant@example.com",
		Platform:    "facebook",
		AccessToken: "user-token",
	}); err != nil {
		t.Fatalf("put facebook: %v", err)
	}
	if err := store.Put(ctx, &Credential{
		UserEmail:   "merchant@example.com",
		Platform:    "facebook-page",
		PageID:      "page-7",
		AccessToken: "page-token",
	}); err != nil {
		t.Fatalf("put page: %v", err)
	}

	ig.accounts = append(ig.accounts, &models.InstagramAccount{
		UserEmail:   "merchant@example.com",
		PageID:      "page-7",
		InstagramID: "ig-42",
	})
	if err := repo.SetActiveInstagramUser(ctx, "merchant@example.com", "ig-42"); err != nil {
		t.Fatalf("select instagram account: %v", err)
	}

	cred, err := store.ResolveInstagram(ctx, "merchant@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cred.InstagramUserID != "ig-42" || cred.PageID != "page-7" || cred.PageToken != "page-token" {
		t.Errorf("resolved credential = %+v", cred)
	}
}

func TestResolveInstagramRequiresSelection(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	if err := store.Put(ctx, &Credential{
		UserEmail:   "merchant@example.com",
		Platform:    "facebook",
		AccessToken: "user-token",
	}); err != nil {
		t.Fatalf("put facebook: %v", err)
	}

	_, err := store.ResolveInstagram(ctx, "merchant@example.com")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestResolveFacebookPage(t *testing.T) {
	ctx := context.Background()
	store, repo, _ := newTestStore(t)

	if err := store.Put(ctx, &Credential{
		UserEmail:   "merchant@example.com",
		Platform:    "facebook",
		AccessToken: "user-token",
	}); err != nil {
		t.Fatalf("put facebook: %v", err)
	}
	if err := store.Put(ctx, &Credential{
		UserEmail:   "merchant@example.com",
		Platform:    "facebook-page",
		PageID:      "page-7",
		AccessToken: "page-token",
	}); err != nil {
		t.Fatalf("put page: %v", err)
	}
	if err := repo.SetActiveFacebookPage(ctx, "merchant@example.com", "page-7"); err != nil {
		t.Fatalf("select page: %v", err)
	}

	cred, err := store.ResolveFacebookPage(ctx, "merchant@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cred.PageID != "page-7" || cred.AccessToken != "page-token" {
		t.Errorf("resolved credential = %+v", cred)
	}
}

func TestListExpiringDecrypts(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	if err := store.Put(ctx, &Credential{
		UserEmail:      "merchant@example.com",
		Platform:       "x",
		AccessToken:    "short-lived",
		RefreshToken:   "refresh-me",
		TokenExpiresAt: time.Now().Add(10 * time.Minute),
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	creds, err := store.ListExpiring(ctx, time.Now().Add(30*time.Minute))
	if err != nil {
		t.Fatalf("list expiring: %v", err)
	}
	if len(creds) != 1 {
		t.Fatalf("got %d credentials, want 1", len(creds))
	}
	if creds[0].RefreshToken != "refresh-me" {
		t.Errorf("refresh token = %q", creds[0].RefreshToken)
	}
}
