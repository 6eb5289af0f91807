package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/models"
)

type SocialConnectionRepository interface {
	Get(ctx context.Context, userEmail, platform, pageID string) (*models.SocialConnection, error)
	GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.SocialConnection, error)
	Upsert(ctx context.Context, sc *models.SocialConnection) error
	SetActiveFacebookPage(ctx context.Context, userEmail, pageID string) error
	SetActiveInstagramUser(ctx context.Context, userEmail, instagramUserID string) error
	ListByUser(ctx context.Context, userEmail string) ([]*models.SocialConnection, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialConnection, error)
	Remove(ctx context.Context, userEmail, platform, pageID string) error
}

type socialConnectionRepository struct {
	db *sql.DB
}

func NewSocialConnectionRepository(db *sql.DB) SocialConnectionRepository {
	return &socialConnectionRepository{db: db}
}

const connectionColumns = `id, user_email, platform, page_id, access_token_encrypted, refresh_token_encrypted, token_expires_at, active_facebook_page_id, active_instagram_user_id, realm_id, phone_number_id, created_at, updated_at`

func scanConnection(row interface{ Scan(...interface{}) error }) (*models.SocialConnection, error) {
	var sc models.SocialConnection
	err := row.Scan(&sc.ID, &sc.UserEmail, &sc.Platform, &sc.PageID, &sc.AccessToken,
		&sc.RefreshToken, &sc.TokenExpiresAt, &sc.ActiveFacebookPageID,
		&sc.ActiveInstagramUserID, &sc.RealmID, &sc.PhoneNumberID, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *socialConnectionRepository) Get(ctx context.Context, userEmail, platform, pageID string) (*models.SocialConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM social_connect WHERE user_email = $1 AND platform = $2 AND page_id = $3`
	sc, err := scanConnection(r.db.QueryRowContext(ctx, query, userEmail, platform, pageID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sc, nil
}

func (r *socialConnectionRepository) GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.SocialConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM social_connect WHERE platform = 'whatsapp' AND phone_number_id = $1`
	sc, err := scanConnection(r.db.QueryRowContext(ctx, query, phoneNumberID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sc, nil
}

// Upsert writes token material for a (user, platform, page) tuple. On
// conflict only the token columns and auxiliary identifiers present in sc
// are overwritten; active-entity pointers on the row survive untouched.
func (r *socialConnectionRepository) Upsert(ctx context.Context, sc *models.SocialConnection) error {
	query := `
		INSERT INTO social_connect (
			user_email,
			platform,
			page_id,
			access_token_encrypted,
			refresh_token_encrypted,
			token_expires_at,
			realm_id,
			phone_number_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_email, platform, page_id) DO UPDATE
		SET access_token_encrypted = EXCLUDED.access_token_encrypted,
			refresh_token_encrypted = COALESCE(NULLIF(EXCLUDED.refresh_token_encrypted, ''), social_connect.refresh_token_encrypted),
			token_expires_at = EXCLUDED.token_expires_at,
			realm_id = COALESCE(NULLIF(EXCLUDED.realm_id, ''), social_connect.realm_id),
			phone_number_id = COALESCE(NULLIF(EXCLUDED.phone_number_id, ''), social_connect.phone_number_id),
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query,
		sc.UserEmail, sc.Platform, sc.PageID, sc.AccessToken, sc.RefreshToken,
		sc.TokenExpiresAt, sc.RealmID, sc.PhoneNumberID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialConnectionRepository) SetActiveFacebookPage(ctx context.Context, userEmail, pageID string) error {
	query := `
		UPDATE social_connect
		SET active_facebook_page_id = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_email = $2 AND platform = 'facebook' AND page_id = ''
	`
	_, err := r.db.ExecContext(ctx, query, pageID, userEmail)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialConnectionRepository) SetActiveInstagramUser(ctx context.Context, userEmail, instagramUserID string) error {
	query := `
		UPDATE social_connect
		SET active_instagram_user_id = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_email = $2 AND platform = 'facebook' AND page_id = ''
	`
	_, err := r.db.ExecContext(ctx, query, instagramUserID, userEmail)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialConnectionRepository) ListByUser(ctx context.Context, userEmail string) ([]*models.SocialConnection, error) {
	query := `SELECT id, user_email, platform, page_id, token_expires_at, active_facebook_page_id, active_instagram_user_id FROM social_connect WHERE user_email = $1`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.SocialConnection
	for rows.Next() {
		var sc models.SocialConnection
		err := rows.Scan(&sc.ID, &sc.UserEmail, &sc.Platform, &sc.PageID,
			&sc.TokenExpiresAt, &sc.ActiveFacebookPageID, &sc.ActiveInstagramUserID)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &sc)
	}
	return connections, rows.Err()
}

func (r *socialConnectionRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialConnection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM social_connect
		WHERE refresh_token_encrypted <> '' AND token_expires_at <= $1
	`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.SocialConnection
	for rows.Next() {
		sc, err := scanConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, sc)
	}
	return connections, rows.Err()
}

func (r *socialConnectionRepository) Remove(ctx context.Context, userEmail, platform, pageID string) error {
	query := `DELETE FROM social_connect WHERE user_email = $1 AND platform = $2 AND page_id = $3`
	_, err := r.db.ExecContext(ctx, query, userEmail, platform, pageID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
