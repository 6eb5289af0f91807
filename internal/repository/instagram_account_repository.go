package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/models"
)

type InstagramAccountRepository interface {
	GetByInstagramID(ctx context.Context, userEmail, instagramID string) (*models.InstagramAccount, error)
	ListByUser(ctx context.Context, userEmail string) ([]*models.InstagramAccount, error)
	Upsert(ctx context.Context, ia *models.InstagramAccount) error
}

type instagramAccountRepository struct {
	db *sql.DB
}

func NewInstagramAccountRepository(db *sql.DB) InstagramAccountRepository {
	return &instagramAccountRepository{db: db}
}

func (r *instagramAccountRepository) GetByInstagramID(ctx context.Context, userEmail, instagramID string) (*models.InstagramAccount, error) {
	query := `SELECT id, user_email, page_id, instagram_id, username, created_at FROM instagram_accounts WHERE user_email = $1 AND instagram_id = $2`
	row := r.db.QueryRowContext(ctx, query, userEmail, instagramID)

	var ia models.InstagramAccount
	err := row.Scan(&ia.ID, &ia.UserEmail, &ia.PageID, &ia.InstagramID, &ia.Username, &ia.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &ia, nil
}

func (r *instagramAccountRepository) ListByUser(ctx context.Context, userEmail string) ([]*models.InstagramAccount, error) {
	query := `SELECT id, user_email, page_id, instagram_id, username, created_at FROM instagram_accounts WHERE user_email = $1`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.InstagramAccount
	for rows.Next() {
		var ia models.InstagramAccount
		err := rows.Scan(&ia.ID, &ia.UserEmail, &ia.PageID, &ia.InstagramID, &ia.Username, &ia.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &ia)
	}
	return accounts, rows.Err()
}

func (r *instagramAccountRepository) Upsert(ctx context.Context, ia *models.InstagramAccount) error {
	query := `
		INSERT INTO instagram_accounts (user_email, page_id, instagram_id, username)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_email, instagram_id) DO UPDATE
		SET page_id = EXCLUDED.page_id, username = EXCLUDED.username
	`
	_, err := r.db.ExecContext(ctx, query, ia.UserEmail, ia.PageID, ia.InstagramID, ia.Username)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
