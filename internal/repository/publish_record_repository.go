package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/models"
)

type PublishRecordRepository interface {
	Create(ctx context.Context, pr *models.PublishRecord) (int64, error)
	ListByUser(ctx context.Context, userEmail string) ([]*models.PublishRecord, error)
}

type publishRecordRepository struct {
	db *sql.DB
}

func NewPublishRecordRepository(db *sql.DB) PublishRecordRepository {
	return &publishRecordRepository{db: db}
}

func (r *publishRecordRepository) Create(ctx context.Context, pr *models.PublishRecord) (int64, error) {
	query := `
		INSERT INTO publish_records (user_email, post_id, platform, platform_post_id, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, pr.UserEmail, pr.PostID, pr.Platform, pr.PlatformPostID, pr.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publishRecordRepository) ListByUser(ctx context.Context, userEmail string) ([]*models.PublishRecord, error) {
	query := `SELECT id, user_email, post_id, platform, platform_post_id, error_message, created_at FROM publish_records WHERE user_email = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PublishRecord
	for rows.Next() {
		var pr models.PublishRecord
		err := rows.Scan(&pr.ID, &pr.UserEmail, &pr.PostID, &pr.Platform, &pr.PlatformPostID, &pr.ErrorMessage, &pr.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &pr)
	}
	return records, rows.Err()
}
