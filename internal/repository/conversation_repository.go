package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/models"
)

type ConversationRepository interface {
	UpsertInbound(ctx context.Context, c *models.Conversation) (int64, error)
	ListByUser(ctx context.Context, userEmail string) ([]*models.Conversation, error)
}

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// UpsertInbound creates the conversation with unread_count = 1 or, if the
// (platform, external_id) pair already exists for the tenant, bumps the
// unread counter and overwrites the preview. The counter is never
// decremented here; resetting it is a UI concern.
func (r *conversationRepository) UpsertInbound(ctx context.Context, c *models.Conversation) (int64, error) {
	query := `
		INSERT INTO crm_conversations (user_email, platform, external_id, contact_name, last_message, unread_count)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (user_email, platform, external_id) DO UPDATE
		SET last_message = EXCLUDED.last_message,
			contact_name = COALESCE(NULLIF(EXCLUDED.contact_name, ''), crm_conversations.contact_name),
			unread_count = crm_conversations.unread_count + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, c.UserEmail, c.Platform, c.ExternalID, c.ContactName, c.LastMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userEmail string) ([]*models.Conversation, error) {
	query := `
		SELECT id, user_email, platform, external_id, contact_name, last_message, unread_count, created_at, updated_at
		FROM crm_conversations
		WHERE user_email = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(&c.ID, &c.UserEmail, &c.Platform, &c.ExternalID, &c.ContactName,
			&c.LastMessage, &c.UnreadCount, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}
