package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) (int64, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]*models.Message, error)
}

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) (int64, error) {
	query := `
		INSERT INTO crm_messages (conversation_id, direction, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, m.ConversationID, m.Direction, m.Body).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	query := `SELECT id, conversation_id, direction, body, created_at FROM crm_messages WHERE conversation_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.ConversationID, &m.Direction, &m.Body, &m.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
