package inbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/repository"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
)

type Service interface {
	Verify(mode, token, challenge string) (string, bool)
	HandleDelivery(ctx context.Context, payload *transfer.WhatsAppWebhookPayload) error
	ListConversations(ctx context.Context, userEmail string) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error)
}

type service struct {
	verifyToken   string
	connections   repository.SocialConnectionRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

func NewService(
	verifyToken string,
	connections repository.SocialConnectionRepository,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository) Service {
	return &service{
		verifyToken:   verifyToken,
		connections:   connections,
		conversations: conversations,
		messages:      messages,
	}
}

// Verify answers Meta's one-time subscription handshake. The challenge is
// echoed back only when mode and token match.
func (s *service) Verify(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token != "" && token == s.verifyToken {
		return challenge, true
	}
	return "", false
}

// HandleDelivery processes one webhook POST. Non-text messages are skipped
// silently; the tenant is resolved through the phone-number-id mapping, not
// a fixed identity.
func (s *service) HandleDelivery(ctx context.Context, payload *transfer.WhatsAppWebhookPayload) error {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			if err := s.handleValue(ctx, &change.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) handleValue(ctx context.Context, value *transfer.WhatsAppValue) error {
	if len(value.Messages) == 0 {
		return nil
	}

	conn, err := s.connections.GetByPhoneNumberID(ctx, value.Metadata.PhoneNumberID)
	if err != nil {
		return err
	}
	if conn == nil {
		return fmt.Errorf("no tenant mapped to phone number id %q", value.Metadata.PhoneNumberID)
	}

	contactNames := make(map[string]string, len(value.Contacts))
	for _, contact := range value.Contacts {
		contactNames[contact.WaID] = contact.Profile.Name
	}

	for _, msg := range value.Messages {
		if msg.Type != "text" {
			slog.Info("skipping non-text whatsapp message", "type", msg.Type, "from", msg.From)
			continue
		}

		conversationID, err := s.conversations.UpsertInbound(ctx, &models.Conversation{
			UserEmail:   conn.UserEmail,
			Platform:    "whatsapp",
			ExternalID:  msg.From,
			ContactName: contactNames[msg.From],
			LastMessage: msg.Text.Body,
		})
		if err != nil {
			return fmt.Errorf("upserting conversation for %s: %w", msg.From, err)
		}

		if _, err := s.messages.Create(ctx, &models.Message{
			ConversationID: conversationID,
			Direction:      models.MessageInbound,
			Body:           msg.Text.Body,
		}); err != nil {
			return fmt.Errorf("appending message for conversation %d: %w", conversationID, err)
		}
	}

	return nil
}

func (s *service) ListConversations(ctx context.Context, userEmail string) ([]*models.Conversation, error) {
	return s.conversations.ListByUser(ctx, userEmail)
}

func (s *service) ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}
