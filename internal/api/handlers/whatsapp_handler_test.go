package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type stubInboxService struct {
	verifyToken string
	handleErr   error
	deliveries  int
}

func (s *stubInboxService) Verify(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token == s.verifyToken {
		return challenge, true
	}
	return "", false
}

func (s *stubInboxService) HandleDelivery(ctx context.Context, payload *transfer.WhatsAppWebhookPayload) error {
	s.deliveries++
	return s.handleErr
}

func (s *stubInboxService) ListConversations(ctx context.Context, userEmail string) ([]*models.Conversation, error) {
	return nil, nil
}

func (s *stubInboxService) ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	return nil, nil
}

func newWhatsAppApp(svc *stubInboxService, ackErrors bool) *fiber.App {
	cfg := config.Config{WhatsAppAckErrors: ackErrors}
	h := NewWhatsAppHandler(cfg, svc)

	app := fiber.New()
	app.Get("/webhooks/whatsapp", h.Verify)
	app.Post("/webhooks/whatsapp", h.Receive)
	return app
}

func TestWhatsAppVerifyEchoesChallenge(t *testing.T) {
	app := newWhatsAppApp(&stubInboxService{verifyToken: "verify-secret"}, true)

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=12345", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "12345" {
		t.Errorf("body = %q, want raw challenge", body)
	}
}

func TestWhatsAppVerifyRejectsBadToken(t *testing.T) {
	app := newWhatsAppApp(&stubInboxService{verifyToken: "verify-secret"}, true)

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func deliveryBody() *strings.Reader {
	return strings.NewReader(`{"object":"whatsapp_business_account","entry":[{"changes":[{"field":"messages","value":{"metadata":{"phone_number_id":"phone-1"},"messages":[{"from":"15550001111","type":"text","text":{"body":"hi"}}]}}]}]}`)
}

func TestWhatsAppReceiveAcksErrorsByDefault(t *testing.T) {
	svc := &stubInboxService{verifyToken: "verify-secret", handleErr: errors.New("db down")}
	app := newWhatsAppApp(svc, true)

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", deliveryBody())
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 even on processing failure", resp.StatusCode)
	}
	if svc.deliveries != 1 {
		t.Errorf("deliveries = %d", svc.deliveries)
	}
}

func TestWhatsAppReceiveAcksMalformedBody(t *testing.T) {
	svc := &stubInboxService{verifyToken: "verify-secret"}
	app := newWhatsAppApp(svc, true)

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", strings.NewReader(`{"entry":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 so the sender does not redeliver", resp.StatusCode)
	}
	if svc.deliveries != 0 {
		t.Errorf("deliveries = %d, want 0 for unparseable body", svc.deliveries)
	}
}

func TestWhatsAppReceiveRejectsMalformedBodyWhenConfigured(t *testing.T) {
	svc := &stubInboxService{verifyToken: "verify-secret"}
	app := newWhatsAppApp(svc, false)

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", strings.NewReader(`{"entry":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWhatsAppReceiveSurfacesErrorsWhenConfigured(t *testing.T) {
	svc := &stubInboxService{verifyToken: "verify-secret", handleErr: errors.New("db down")}
	app := newWhatsAppApp(svc, false)

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", deliveryBody())
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
