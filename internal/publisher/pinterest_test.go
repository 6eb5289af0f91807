package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
)

func newPinterestPublisherForTest(serverURL string) *PinterestPublisher {
	p := NewPinterestPublisher(&fakeCredentials{
		creds: map[string]*credentials.Credential{
			"pinterest": {Platform: "pinterest", AccessToken: "pin-token"},
		},
	}, "https://app.example.com")
	p.apiURL = serverURL
	return p
}

func TestPinterestPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/pins" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var body struct {
			BoardID     string `json:"board_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			MediaSource struct {
				SourceType string `json:"source_type"`
				URL        string `json:"url"`
			} `json:"media_source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.BoardID != "board-5" {
			t.Errorf("board_id = %q", body.BoardID)
		}
		if body.MediaSource.URL != "https://app.example.com/uploads/pin.png" {
			t.Errorf("media url = %q", body.MediaSource.URL)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"pin-900"}`)
	}))
	defer server.Close()

	p := newPinterestPublisherForTest(server.URL)
	result := p.Publish(context.Background(), &models.ScheduledPost{
		UserEmail: "merchant@example.com",
		Content:   "spring collection",
		Title:     "Spring",
		BoardID:   "board-5",
		ImageURL:  "/uploads/pin.png",
	})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.PlatformPostID != "pin-900" {
		t.Errorf("platform post id = %q", result.PlatformPostID)
	}
}

func TestPinterestPublishRequiresBoard(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	p := newPinterestPublisherForTest(server.URL)
	result := p.Publish(context.Background(), &models.ScheduledPost{
		ID:        12,
		UserEmail: "merchant@example.com",
		Content:   "no board",
	})

	if result.Err == nil {
		t.Fatal("expected error for missing board id")
	}
	if !strings.Contains(result.Err.Error(), "board id") {
		t.Errorf("error = %v", result.Err)
	}
	if called {
		t.Error("request was sent without a board id")
	}
}
