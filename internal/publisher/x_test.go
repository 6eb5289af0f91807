package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
)

func newXPublisherForTest(serverURL string) *XPublisher {
	p := NewXPublisher(&fakeCredentials{
		creds: map[string]*credentials.Credential{
			"x": {Platform: "x", AccessToken: "x-token"},
		},
	})
	p.apiURL = serverURL
	return p
}

func TestXPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer x-token" {
			t.Errorf("authorization = %q", got)
		}

		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Text != "hello world" {
			t.Errorf("text = %q", body.Text)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"1800000000000000000","text":"hello world"}}`)
	}))
	defer server.Close()

	p := newXPublisherForTest(server.URL)
	result := p.Publish(context.Background(), &models.ScheduledPost{
		UserEmail: "merchant@example.com",
		Content:   "hello world",
	})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.PlatformPostID != "1800000000000000000" {
		t.Errorf("platform post id = %q", result.PlatformPostID)
	}
}

func TestXPublishUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"detail":"You are not permitted to perform this action.","title":"Forbidden"}`)
	}))
	defer server.Close()

	p := newXPublisherForTest(server.URL)
	result := p.Publish(context.Background(), &models.ScheduledPost{
		UserEmail: "merchant@example.com",
		Content:   "hello world",
	})

	var upstream *UpstreamError
	if !errors.As(result.Err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", result.Err)
	}
	if upstream.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", upstream.StatusCode)
	}
	if !strings.Contains(upstream.Message, "not permitted") {
		t.Errorf("platform message not preserved: %q", upstream.Message)
	}
}
