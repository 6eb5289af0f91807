package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
)

const graphBaseURL = "https://graph.facebook.com/v19.0"

type FacebookPublisher struct {
	creds         credentials.Store
	publicBaseURL string
	graphURL      string
	client        *http.Client
}

func NewFacebookPublisher(creds credentials.Store, publicBaseURL string) *FacebookPublisher {
	return &FacebookPublisher{
		creds:         creds,
		publicBaseURL: publicBaseURL,
		graphURL:      graphBaseURL,
		client:        newHTTPClient(),
	}
}

// Publish posts to the user's active Facebook Page with its page-scoped
// token. A photo post and a text post go to different endpoints.
func (p *FacebookPublisher) Publish(ctx context.Context, post *models.ScheduledPost) Result {
	page, err := p.creds.ResolveFacebookPage(ctx, post.UserEmail)
	if err != nil {
		return Failure(err)
	}

	form := url.Values{}
	form.Set("access_token", page.AccessToken)

	var endpoint string
	if post.ImageURL != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", p.graphURL, page.PageID)
		form.Set("url", AbsoluteMediaURL(p.publicBaseURL, post.ImageURL))
		form.Set("caption", post.Content)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", p.graphURL, page.PageID)
		form.Set("message", post.Content)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Failure(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return Failure(fmt.Errorf("facebook request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failure(decodeGraphError("facebook", resp))
	}

	var result transfer.GraphID
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Failure(fmt.Errorf("parsing facebook response: %w", err))
	}

	// Photo responses carry post_id alongside the photo id.
	if result.PostID != "" {
		return Success(result.PostID)
	}
	return Success(result.ID)
}
