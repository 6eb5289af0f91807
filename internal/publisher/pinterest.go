package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
)

const pinterestBaseURL = "https://api.pinterest.com"

type PinterestPublisher struct {
	creds         credentials.Store
	publicBaseURL string
	apiURL        string
	client        *http.Client
}

func NewPinterestPublisher(creds credentials.Store, publicBaseURL string) *PinterestPublisher {
	return &PinterestPublisher{
		creds:         creds,
		publicBaseURL: publicBaseURL,
		apiURL:        pinterestBaseURL,
		client:        newHTTPClient(),
	}
}

func (p *PinterestPublisher) Publish(ctx context.Context, post *models.ScheduledPost) Result {
	cred, err := p.creds.Get(ctx, post.UserEmail, "pinterest", "")
	if err != nil {
		return Failure(err)
	}

	if post.BoardID == "" {
		return Failure(fmt.Errorf("pinterest post %d has no board id", post.ID))
	}

	payload, err := json.Marshal(map[string]interface{}{
		"board_id":    post.BoardID,
		"title":       post.Title,
		"description": post.Content,
		"media_source": map[string]string{
			"source_type": "image_url",
			"url":         AbsoluteMediaURL(p.publicBaseURL, post.ImageURL),
		},
	})
	if err != nil {
		return Failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.apiURL+"/v5/pins", bytes.NewReader(payload))
	if err != nil {
		return Failure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return Failure(fmt.Errorf("pinterest request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		message := string(body)
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		return Failure(&UpstreamError{Platform: "pinterest", StatusCode: resp.StatusCode, Message: message})
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Failure(fmt.Errorf("parsing pinterest response: %w", err))
	}

	return Success(result.ID)
}
