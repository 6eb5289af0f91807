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

const xBaseURL = "https://api.twitter.com"

type XPublisher struct {
	creds  credentials.Store
	apiURL string
	client *http.Client
}

func NewXPublisher(creds credentials.Store) *XPublisher {
	return &XPublisher{
		creds:  creds,
		apiURL: xBaseURL,
		client: newHTTPClient(),
	}
}

// Publish sends a single text tweet with the user's OAuth2 token.
func (p *XPublisher) Publish(ctx context.Context, post *models.ScheduledPost) Result {
	cred, err := p.creds.Get(ctx, post.UserEmail, "x", "")
	if err != nil {
		return Failure(err)
	}

	payload, err := json.Marshal(map[string]string{"text": post.Content})
	if err != nil {
		return Failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.apiURL+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return Failure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return Failure(fmt.Errorf("x request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		var apiErr struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		message := string(body)
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
			message = apiErr.Detail
		}
		return Failure(&UpstreamError{Platform: "x", StatusCode: resp.StatusCode, Message: message})
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Failure(fmt.Errorf("parsing x response: %w", err))
	}

	return Success(result.Data.ID)
}
