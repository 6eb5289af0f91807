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
)

type InstagramPublisher struct {
	creds         credentials.Store
	publicBaseURL string
	graphURL      string
	client        *http.Client
}

func NewInstagramPublisher(creds credentials.Store, publicBaseURL string) *InstagramPublisher {
	return &InstagramPublisher{
		creds:         creds,
		publicBaseURL: publicBaseURL,
		graphURL:      graphBaseURL,
		client:        newHTTPClient(),
	}
}

// Publish runs Instagram's two-phase protocol: stage a media container for
// the image, then publish the container. The publish step is never
// attempted when container creation did not yield an id.
func (p *InstagramPublisher) Publish(ctx context.Context, post *models.ScheduledPost) Result {
	cred, err := p.creds.ResolveInstagram(ctx, post.UserEmail)
	if err != nil {
		return Failure(err)
	}

	containerID, err := p.createContainer(ctx, cred, post)
	if err != nil {
		return Failure(fmt.Errorf("creating media container: %w", err))
	}

	postID, err := p.publishContainer(ctx, cred, containerID)
	if err != nil {
		return Failure(fmt.Errorf("publishing container %s: %w", containerID, err))
	}

	return Success(postID)
}

func (p *InstagramPublisher) createContainer(ctx context.Context, cred *credentials.InstagramCredential, post *models.ScheduledPost) (string, error) {
	form := url.Values{}
	form.Set("image_url", AbsoluteMediaURL(p.publicBaseURL, post.ImageURL))
	form.Set("caption", post.Content)
	form.Set("access_token", cred.PageToken)

	endpoint := fmt.Sprintf("%s/%s/media", p.graphURL, cred.InstagramUserID)
	id, err := p.postForm(ctx, endpoint, form)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("container creation returned no id")
	}
	return id, nil
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, cred *credentials.InstagramCredential, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", cred.PageToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", p.graphURL, cred.InstagramUserID)
	id, err := p.postForm(ctx, endpoint, form)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *InstagramPublisher) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("instagram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeGraphError("instagram", resp)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing instagram response: %w", err)
	}
	return result.ID, nil
}
