package publisher

import (
	"context"
	"fmt"
	"net/http"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type YouTubePublisher struct {
	cfg           config.Config
	creds         credentials.Store
	publicBaseURL string
	tokenEndpoint oauth2.Endpoint
	apiEndpoint   string
	client        *http.Client
}

func NewYouTubePublisher(cfg config.Config, creds credentials.Store) *YouTubePublisher {
	return &YouTubePublisher{
		cfg:           cfg,
		creds:         creds,
		publicBaseURL: cfg.PublicBaseURL,
		tokenEndpoint: google.Endpoint,
		client:        newHTTPClient(),
	}
}

// Publish exchanges the stored refresh token for a fresh access token,
// stream-uploads the video, then tries to bind the thumbnail. A thumbnail
// failure after the upload leaves the video live, so it is reported as a
// warning on a successful result rather than a failed post.
func (p *YouTubePublisher) Publish(ctx context.Context, post *models.ScheduledPost) Result {
	cred, err := p.creds.Get(ctx, post.UserEmail, "youtube", "")
	if err != nil {
		return Failure(err)
	}
	if cred.RefreshToken == "" {
		return Failure(fmt.Errorf("youtube refresh token missing: %w", credentials.ErrNotConnected))
	}

	if post.VideoURL == "" {
		return Failure(fmt.Errorf("youtube post %d has no video url", post.ID))
	}

	conf := &oauth2.Config{
		ClientID:     p.cfg.GoogleClientID,
		ClientSecret: p.cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
		Endpoint:     p.tokenEndpoint,
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return Failure(fmt.Errorf("refreshing youtube token: %w", err))
	}

	opts := []option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(token))}
	if p.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.apiEndpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return Failure(fmt.Errorf("creating youtube service: %w", err))
	}

	videoID, err := p.uploadVideo(ctx, service, post)
	if err != nil {
		return Failure(err)
	}

	if post.ImageURL != "" {
		if err := p.setThumbnail(ctx, service, videoID, post.ImageURL); err != nil {
			return Result{
				PlatformPostID: videoID,
				Warning:        fmt.Sprintf("video uploaded but thumbnail failed: %v", err),
			}
		}
	}

	return Success(videoID)
}

func (p *YouTubePublisher) uploadVideo(ctx context.Context, service *youtube.Service, post *models.ScheduledPost) (string, error) {
	videoURL := AbsoluteMediaURL(p.publicBaseURL, post.VideoURL)

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching video %s: %w", videoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching video %s: status %d", videoURL, resp.StatusCode)
	}

	privacy := post.PrivacyStatus
	if privacy == "" {
		privacy = "public"
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       post.Title,
			Description: post.Content,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: privacy,
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(resp.Body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("uploading video: %w", err)
	}

	return response.Id, nil
}

func (p *YouTubePublisher) setThumbnail(ctx context.Context, service *youtube.Service, videoID, imageRef string) error {
	imageURL := AbsoluteMediaURL(p.publicBaseURL, imageRef)

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching thumbnail %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching thumbnail %s: status %d", imageURL, resp.StatusCode)
	}

	_, err = service.Thumbnails.Set(videoID).Media(resp.Body).Context(ctx).Do()
	return err
}
