package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/publisher"
	"github.com/cortexcart/cortexcart-api/internal/repository"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, userEmail string, pc *transfer.PostCreation) (int64, time.Duration, error)
	List(ctx context.Context, userEmail string) ([]*models.ScheduledPost, error)
	Info(ctx context.Context, postID int64, userEmail string) (*models.ScheduledPost, error)
	Remove(ctx context.Context, userEmail string, postID int64) error
	History(ctx context.Context, userEmail string) ([]*models.PublishRecord, error)
}

type postService struct {
	posts    repository.ScheduledPostRepository
	records  repository.PublishRecordRepository
	registry *publisher.Registry
}

func NewPostService(
	posts repository.ScheduledPostRepository,
	records repository.PublishRecordRepository,
	registry *publisher.Registry) PostService {
	return &postService{
		posts:    posts,
		records:  records,
		registry: registry,
	}
}

// Create validates and stores a scheduled post. The returned delay is zero
// for posts already due, signalling the handler to enqueue an immediate
// publish task instead of waiting for the next sweep.
func (s *postService) Create(ctx context.Context, userEmail string, pc *transfer.PostCreation) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return 0, 0, err
	}
	if !s.registry.Has(pc.Platform) {
		err := fmt.Errorf("platform %q is not supported", pc.Platform)
		slog.Info(err.Error())
		return 0, 0, err
	}

	scheduledAt, err := parseScheduledAt(pc.ScheduledAt)
	if err != nil {
		slog.Error(err.Error())
		return 0, 0, err
	}

	post := models.ScheduledPost{
		UserEmail:     userEmail,
		Platform:      pc.Platform,
		Content:       pc.Content,
		ImageURL:      pc.ImageURL,
		VideoURL:      pc.VideoURL,
		Title:         pc.Title,
		BoardID:       pc.BoardID,
		PrivacyStatus: pc.PrivacyStatus,
		ScheduledAt:   scheduledAt,
	}

	postID, err := s.posts.Create(ctx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	delay := time.Until(scheduledAt)
	if delay < 0 {
		delay = 0
	}

	return postID, delay, nil
}

func parseScheduledAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid scheduled time format: %q", value)
}

func (s *postService) List(ctx context.Context, userEmail string) ([]*models.ScheduledPost, error) {
	posts, err := s.posts.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) Info(ctx context.Context, postID int64, userEmail string) (*models.ScheduledPost, error) {
	isValid, err := s.posts.CheckByUser(ctx, postID, userEmail)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}
	return post, nil
}

func (s *postService) Remove(ctx context.Context, userEmail string, postID int64) error {
	isValid, err := s.posts.CheckByUser(ctx, postID, userEmail)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.posts.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post")
	}
	return nil
}

func (s *postService) History(ctx context.Context, userEmail string) ([]*models.PublishRecord, error) {
	records, err := s.records.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("error listing publish history")
	}
	return records, nil
}
