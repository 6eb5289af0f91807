package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/publisher"
	"github.com/cortexcart/cortexcart-api/internal/repository"
)

// Outcome is the per-post result of one dispatch cycle, returned to the
// invoking trigger.
type Outcome struct {
	ID       int64  `json:"id"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type Dispatcher struct {
	posts          repository.ScheduledPostRepository
	records        repository.PublishRecordRepository
	registry       *publisher.Registry
	publishTimeout time.Duration
	concurrency    int
}

func New(posts repository.ScheduledPostRepository, records repository.PublishRecordRepository, registry *publisher.Registry) *Dispatcher {
	return &Dispatcher{
		posts:          posts,
		records:        records,
		registry:       registry,
		publishTimeout: 5 * time.Minute,
		concurrency:    5,
	}
}

// Run executes one dispatch cycle: every scheduled post whose due time has
// passed is routed to its publisher and finalized as posted or failed.
// Posts are independent; a failure on one never aborts the rest. A failure
// is terminal for the cycle, there is no retry state.
func (d *Dispatcher) Run(ctx context.Context) ([]Outcome, error) {
	due, err := d.posts.GetDue(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("querying due posts: %w", err)
	}

	outcomes := make([]Outcome, len(due))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, d.concurrency)

	for i, post := range due {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, post *models.ScheduledPost) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer func() {
				// A panicking adapter must not take the sweep down.
				if r := recover(); r != nil {
					outcomes[i] = d.finalize(ctx, post, publisher.Failure(fmt.Errorf("publisher panic: %v", r)))
				}
			}()

			outcomes[i] = d.dispatch(ctx, post)
		}(i, post)
	}

	wg.Wait()
	return outcomes, nil
}

// DispatchOne publishes a single post outside the sweep, used by the queue
// worker for posts due immediately. The same compare-and-set finalization
// applies, so a sweep racing the worker settles on one winner.
func (d *Dispatcher) DispatchOne(ctx context.Context, post *models.ScheduledPost) Outcome {
	return d.dispatch(ctx, post)
}

func (d *Dispatcher) dispatch(ctx context.Context, post *models.ScheduledPost) Outcome {
	pub, ok := d.registry.Lookup(post.Platform)
	if !ok {
		// No adapter, no network call.
		return d.finalize(ctx, post, publisher.Failure(
			fmt.Errorf("%w: %s", publisher.ErrUnknownPlatform, post.Platform)))
	}

	publishCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, post)
	return d.finalize(ctx, post, result)
}

// finalize is the single writer of post status. The compare-and-set in
// MarkStatus keeps an overlapping cycle from double-finalizing a row.
func (d *Dispatcher) finalize(ctx context.Context, post *models.ScheduledPost, result publisher.Result) Outcome {
	outcome := Outcome{ID: post.ID, Platform: post.Platform, Warning: result.Warning}

	record := models.PublishRecord{
		UserEmail:      post.UserEmail,
		PostID:         post.ID,
		Platform:       post.Platform,
		PlatformPostID: result.PlatformPostID,
	}

	if result.Err != nil {
		outcome.Status = models.PostStatusFailed
		outcome.Reason = result.Err.Error()
		record.ErrorMessage = result.Err.Error()
		slog.Error("publish failed", "post_id", post.ID, "platform", post.Platform, "error", result.Err)
	} else {
		outcome.Status = models.PostStatusPosted
		if result.Warning != "" {
			slog.Warn("publish completed partially", "post_id", post.ID, "platform", post.Platform, "warning", result.Warning)
		}
	}

	updated, err := d.posts.MarkStatus(ctx, post.ID, outcome.Status)
	if err != nil {
		slog.Error("updating post status", "post_id", post.ID, "error", err)
	} else if !updated {
		slog.Warn("post already finalized by another cycle", "post_id", post.ID)
	}

	if _, err := d.records.Create(ctx, &record); err != nil {
		slog.Error("saving publish record", "post_id", post.ID, "error", err)
	}

	return outcome
}
