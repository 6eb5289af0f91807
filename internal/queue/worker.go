package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/hibiken/asynq"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	post, err := q.posts.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Info("queued post no longer exists", "post_id", payload.PostID)
		return nil
	}
	if post.Status != models.PostStatusScheduled {
		slog.Info("queued post already finalized", "post_id", post.ID, "status", post.Status)
		return nil
	}

	outcome := q.d.DispatchOne(ctx, post)
	slog.Info("queued publish finished", "post_id", outcome.ID, "platform", outcome.Platform, "status", outcome.Status)
	return nil
}
