package queue

import (
	"github.com/cortexcart/cortexcart-api/internal/dispatcher"
	"github.com/cortexcart/cortexcart-api/internal/repository"
)

type Queue struct {
	posts repository.ScheduledPostRepository
	d     *dispatcher.Dispatcher
}

func NewQueue(posts repository.ScheduledPostRepository, d *dispatcher.Dispatcher) *Queue {
	return &Queue{
		posts: posts,
		d:     d,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
