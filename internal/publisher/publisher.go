package publisher

import (
	"context"

	"github.com/cortexcart/cortexcart-api/internal/models"
)

// Publisher executes one platform's publish protocol for a single post.
// Implementations resolve their own credentials and never write post state;
// finalizing the row belongs to the caller.
type Publisher interface {
	Publish(ctx context.Context, post *models.ScheduledPost) Result
}

// Result is the outcome of one publish attempt. Warning carries a partial
// step failure that happened after an irreversible side effect (the post is
// live, a trailing step was not) and must not flip the post to failed.
type Result struct {
	PlatformPostID string
	Warning        string
	Err            error
}

func Success(platformPostID string) Result {
	return Result{PlatformPostID: platformPostID}
}

func Failure(err error) Result {
	return Result{Err: err}
}

// Registry maps platform tags to their publishers. Adding a platform means
// registering an implementation, not editing a switch.
type Registry struct {
	publishers map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[string]Publisher)}
}

func (r *Registry) Register(platform string, p Publisher) {
	r.publishers[platform] = p
}

func (r *Registry) Lookup(platform string) (Publisher, bool) {
	p, ok := r.publishers[platform]
	return p, ok
}

func (r *Registry) Has(platform string) bool {
	_, ok := r.publishers[platform]
	return ok
}
