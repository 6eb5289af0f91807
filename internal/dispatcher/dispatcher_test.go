package dispatcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/publisher"
)

type fakePostRepo struct {
	mu       sync.Mutex
	due      []*models.ScheduledPost
	statuses map[int64]string
}

func newFakePostRepo(due ...*models.ScheduledPost) *fakePostRepo {
	return &fakePostRepo{due: due, statuses: make(map[int64]string)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	for _, p := range r.due {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePostRepo) ListByUser(ctx context.Context, userEmail string) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (r *fakePostRepo) GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	return r.due, nil
}

func (r *fakePostRepo) MarkStatus(ctx context.Context, id int64, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.statuses[id]; done {
		return false, nil
	}
	r.statuses[id] = status
	return true, nil
}

func (r *fakePostRepo) CheckByUser(ctx context.Context, postID int64, userEmail string) (bool, error) {
	return false, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

func (r *fakePostRepo) status(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[id]
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records []*models.PublishRecord
}

func (r *fakeRecordRepo) Create(ctx context.Context, pr *models.PublishRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, pr)
	return int64(len(r.records)), nil
}

func (r *fakeRecordRepo) ListByUser(ctx context.Context, userEmail string) ([]*models.PublishRecord, error) {
	return nil, nil
}

func (r *fakeRecordRepo) byPostID(id int64) *models.PublishRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pr := range r.records {
		if pr.PostID == id {
			return pr
		}
	}
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	calls  int
	result publisher.Result
}

func (s *stubPublisher) Publish(ctx context.Context, post *models.ScheduledPost) publisher.Result {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.result
}

func (s *stubPublisher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func duePost(id int64, platform string) *models.ScheduledPost {
	return &models.ScheduledPost{
		ID:          id,
		UserEmail:   "merchant@example.com",
		Platform:    platform,
		Content:     "content",
		ScheduledAt: time.Now().Add(-time.Minute),
		Status:      models.PostStatusScheduled,
	}
}

func TestRunFinalizesEveryDuePost(t *testing.T) {
	posts := newFakePostRepo(duePost(1, "x"), duePost(2, "x"), duePost(3, "x"))
	records := &fakeRecordRepo{}

	registry := publisher.NewRegistry()
	registry.Register("x", &stubPublisher{result: publisher.Success("tweet-1")})

	d := New(posts, records, registry)
	outcomes, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Status != models.PostStatusPosted {
			t.Errorf("post %d status = %q", o.ID, o.Status)
		}
		if posts.status(o.ID) != models.PostStatusPosted {
			t.Errorf("post %d not marked posted in store", o.ID)
		}
		if records.byPostID(o.ID) == nil {
			t.Errorf("post %d has no publish record", o.ID)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	posts := newFakePostRepo(duePost(1, "x"), duePost(2, "pinterest"), duePost(3, "x"))
	records := &fakeRecordRepo{}

	registry := publisher.NewRegistry()
	registry.Register("x", &stubPublisher{result: publisher.Success("tweet-1")})
	registry.Register("pinterest", &stubPublisher{result: publisher.Failure(errors.New("board not found"))})

	d := New(posts, records, registry)
	outcomes, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[int64]Outcome, len(outcomes))
	for _, o := range outcomes {
		byID[o.ID] = o
	}

	if byID[2].Status != models.PostStatusFailed {
		t.Errorf("post 2 status = %q, want failed", byID[2].Status)
	}
	if byID[2].Reason != "board not found" {
		t.Errorf("post 2 reason = %q", byID[2].Reason)
	}
	if byID[1].Status != models.PostStatusPosted || byID[3].Status != models.PostStatusPosted {
		t.Error("failure on post 2 affected other posts")
	}

	record := records.byPostID(2)
	if record == nil || record.ErrorMessage != "board not found" {
		t.Errorf("publish record for post 2 = %+v", record)
	}
}

func TestRunUnknownPlatformSkipsNetwork(t *testing.T) {
	stub := &stubPublisher{result: publisher.Success("never")}

	posts := newFakePostRepo(duePost(1, "myspace"))
	records := &fakeRecordRepo{}

	registry := publisher.NewRegistry()
	registry.Register("x", stub)

	d := New(posts, records, registry)
	outcomes, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcomes[0].Status != models.PostStatusFailed {
		t.Errorf("status = %q, want failed", outcomes[0].Status)
	}
	if !strings.Contains(outcomes[0].Reason, "Unknown platform") {
		t.Errorf("reason = %q", outcomes[0].Reason)
	}
	if stub.callCount() != 0 {
		t.Error("registered publisher was called for an unknown platform")
	}
	if posts.status(1) != models.PostStatusFailed {
		t.Error("post not marked failed in store")
	}
}

func TestRunKeepsWarningOnPostedOutcome(t *testing.T) {
	posts := newFakePostRepo(duePost(1, "youtube"))
	records := &fakeRecordRepo{}

	registry := publisher.NewRegistry()
	registry.Register("youtube", &stubPublisher{result: publisher.Result{
		PlatformPostID: "video-1",
		Warning:        "video uploaded but thumbnail failed: timeout",
	}})

	d := New(posts, records, registry)
	outcomes, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcomes[0].Status != models.PostStatusPosted {
		t.Errorf("status = %q, want posted despite warning", outcomes[0].Status)
	}
	if outcomes[0].Warning == "" {
		t.Error("warning was dropped")
	}
	record := records.byPostID(1)
	if record == nil || record.PlatformPostID != "video-1" {
		t.Errorf("publish record = %+v", record)
	}
}
