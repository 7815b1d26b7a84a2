package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/policy"
	"reelpost/internal/posting"
	"reelpost/internal/services"
	"reelpost/internal/testsupport"
)

type fakePoster struct {
	results map[int64]*posting.Result
	errs    map[int64]error
	calls   []int64
}

func (f *fakePoster) Post(_ context.Context, artifactID int64) (*posting.Result, error) {
	f.calls = append(f.calls, artifactID)
	if err, ok := f.errs[artifactID]; ok {
		return &posting.Result{ArtifactID: artifactID, Outcome: posting.OutcomeErrored}, err
	}
	if result, ok := f.results[artifactID]; ok {
		return result, nil
	}
	return &posting.Result{ArtifactID: artifactID, Outcome: posting.OutcomePosted}, nil
}

type batchNotifier struct {
	started   []int
	completed []string
}

func (b *batchNotifier) NotifyBatchStarted(_ context.Context, count int) error {
	b.started = append(b.started, count)
	return nil
}

func (b *batchNotifier) NotifyBatchCompleted(_ context.Context, _, _, _ int, _ time.Duration) error {
	b.completed = append(b.completed, "done")
	return nil
}

func (b *batchNotifier) NotifyPostPublished(context.Context, string, string) error { return nil }
func (b *batchNotifier) NotifyLoginRequired(context.Context, string) error         { return nil }
func (b *batchNotifier) NotifyError(context.Context, error, string) error          { return nil }
func (b *batchNotifier) TestNotification(context.Context) error                    { return nil }

func newBatchFixture(t *testing.T, keys ...string) (*config.Config, *catalog.Store, []*catalog.Artifact) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	artifacts := make([]*catalog.Artifact, 0, len(keys))
	for _, key := range keys {
		artifacts = append(artifacts, testsupport.NewArtifact(t, store, key))
	}
	return cfg, store, artifacts
}

func TestRunPostsAllReadyArtifacts(t *testing.T) {
	cfg, store, artifacts := newBatchFixture(t, "B001", "B002", "B003")

	poster := &fakePoster{}
	notifier := &batchNotifier{}
	runner := NewRunner(cfg, store, poster, notifier, logging.NewNop())

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Posted != 3 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 3 posted", summary)
	}
	if len(poster.calls) != len(artifacts) {
		t.Fatalf("poster calls = %v, want one per artifact", poster.calls)
	}
	if summary.BatchID == "" {
		t.Fatal("summary carries no batch id")
	}
	if len(notifier.started) != 1 || notifier.started[0] != 3 {
		t.Fatalf("batch-started notifications = %v", notifier.started)
	}
	if len(notifier.completed) != 1 {
		t.Fatalf("batch-completed notifications = %v", notifier.completed)
	}
}

func TestRunStopsAtDailyLimit(t *testing.T) {
	cfg, store, artifacts := newBatchFixture(t, "B011", "B012", "B013")

	poster := &fakePoster{
		results: map[int64]*posting.Result{
			artifacts[1].ID: {
				ArtifactID: artifacts[1].ID,
				Outcome:    posting.OutcomeSkipped,
				PolicyCode: policy.CodeDailyLimit,
				Reason:     "daily limit reached: 10/10",
			},
		},
	}
	runner := NewRunner(cfg, store, poster, &batchNotifier{}, logging.NewNop())

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Posted != 1 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want 1 posted and 1 skipped", summary)
	}
	if summary.Stopped != policy.CodeDailyLimit {
		t.Fatalf("stopped = %q, want %q", summary.Stopped, policy.CodeDailyLimit)
	}
	if len(poster.calls) != 2 {
		t.Fatalf("poster calls = %v, want the third artifact untouched", poster.calls)
	}
}

func TestRunContinuesPastAttemptFailures(t *testing.T) {
	cfg, store, artifacts := newBatchFixture(t, "B021", "B022")

	poster := &fakePoster{
		errs: map[int64]error{
			artifacts[0].ID: services.Wrap(services.ErrTimeout, "posting", "upload", "processing stalled", nil),
		},
	}
	runner := NewRunner(cfg, store, poster, &batchNotifier{}, logging.NewNop())

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Posted != 1 {
		t.Fatalf("summary = %+v, want 1 failed then 1 posted", summary)
	}
	if len(poster.calls) != 2 {
		t.Fatalf("poster calls = %v, want both artifacts attempted", poster.calls)
	}
}

func TestRunAbortsOnAuthFailure(t *testing.T) {
	cfg, store, artifacts := newBatchFixture(t, "B031", "B032")

	poster := &fakePoster{
		errs: map[int64]error{
			artifacts[0].ID: services.Wrap(services.ErrAuthentication, "session", "login", "session expired", nil),
		},
	}
	runner := NewRunner(cfg, store, poster, &batchNotifier{}, logging.NewNop())

	_, err := runner.Run(context.Background())
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("Run error = %v, want %v", err, services.ErrAuthentication)
	}
	if len(poster.calls) != 1 {
		t.Fatalf("poster calls = %v, want the batch stopped after the auth failure", poster.calls)
	}
}

func TestRunRejectsSecondInstance(t *testing.T) {
	cfg, store, _ := newBatchFixture(t, "B041")

	runner := NewRunner(cfg, store, &fakePoster{}, &batchNotifier{}, logging.NewNop())

	other := flock.New(runner.LockPath())
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}
	defer other.Unlock()

	if _, err := runner.Run(context.Background()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Run error = %v, want a single-instance violation", err)
	}
}

func TestRunEmptyQueueSendsNoNotifications(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	notifier := &batchNotifier{}
	runner := NewRunner(cfg, store, &fakePoster{}, notifier, logging.NewNop())

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Posted != 0 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want all zero", summary)
	}
	if len(notifier.started) != 0 {
		t.Fatalf("batch-started notifications = %v, want none for an empty queue", notifier.started)
	}
}
