package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/notifications"
	"reelpost/internal/policy"
	"reelpost/internal/posting"
	"reelpost/internal/services"
)

// Poster runs a single posting attempt. Satisfied by *posting.Controller.
type Poster interface {
	Post(ctx context.Context, artifactID int64) (*posting.Result, error)
}

// Summary aggregates the outcomes of one batch run.
type Summary struct {
	BatchID  string
	Posted   int
	Skipped  int
	Aborted  int
	Failed   int
	Results  []*posting.Result
	Duration time.Duration
	// Stopped holds the policy code that ended the batch early, if any.
	Stopped string
}

// Runner walks every ready artifact through the posting controller,
// sequentially and oldest first. A file lock enforces a single running
// instance per data directory so two batches can never race the policy
// counters.
type Runner struct {
	cfg      *config.Config
	store    *catalog.Store
	poster   Poster
	notifier notifications.Service
	logger   *slog.Logger

	lockPath string
	lock     *flock.Flock
}

// NewRunner wires a batch runner.
func NewRunner(cfg *config.Config, store *catalog.Store, poster Poster, notifier notifications.Service, logger *slog.Logger) *Runner {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, "reelpost.lock")
	return &Runner{
		cfg:      cfg,
		store:    store,
		poster:   poster,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// Run executes one batch over all artifacts in the created state. The
// batch stops early when the daily limit is reached; other denials and
// attempt failures skip to the next artifact. A non-nil error means the
// batch itself could not proceed, not that an individual attempt failed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	ok, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", r.lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "workflow", "lock", "another reelpost instance is already running", nil)
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil {
			r.logger.Warn("failed to release batch lock", logging.Error(unlockErr))
		}
	}()

	batchID := uuid.NewString()[:8]
	ctx = services.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	artifacts, err := r.store.ListArtifacts(ctx, catalog.ArtifactCreated)
	if err != nil {
		return nil, err
	}

	summary := &Summary{BatchID: batchID}
	if len(artifacts) == 0 {
		logger.Info("no artifacts ready to post")
		summary.Duration = time.Since(started)
		return summary, nil
	}

	logger.Info("batch started", logging.Int("artifacts", len(artifacts)))
	if notifyErr := r.notifier.NotifyBatchStarted(ctx, len(artifacts)); notifyErr != nil {
		logger.Debug("batch notification failed", logging.Error(notifyErr))
	}

	for _, artifact := range artifacts {
		if ctx.Err() != nil {
			logger.Info("batch canceled", logging.Error(ctx.Err()))
			break
		}

		result, postErr := r.poster.Post(ctx, artifact.ID)
		if result != nil {
			summary.Results = append(summary.Results, result)
		}
		if postErr != nil {
			if batchFatal(postErr) {
				r.finish(ctx, logger, summary, started)
				return summary, postErr
			}
			summary.Failed++
			logger.Warn("attempt failed, moving on",
				logging.Int64(logging.FieldArtifactID, artifact.ID),
				logging.Error(postErr),
			)
			continue
		}

		switch result.Outcome {
		case posting.OutcomePosted:
			summary.Posted++
		case posting.OutcomeSkipped:
			summary.Skipped++
			if result.PolicyCode == policy.CodeDailyLimit {
				// Nothing later in the batch can pass this check today.
				summary.Stopped = result.PolicyCode
				logger.Info("daily limit reached, stopping batch", logging.String("reason", result.Reason))
			}
		case posting.OutcomeAborted:
			summary.Aborted++
		case posting.OutcomeErrored:
			summary.Failed++
		}
		if summary.Stopped != "" {
			break
		}
	}

	r.finish(ctx, logger, summary, started)
	return summary, nil
}

// LockPath returns the path of the single-instance lock file.
func (r *Runner) LockPath() string {
	return r.lockPath
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, summary *Summary, started time.Time) {
	summary.Duration = time.Since(started)
	logger.Info("batch finished",
		logging.Int("posted", summary.Posted),
		logging.Int("skipped", summary.Skipped),
		logging.Int("aborted", summary.Aborted),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
	)
	if err := r.notifier.NotifyBatchCompleted(context.WithoutCancel(ctx), summary.Posted, summary.Skipped+summary.Aborted, summary.Failed, summary.Duration); err != nil {
		logger.Debug("batch notification failed", logging.Error(err))
	}
}

// batchFatal reports whether an attempt error should end the whole batch.
// Auth failures need an operator, and unclassified errors are almost always
// the store; retrying the next artifact would hit the same wall.
func batchFatal(err error) bool {
	if errors.Is(err, services.ErrAuthentication) {
		return true
	}
	for _, marker := range []error{
		services.ErrAutomation,
		services.ErrExternalTool,
		services.ErrValidation,
		services.ErrTimeout,
		services.ErrTransient,
	} {
		if errors.Is(err, marker) {
			return false
		}
	}
	return true
}
