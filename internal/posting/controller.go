package posting

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"reelpost/internal/browser"
	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/confirm"
	"reelpost/internal/logging"
	"reelpost/internal/notifications"
	"reelpost/internal/policy"
	"reelpost/internal/services"
)

// SessionProvider yields an authenticated browser for the posting flow.
type SessionProvider interface {
	Ensure(ctx context.Context) (browser.Automation, error)
	Invalidate() error
}

// Controller walks one artifact through a complete posting attempt: policy
// check, upload, caption, human confirmation, reference capture. It records
// exactly one post event per attempt, opened only after the session is up and
// always resolved before Post returns.
type Controller struct {
	cfg       *config.Config
	store     *catalog.Store
	session   SessionProvider
	confirmer confirm.Confirmer
	notifier  notifications.Service
	logger    *slog.Logger
	now       func() time.Time
}

// NewController wires a posting controller.
func NewController(
	cfg *config.Config,
	store *catalog.Store,
	session SessionProvider,
	confirmer confirm.Confirmer,
	notifier notifications.Service,
	logger *slog.Logger,
) *Controller {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Controller{
		cfg:       cfg,
		store:     store,
		session:   session,
		confirmer: confirmer,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "posting"),
		now:       time.Now,
	}
}

// Post runs a posting attempt for the artifact. The returned Result always
// describes what happened; the error is non-nil only for failures. Policy
// denials and duplicate attempts are reported as skips, not errors.
func (c *Controller) Post(ctx context.Context, artifactID int64) (*Result, error) {
	ctx = services.WithArtifactID(ctx, artifactID)
	logger := logging.WithContext(ctx, c.logger)

	artifact, err := c.store.ArtifactByID(ctx, artifactID)
	if err != nil {
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, err
	}
	if artifact.Status != catalog.ArtifactCreated {
		return &Result{
			ArtifactID: artifactID,
			Outcome:    OutcomeSkipped,
			Reason:     "artifact is " + string(artifact.Status),
		}, nil
	}

	if _, err := os.Stat(artifact.VideoPath); err != nil {
		failErr := services.Wrap(services.ErrValidation, "posting", "check video", artifact.VideoPath, err)
		if markErr := c.markArtifact(ctx, artifact, catalog.ArtifactFailed, failErr.Error()); markErr != nil {
			return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, markErr
		}
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, failErr
	}

	decision, err := c.evaluatePolicy(ctx)
	if err != nil {
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, err
	}
	if !decision.Allowed {
		logger.Info("posting denied by policy",
			logging.String("code", decision.Code),
			logging.String("reason", decision.Reason),
		)
		return &Result{
			ArtifactID: artifactID,
			Outcome:    OutcomeSkipped,
			Reason:     decision.Reason,
			PolicyCode: decision.Code,
		}, nil
	}

	if open, err := c.store.OpenEventForArtifact(ctx, artifact.ID); err == nil {
		return &Result{
			ArtifactID: artifactID,
			EventID:    open.ID,
			Outcome:    OutcomeSkipped,
			Reason:     "attempt already in flight",
		}, nil
	} else if !errors.Is(err, services.ErrNotFound) {
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, err
	}

	product, err := c.store.ProductByKey(ctx, artifact.ProductKey)
	if err != nil {
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, err
	}

	// The session comes up before the attempt is recorded: a login failure
	// must not burn an event.
	auto, err := c.session.Ensure(ctx)
	if err != nil {
		if errors.Is(err, services.ErrAuthentication) {
			if notifyErr := c.notifier.NotifyLoginRequired(ctx, c.cfg.Platform.Name); notifyErr != nil {
				logger.Debug("login notification failed", logging.Error(notifyErr))
			}
		}
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, err
	}

	event, err := c.store.OpenPostEvent(ctx, artifact.ID, c.cfg.Platform.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrAttemptInFlight) {
			return &Result{
				ArtifactID: artifactID,
				Outcome:    OutcomeSkipped,
				Reason:     "attempt already in flight",
			}, nil
		}
		return &Result{ArtifactID: artifactID, Outcome: OutcomeErrored}, err
	}
	logger = logger.With(logging.Int64(logging.FieldEventID, event.ID))

	if err := c.markArtifact(ctx, artifact, catalog.ArtifactPosting, ""); err != nil {
		if _, resolveErr := c.store.ResolvePostEvent(context.WithoutCancel(ctx), event.ID, catalog.OutcomeError, "", err.Error()); resolveErr != nil {
			logger.Error("failed to resolve event", logging.Error(resolveErr))
		}
		return &Result{ArtifactID: artifactID, EventID: event.ID, Outcome: OutcomeErrored}, err
	}

	if err := c.upload(ctx, auto, artifact); err != nil {
		return c.failAttempt(ctx, logger, artifact, event, err)
	}
	logger.Info("upload prepared, awaiting confirmation",
		logging.String("product", product.Title),
		logging.String("video", artifact.VideoPath),
	)

	verdict, confirmErr := c.confirmer.Confirm(ctx, confirm.Request{
		ProductTitle: product.Title,
		Caption:      composeCaption(artifact),
		VideoPath:    artifact.VideoPath,
		ProductURL:   product.ProductURL,
	})
	if confirmErr != nil {
		return c.abortAttempt(ctx, logger, artifact, event, "confirmation interrupted: "+confirmErr.Error())
	}
	if verdict != confirm.Approved {
		return c.abortAttempt(ctx, logger, artifact, event, "operator aborted")
	}

	reference := c.captureReference(ctx, auto, logger)

	if _, err := c.store.ResolvePostEvent(ctx, event.ID, catalog.OutcomeConfirmed, reference, ""); err != nil {
		return &Result{ArtifactID: artifactID, EventID: event.ID, Outcome: OutcomeErrored}, err
	}
	if err := c.markArtifact(ctx, artifact, catalog.ArtifactPosted, ""); err != nil {
		return &Result{ArtifactID: artifactID, EventID: event.ID, Outcome: OutcomeErrored, ReferenceURL: reference}, err
	}

	logger.Info("post confirmed", logging.String("reference", reference))
	if err := c.notifier.NotifyPostPublished(ctx, product.Title, reference); err != nil {
		logger.Debug("publish notification failed", logging.Error(err))
	}

	return &Result{
		ArtifactID:   artifactID,
		EventID:      event.ID,
		Outcome:      OutcomePosted,
		ReferenceURL: reference,
	}, nil
}

func (c *Controller) evaluatePolicy(ctx context.Context) (policy.Decision, error) {
	now := c.now().UTC()
	events, err := c.store.EventsSince(ctx, now.Add(-policy.Window))
	if err != nil {
		return policy.Decision{}, err
	}
	return policy.Evaluate(now, events, policy.FromSafety(c.cfg.Safety)), nil
}

// upload drives the browser through file attach and caption fill. The
// publish button is never touched here; that click belongs to the human.
func (c *Controller) upload(ctx context.Context, auto browser.Automation, artifact *catalog.Artifact) error {
	platform := c.cfg.Platform

	if err := auto.Navigate(ctx, platform.UploadURL); err != nil {
		return err
	}
	if err := auto.UploadFile(ctx, platform.FileInputSelector, artifact.VideoPath); err != nil {
		return err
	}

	uploadTimeout := time.Duration(platform.UploadTimeout) * time.Second
	processed, err := auto.WaitVisible(ctx, platform.ProcessingSelector, uploadTimeout)
	if err != nil {
		return err
	}
	if !processed {
		return services.Wrap(services.ErrTimeout, "posting", "upload", "video processing did not finish", nil)
	}

	return auto.FillField(ctx, platform.CaptionSelector, composeCaption(artifact))
}

// captureReference pulls the newest post URL from the profile page. Capture
// is best effort: when the post has not shown up after the retries, the
// profile URL itself is recorded so the confirmed event still carries a
// non-empty reference.
func (c *Controller) captureReference(ctx context.Context, auto browser.Automation, logger *slog.Logger) string {
	platform := c.cfg.Platform
	retryWait := time.Duration(platform.ReferenceRetryWait) * time.Second

	if err := auto.Navigate(ctx, platform.ProfileURL); err != nil {
		logger.Warn("profile navigation failed, using profile url as reference", logging.Error(err))
		return platform.ProfileURL
	}

	for attempt := 1; attempt <= platform.ReferenceRetries; attempt++ {
		href, err := auto.ReadAttribute(ctx, platform.PostLinkSelector, "href")
		if err == nil && strings.TrimSpace(href) != "" {
			return absoluteReference(platform.ProfileURL, href)
		}
		if attempt < platform.ReferenceRetries {
			select {
			case <-time.After(retryWait):
			case <-ctx.Done():
				return platform.ProfileURL
			}
		}
	}

	logger.Warn("post link not found on profile, using profile url as reference")
	return platform.ProfileURL
}

func (c *Controller) failAttempt(ctx context.Context, logger *slog.Logger, artifact *catalog.Artifact, event *catalog.PostEvent, cause error) (*Result, error) {
	// A canceled run is an abort, not a failure: the attempt never reached
	// the platform and the artifact stays eligible.
	if ctx.Err() != nil {
		return c.abortAttempt(ctx, logger, artifact, event, "run canceled: "+ctx.Err().Error())
	}

	logger.Error("posting attempt failed", logging.Error(cause))
	persistCtx := context.WithoutCancel(ctx)
	if _, err := c.store.ResolvePostEvent(persistCtx, event.ID, catalog.OutcomeError, "", cause.Error()); err != nil {
		logger.Error("failed to resolve event", logging.Error(err))
		return &Result{ArtifactID: artifact.ID, EventID: event.ID, Outcome: OutcomeErrored}, err
	}
	if err := c.markArtifact(persistCtx, artifact, catalog.ArtifactFailed, cause.Error()); err != nil {
		return &Result{ArtifactID: artifact.ID, EventID: event.ID, Outcome: OutcomeErrored}, err
	}

	if err := c.notifier.NotifyError(ctx, cause, "posting"); err != nil {
		logger.Debug("error notification failed", logging.Error(err))
	}
	return &Result{ArtifactID: artifact.ID, EventID: event.ID, Outcome: OutcomeErrored}, cause
}

func (c *Controller) abortAttempt(ctx context.Context, logger *slog.Logger, artifact *catalog.Artifact, event *catalog.PostEvent, reason string) (*Result, error) {
	logger.Info("posting attempt aborted", logging.String("reason", reason))

	// Resolution must land even when the surrounding context is canceled.
	persistCtx := context.WithoutCancel(ctx)
	if _, err := c.store.ResolvePostEvent(persistCtx, event.ID, catalog.OutcomeAborted, "", reason); err != nil {
		logger.Error("failed to resolve event", logging.Error(err))
		return &Result{ArtifactID: artifact.ID, EventID: event.ID, Outcome: OutcomeAborted, Reason: reason}, err
	}
	// The artifact is spent; a retry means rendering a fresh one. The
	// aborted event spends no posting budget either way.
	if err := c.markArtifact(persistCtx, artifact, catalog.ArtifactFailed, reason); err != nil {
		return &Result{ArtifactID: artifact.ID, EventID: event.ID, Outcome: OutcomeAborted, Reason: reason}, err
	}

	return &Result{
		ArtifactID: artifact.ID,
		EventID:    event.ID,
		Outcome:    OutcomeAborted,
		Reason:     reason,
	}, nil
}

// markArtifact persists a status transition. A write failure here is a
// state-corruption risk, so callers propagate it instead of pressing on.
func (c *Controller) markArtifact(ctx context.Context, artifact *catalog.Artifact, status catalog.ArtifactStatus, errorMessage string) error {
	artifact.Status = status
	artifact.ErrorMessage = errorMessage
	if err := c.store.UpdateArtifact(ctx, artifact); err != nil {
		c.logger.Error("failed to persist artifact transition",
			logging.Int64(logging.FieldArtifactID, artifact.ID),
			logging.String("status", string(status)),
			logging.Error(err),
		)
		return err
	}
	return nil
}

func composeCaption(artifact *catalog.Artifact) string {
	caption := strings.TrimSpace(artifact.Caption)
	hashtags := strings.TrimSpace(artifact.Hashtags)
	switch {
	case caption == "":
		return hashtags
	case hashtags == "":
		return caption
	default:
		return caption + "\n\n" + hashtags
	}
}

func absoluteReference(base, href string) string {
	parsedBase, err := url.Parse(base)
	if err != nil {
		return href
	}
	parsedHref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return parsedBase.ResolveReference(parsedHref).String()
}
