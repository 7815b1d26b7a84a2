package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelpost/internal/services"
)

const eventColumns = "id, artifact_id, platform, outcome, reference_url, error_message, started_at, resolved_at"

// OpenPostEvent records the start of a posting attempt for an artifact.
// The schema's partial unique index rejects a second unresolved attempt for
// the same artifact; that conflict surfaces as ErrAttemptInFlight.
func (s *Store) OpenPostEvent(ctx context.Context, artifactID int64, platform string) (*PostEvent, error) {
	if platform == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "open post event", "platform is empty", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO post_events (artifact_id, platform, outcome, started_at) VALUES (?, ?, ?, ?)`,
		artifactID,
		platform,
		OutcomeAwaitingConfirmation,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("artifact %d: %w", artifactID, ErrAttemptInFlight)
		}
		return nil, fmt.Errorf("insert post event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.EventByID(ctx, id)
}

// EventByID fetches a post event by row identifier.
func (s *Store) EventByID(ctx context.Context, id int64) (*PostEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM post_events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "event lookup", fmt.Sprintf("id %d", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get post event: %w", err)
	}
	return event, nil
}

// OpenEventForArtifact returns the unresolved attempt for an artifact, or
// ErrNotFound when nothing is in flight.
func (s *Store) OpenEventForArtifact(ctx context.Context, artifactID int64) (*PostEvent, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+eventColumns+` FROM post_events WHERE artifact_id = ? AND outcome = ?`,
		artifactID,
		OutcomeAwaitingConfirmation,
	)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "open event lookup", fmt.Sprintf("artifact %d", artifactID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get open event: %w", err)
	}
	return event, nil
}

// ResolvePostEvent closes an open attempt with a terminal outcome.
// Resolving an already-resolved event is an error; outcomes change once.
// Only confirmed events get a completion timestamp: an abort or error never
// reached the platform, and the null resolved_at records that.
func (s *Store) ResolvePostEvent(ctx context.Context, id int64, outcome EventOutcome, referenceURL, errorMessage string) (*PostEvent, error) {
	if !outcome.IsTerminal() {
		return nil, services.Wrap(services.ErrValidation, "catalog", "resolve post event", fmt.Sprintf("outcome %q is not terminal", outcome), nil)
	}
	resolvedAt := any(nil)
	if outcome == OutcomeConfirmed {
		resolvedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE post_events
         SET outcome = ?, reference_url = ?, error_message = ?, resolved_at = ?
         WHERE id = ? AND outcome = ?`,
		outcome,
		nullableString(referenceURL),
		nullableString(errorMessage),
		resolvedAt,
		id,
		OutcomeAwaitingConfirmation,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve post event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "resolve post event", fmt.Sprintf("event %d is not in flight", id), nil)
	}
	return s.EventByID(ctx, id)
}

// EventsSince returns events that started or resolved at or after the
// cutoff, newest first. Policy evaluation feeds on this, and it counts a
// confirmed post at its resolution time: an attempt that sat on the human
// gate for longer than the window still must enforce the cooldown once
// confirmed, so filtering on started_at alone would let it slip out.
func (s *Store) EventsSince(ctx context.Context, cutoff time.Time) ([]*PostEvent, error) {
	bound := cutoff.UTC().Format(time.RFC3339Nano)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+eventColumns+` FROM post_events WHERE started_at >= ? OR resolved_at >= ? ORDER BY started_at DESC, id DESC`,
		bound,
		bound,
	)
	if err != nil {
		return nil, fmt.Errorf("query events since: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// EventsForArtifact returns the full attempt history of an artifact, oldest first.
func (s *Store) EventsForArtifact(ctx context.Context, artifactID int64) ([]*PostEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+eventColumns+` FROM post_events WHERE artifact_id = ? ORDER BY started_at, id`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events for artifact: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// Stats aggregates catalog counts for status reporting.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	productRows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM products GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	defer productRows.Close()
	for productRows.Next() {
		var status string
		var count int
		if err := productRows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ProductsTotal += count
		if ProductStatus(status) == ProductPending {
			stats.ProductsPending = count
		}
	}
	if err := productRows.Err(); err != nil {
		return nil, err
	}

	artifactRows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM artifacts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("artifact stats: %w", err)
	}
	defer artifactRows.Close()
	for artifactRows.Next() {
		var status string
		var count int
		if err := artifactRows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ArtifactsTotal += count
		switch ArtifactStatus(status) {
		case ArtifactCreated:
			stats.ArtifactsCreated = count
		case ArtifactPosted:
			stats.ArtifactsPosted = count
		case ArtifactFailed:
			stats.ArtifactsFailed = count
		}
	}
	if err := artifactRows.Err(); err != nil {
		return nil, err
	}

	eventRows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(1) FROM post_events GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var outcome string
		var count int
		if err := eventRows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		switch EventOutcome(outcome) {
		case OutcomeConfirmed:
			stats.PostsConfirmed = count
		case OutcomeAborted:
			stats.PostsAborted = count
		case OutcomeError:
			stats.PostsErrored = count
		case OutcomeAwaitingConfirmation:
			stats.PostsInFlight = count
		}
	}
	return stats, eventRows.Err()
}

func collectEvents(rows *sql.Rows) ([]*PostEvent, error) {
	var events []*PostEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEvent(scanner interface{ Scan(dest ...any) error }) (*PostEvent, error) {
	var (
		id           int64
		artifactID   int64
		platform     string
		outcomeStr   string
		referenceURL sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		resolvedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id, &artifactID, &platform, &outcomeStr, &referenceURL, &errorMessage, &startedRaw, &resolvedRaw,
	); err != nil {
		return nil, err
	}

	event := &PostEvent{
		ID:           id,
		ArtifactID:   artifactID,
		Platform:     platform,
		Outcome:      EventOutcome(outcomeStr),
		ReferenceURL: referenceURL.String,
		ErrorMessage: errorMessage.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		event.StartedAt = started
	}
	if resolvedRaw.Valid {
		if resolved, err := parseTimeString(resolvedRaw.String); err == nil {
			event.ResolvedAt = &resolved
		}
	}
	return event, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: post_events")
}
