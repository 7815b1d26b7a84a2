package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reelpost/internal/services"
)

const artifactColumns = "id, product_key, video_path, caption, hashtags, status, error_message, created_at, updated_at"

// NewArtifact inserts a rendered video for a product. Every render gets its
// own row, so a retried post is a new artifact rather than a mutated old one.
func (s *Store) NewArtifact(ctx context.Context, productKey, videoPath, caption, hashtags string) (*Artifact, error) {
	if productKey == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "new artifact", "product key is empty", nil)
	}
	if videoPath == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "new artifact", "video path is empty", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO artifacts (
            product_key, video_path, caption, hashtags, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		productKey,
		videoPath,
		nullableString(caption),
		nullableString(hashtags),
		ArtifactCreated,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert artifact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.ArtifactByID(ctx, id)
}

// ArtifactByID fetches an artifact by row identifier.
func (s *Store) ArtifactByID(ctx context.Context, id int64) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id)
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "artifact lookup", fmt.Sprintf("id %d", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return artifact, nil
}

// ListArtifacts returns artifacts filtered by status set (or all artifacts
// when no status is provided), oldest first.
func (s *Store) ListArtifacts(ctx context.Context, statuses ...ArtifactStatus) ([]*Artifact, error) {
	baseQuery := `SELECT ` + artifactColumns + ` FROM artifacts`
	orderClause := ` ORDER BY created_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// NextCreatedArtifact returns the oldest artifact still awaiting a post.
func (s *Store) NextCreatedArtifact(ctx context.Context) (*Artifact, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE status = ? ORDER BY created_at, id LIMIT 1`,
		ArtifactCreated,
	)
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next created artifact: %w", err)
	}
	return artifact, nil
}

// UpdateArtifact persists changes to an existing artifact.
func (s *Store) UpdateArtifact(ctx context.Context, a *Artifact) error {
	if a == nil {
		return errors.New("artifact is nil")
	}
	a.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE artifacts
         SET video_path = ?, caption = ?, hashtags = ?, status = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		a.VideoPath,
		nullableString(a.Caption),
		nullableString(a.Hashtags),
		a.Status,
		nullableString(a.ErrorMessage),
		a.UpdatedAt.Format(time.RFC3339Nano),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "catalog", "update artifact", fmt.Sprintf("id %d", a.ID), nil)
	}
	return nil
}

func scanArtifact(scanner interface{ Scan(dest ...any) error }) (*Artifact, error) {
	var (
		id           int64
		productKey   string
		videoPath    string
		caption      sql.NullString
		hashtags     sql.NullString
		statusStr    string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&id, &productKey, &videoPath, &caption, &hashtags, &statusStr, &errorMessage, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	artifact := &Artifact{
		ID:           id,
		ProductKey:   productKey,
		VideoPath:    videoPath,
		Caption:      caption.String,
		Hashtags:     hashtags.String,
		Status:       ArtifactStatus(statusStr),
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		artifact.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		artifact.UpdatedAt = updated
	}
	return artifact, nil
}
