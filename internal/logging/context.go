package logging

import (
	"context"
	"log/slog"

	"reelpost/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProductID is the standardized structured logging key for catalog product identifiers.
	FieldProductID = "product_id"
	// FieldArtifactID is the standardized structured logging key for video artifact row identifiers.
	FieldArtifactID = "artifact_id"
	// FieldEventID is the standardized structured logging key for post event row identifiers.
	FieldEventID = "event_id"
	// FieldStage is the standardized structured logging key for posting stage names.
	FieldStage = "stage"
	// FieldBatchID is the standardized structured logging key for batch run correlation identifiers.
	FieldBatchID = "batch_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ArtifactIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldArtifactID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if batch, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, batch))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
