package services_test

import (
	"context"
	"testing"

	"reelpost/internal/services"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	if _, ok := services.ArtifactIDFromContext(ctx); ok {
		t.Fatal("expected no artifact id on empty context")
	}

	ctx = services.WithArtifactID(ctx, 42)
	ctx = services.WithStage(ctx, "awaiting_confirmation")
	ctx = services.WithBatchID(ctx, "batch-1")

	if id, ok := services.ArtifactIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("artifact id = %d, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "awaiting_confirmation" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if batch, ok := services.BatchIDFromContext(ctx); !ok || batch != "batch-1" {
		t.Fatalf("batch = %q, %v", batch, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := services.WithStage(context.Background(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected empty stage to be dropped")
	}
	ctx = services.WithBatchID(context.Background(), "")
	if _, ok := services.BatchIDFromContext(ctx); ok {
		t.Fatal("expected empty batch id to be dropped")
	}
}
