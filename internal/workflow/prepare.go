package workflow

import (
	"context"
	"log/slog"

	"reelpost/internal/captions"
	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
)

// Clipper renders the promo clip for a product. Satisfied by
// *render.Renderer.
type Clipper interface {
	Render(ctx context.Context, product *catalog.Product) (string, error)
}

// Preparer turns selected products into ready-to-post artifacts: render
// the clip, generate caption and hashtags, write the artifact row, and
// advance the product status.
type Preparer struct {
	cfg       *config.Config
	store     *catalog.Store
	clipper   Clipper
	generator captions.Generator
	logger    *slog.Logger
}

// NewPreparer wires an artifact preparer.
func NewPreparer(cfg *config.Config, store *catalog.Store, clipper Clipper, generator captions.Generator, logger *slog.Logger) *Preparer {
	return &Preparer{
		cfg:       cfg,
		store:     store,
		clipper:   clipper,
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "prepare"),
	}
}

// PrepareAll builds an artifact for every selected product. Render and
// caption failures skip the product and leave it selected for a later
// retry; store failures stop the run. Returns the created artifacts.
func (p *Preparer) PrepareAll(ctx context.Context) ([]*catalog.Artifact, error) {
	products, err := p.store.ListProducts(ctx, catalog.ProductSelected)
	if err != nil {
		return nil, err
	}

	var artifacts []*catalog.Artifact
	for _, product := range products {
		if ctx.Err() != nil {
			return artifacts, ctx.Err()
		}
		artifact, err := p.Prepare(ctx, product)
		if err != nil {
			p.logger.Warn("artifact preparation failed",
				logging.String("product_key", product.ProductKey),
				logging.Error(err),
			)
			continue
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// Prepare builds one artifact for the product.
func (p *Preparer) Prepare(ctx context.Context, product *catalog.Product) (*catalog.Artifact, error) {
	videoPath, err := p.clipper.Render(ctx, product)
	if err != nil {
		return nil, err
	}

	post, err := captions.BuildPost(ctx, p.generator, p.cfg, product)
	if err != nil {
		return nil, err
	}

	artifact, err := p.store.NewArtifact(ctx, product.ProductKey, videoPath, post.Caption, post.Hashtags)
	if err != nil {
		return nil, err
	}
	if err := p.store.UpdateProductStatus(ctx, product.ProductKey, catalog.ProductArtifactReady); err != nil {
		return nil, err
	}

	p.logger.Info("artifact ready",
		logging.String("product_key", product.ProductKey),
		logging.Int64(logging.FieldArtifactID, artifact.ID),
		logging.String("video", videoPath),
	)
	return artifact, nil
}
