package captions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

// Generator produces the caption line for a product.
type Generator interface {
	Caption(ctx context.Context, product *catalog.Product) (string, error)
}

// Post is the finished text pair for an artifact.
type Post struct {
	Caption  string
	Hashtags string
}

// New builds the generator configured under [captions]. The gemini
// provider falls back to templates when every model fails, so a post is
// always produced.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Generator, error) {
	switch cfg.Captions.Provider {
	case "template":
		return NewTemplate(cfg), nil
	case "gemini":
		gemini, err := NewGemini(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &fallbackGenerator{
			primary:  gemini,
			fallback: NewTemplate(cfg),
			logger:   logging.NewComponentLogger(logger, "captions"),
		}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "captions", "new", fmt.Sprintf("unknown provider %q", cfg.Captions.Provider), nil)
	}
}

// BuildPost produces the caption and hashtag pair for a product, trimmed
// to the platform caption limit.
func BuildPost(ctx context.Context, generator Generator, cfg *config.Config, product *catalog.Product) (Post, error) {
	caption, err := generator.Caption(ctx, product)
	if err != nil {
		return Post{}, err
	}

	hashtags := Hashtags(cfg.Captions, product)
	maxLength := cfg.Captions.MaxLength
	if maxLength > 0 {
		// Hashtags survive intact; the caption takes the cut.
		budget := maxLength - len(hashtags) - len("\n\n")
		if budget < 0 {
			budget = 0
		}
		if len(caption) > budget {
			if budget > 3 {
				caption = caption[:budget-3] + "..."
			} else {
				caption = caption[:budget]
			}
		}
	}

	return Post{Caption: strings.TrimSpace(caption), Hashtags: hashtags}, nil
}

type fallbackGenerator struct {
	primary  Generator
	fallback Generator
	logger   *slog.Logger
}

func (f *fallbackGenerator) Caption(ctx context.Context, product *catalog.Product) (string, error) {
	caption, err := f.primary.Caption(ctx, product)
	if err == nil {
		return caption, nil
	}
	f.logger.Warn("caption provider failed, falling back to templates",
		logging.String("product_key", product.ProductKey),
		logging.Error(err),
	)
	return f.fallback.Caption(ctx, product)
}
