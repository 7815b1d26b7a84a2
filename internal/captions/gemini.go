package captions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

// GeminiGenerator produces captions with the Gemini API, trying each
// configured model in order until one answers.
type GeminiGenerator struct {
	client *genai.Client
	models []string
	logger *slog.Logger
}

// NewGemini builds a Gemini-backed caption generator.
func NewGemini(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Captions.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "captions", "gemini", "create client", err)
	}
	return &GeminiGenerator{
		client: client,
		models: cfg.Captions.Models,
		logger: logging.NewComponentLogger(logger, "captions"),
	}, nil
}

// Caption asks Gemini for a caption, walking the model fallback chain.
func (g *GeminiGenerator) Caption(ctx context.Context, product *catalog.Product) (string, error) {
	prompt := buildPrompt(product)

	var lastErr error
	for _, model := range g.models {
		resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			g.logger.Warn("model request failed",
				logging.String("model", model),
				logging.Error(err),
			)
			lastErr = err
			continue
		}
		caption := strings.TrimSpace(resp.Text())
		if caption == "" {
			lastErr = fmt.Errorf("model %s returned empty caption", model)
			continue
		}
		return caption, nil
	}
	return "", services.Wrap(services.ErrExternalTool, "captions", "gemini", "all models failed", lastErr)
}

func buildPrompt(product *catalog.Product) string {
	var b strings.Builder
	b.WriteString("Create an engaging short-video caption for this product:\n\n")
	fmt.Fprintf(&b, "Product: %s\n", product.Title)
	fmt.Fprintf(&b, "Price: $%.2f\n", product.Price)
	fmt.Fprintf(&b, "Category: %s\n", product.Category)
	fmt.Fprintf(&b, "Commission: %.1f%%\n", product.CommissionRate)
	if product.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", product.Description)
	}
	b.WriteString(`
Requirements:
- Hook viewers in the first line
- Highlight the main benefit
- Create urgency
- Include a clear call-to-action
- Keep it under 150 characters
- Use emojis strategically
- Make it sound natural and exciting

Reply with the caption only.`)
	return b.String()
}
