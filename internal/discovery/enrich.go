package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

const (
	enrichAttempts     = 3
	enrichRetryBackoff = 2 * time.Second
	enrichMaxChars     = 600
)

// Enricher fills in empty product descriptions by extracting readable text
// from the product page.
type Enricher struct {
	client  *http.Client
	logger  *slog.Logger
	backoff time.Duration
}

// NewEnricher builds a description enricher.
func NewEnricher(cfg *config.Config, logger *slog.Logger) *Enricher {
	timeout := time.Duration(cfg.Discovery.RequestTimeout) * time.Second
	return &Enricher{
		client:  &http.Client{Timeout: timeout},
		logger:  componentLogger(logger),
		backoff: enrichRetryBackoff,
	}
}

// EnrichAll fills descriptions for every product that lacks one. Extraction
// failures are logged and skipped; the batch never fails on one bad page.
func (e *Enricher) EnrichAll(ctx context.Context, products []*catalog.Product) {
	for _, product := range products {
		if strings.TrimSpace(product.Description) != "" {
			continue
		}
		description, err := e.Extract(ctx, product.ProductURL)
		if err != nil {
			e.logger.Warn("description extraction failed",
				logging.String("product_key", product.ProductKey),
				logging.Error(err),
			)
			continue
		}
		product.Description = description
	}
}

// Extract pulls the readable body text from the page at pageURL,
// truncated to a caption-friendly length. Transient fetch failures are
// retried with a linear backoff.
func (e *Enricher) Extract(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "discovery", "enrich", "parse product url", err)
	}

	var lastErr error
	for attempt := 1; attempt <= enrichAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * e.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		description, err := e.extractOnce(ctx, parsed)
		if err == nil {
			return description, nil
		}
		lastErr = err
	}
	return "", services.Wrap(services.ErrTransient, "discovery", "enrich", fmt.Sprintf("extraction failed after %d attempts", enrichAttempts), lastErr)
}

func (e *Enricher) extractOnce(ctx context.Context, pageURL *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fetch page: %s", resp.Status)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("extract readable content: %w", err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return "", fmt.Errorf("page has no readable content")
	}
	if len(text) > enrichMaxChars {
		text = text[:enrichMaxChars]
		if idx := strings.LastIndex(text, " "); idx > 0 {
			text = text[:idx]
		}
	}
	return text, nil
}
