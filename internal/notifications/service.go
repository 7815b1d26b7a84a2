package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelpost/internal/config"
)

const userAgent = "reelpost/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyBatchStarted(ctx context.Context, count int) error
	NotifyBatchCompleted(ctx context.Context, posted, skipped, failed int, duration time.Duration) error
	NotifyPostPublished(ctx context.Context, productTitle, referenceURL string) error
	NotifyLoginRequired(ctx context.Context, platform string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, count int) error {
	data := payload{
		title:   "reelpost - Batch Started",
		message: fmt.Sprintf("Started posting batch with %d artifacts", count),
		tags:    []string{"reelpost", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, posted, skipped, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title string
	if failed == 0 {
		title = "reelpost - Batch Complete"
	} else {
		title = "reelpost - Batch Complete (with errors)"
	}
	message := fmt.Sprintf("Batch complete: %d posted, %d skipped, %d failed in %s",
		posted, skipped, failed, duration)

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"reelpost", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPostPublished(ctx context.Context, productTitle, referenceURL string) error {
	productTitle = strings.TrimSpace(productTitle)
	message := fmt.Sprintf("Published: %s", productTitle)
	if referenceURL = strings.TrimSpace(referenceURL); referenceURL != "" {
		message = fmt.Sprintf("%s\n%s", message, referenceURL)
	}
	data := payload{
		title:    "reelpost - Posted",
		message:  message,
		tags:     []string{"reelpost", "post", "published"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyLoginRequired(ctx context.Context, platform string) error {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = "platform"
	}
	data := payload{
		title:    "reelpost - Login Required",
		message:  fmt.Sprintf("Session for %s expired. Manual login needed before posting can continue.", platform),
		tags:     []string{"reelpost", "session", "login"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "reelpost - Error",
		message:  builder.String(),
		tags:     []string{"reelpost", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "reelpost - Test",
		message:  "Notification system test",
		tags:     []string{"reelpost", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, int, time.Duration) error { return nil }
func (noopService) NotifyPostPublished(context.Context, string, string) error           { return nil }
func (noopService) NotifyLoginRequired(context.Context, string) error                   { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
