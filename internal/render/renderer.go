package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

var commandContext = exec.CommandContext

const backgroundColor = "0x1A1A2E"

// Renderer produces the vertical promo clip for a product with ffmpeg:
// a solid background, the product image centered, and title and price
// text burned in.
type Renderer struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
}

// New builds a renderer.
func New(cfg *config.Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

// Render creates the promo clip for the product and returns the video
// path. The product image is fetched best effort; when it cannot be
// downloaded the clip falls back to text on a plain background.
func (r *Renderer) Render(ctx context.Context, product *catalog.Product) (string, error) {
	render := r.cfg.Render
	outputPath := filepath.Join(r.cfg.Paths.VideosDir, product.ProductKey+".mp4")

	imagePath := ""
	if product.ImageURL != "" {
		downloaded, err := r.downloadImage(ctx, product)
		if err != nil {
			r.logger.Warn("image download failed, rendering without it",
				logging.String("product_key", product.ProductKey),
				logging.Error(err),
			)
		} else {
			imagePath = downloaded
			defer os.Remove(downloaded)
		}
	}

	args := buildArgs(render, product, imagePath, outputPath)

	runCtx := ctx
	if render.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(render.Timeout)*time.Second)
		defer cancel()
	}

	started := time.Now()
	cmd := commandContext(runCtx, render.FFmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", services.Wrap(services.ErrTimeout, "render", "ffmpeg", fmt.Sprintf("render exceeded %ds", render.Timeout), err)
		}
		return "", services.Wrap(services.ErrExternalTool, "render", "ffmpeg", strings.TrimSpace(string(output)), err)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return "", services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "no output produced", err)
	}

	r.logger.Info("clip rendered",
		logging.String("product_key", product.ProductKey),
		logging.String("video", outputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return outputPath, nil
}

func (r *Renderer) downloadImage(ctx context.Context, product *catalog.Product) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, product.ImageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fetch image: %s", resp.Status)
	}

	imagePath := filepath.Join(r.cfg.Paths.VideosDir, product.ProductKey+"_image")
	file, err := os.Create(imagePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(imagePath)
		return "", err
	}
	return imagePath, nil
}

// buildArgs assembles the full ffmpeg invocation. Kept separate from the
// exec so the command line itself is testable.
func buildArgs(render config.Render, product *catalog.Product, imagePath, outputPath string) []string {
	size := fmt.Sprintf("%dx%d", render.Width, render.Height)

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%s:d=%d:r=%d", backgroundColor, size, render.Duration, render.FPS),
	}

	filters := []string{}
	current := "[0:v]"
	if imagePath != "" {
		args = append(args, "-loop", "1", "-t", fmt.Sprintf("%d", render.Duration), "-i", imagePath)
		imageWidth := render.Width * 8 / 10
		filters = append(filters,
			fmt.Sprintf("[1:v]scale=%d:-2[img]", imageWidth),
			current+"[img]overlay=(W-w)/2:(H-h)/2-100[base]",
		)
		current = "[base]"
	}

	// Silent stereo track; some upload pipelines reject video-only files.
	args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=44100")
	audioInput := "1:a"
	if imagePath != "" {
		audioInput = "2:a"
	}

	titleText := escapeDrawtext(truncateTitle(product.Title))
	priceText := escapeDrawtext(fmt.Sprintf("$%.2f", product.Price))
	filters = append(filters,
		current+drawtext(render, titleText, 64, "100")+"[titled]",
		"[titled]"+drawtext(render, priceText, 96, fmt.Sprintf("%d-300", render.Height))+"[texted]",
		fmt.Sprintf("[texted]fade=t=in:st=0:d=0.5,fade=t=out:st=%.1f:d=0.5[out]", float64(render.Duration)-0.5),
	)

	args = append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "[out]",
		"-map", audioInput,
		"-t", fmt.Sprintf("%d", render.Duration),
		"-r", fmt.Sprintf("%d", render.FPS),
		"-c:v", "libx264",
		"-b:v", render.VideoBitrate,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	)
	return args
}

func drawtext(render config.Render, text string, fontSize int, y string) string {
	spec := fmt.Sprintf("drawtext=text='%s':fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=%s", text, fontSize, y)
	if render.FontFile != "" {
		spec += ":fontfile='" + escapeDrawtext(render.FontFile) + "'"
	}
	return spec
}

func truncateTitle(title string) string {
	const limit = 48
	if len(title) <= limit {
		return title
	}
	trimmed := title[:limit]
	if idx := strings.LastIndex(trimmed, " "); idx > 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

// escapeDrawtext quotes the characters the drawtext filter treats as
// syntax.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}
