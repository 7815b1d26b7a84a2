package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"reelpost/internal/config"
)

// chromeCandidates are the binary names probed when no Chrome path is
// configured, in preference order.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

// ForConfig lists the external binaries the configured pipeline needs.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Render.FFmpegBinary,
			Description: "Renders product promo clips",
		},
	}
}

// CheckAll reports the availability of every external dependency,
// including the Chrome resolution.
func CheckAll(cfg *config.Config) []Status {
	results := CheckBinaries(ForConfig(cfg))
	return append(results, CheckChrome(cfg.Platform.ChromeBinary))
}

// CheckChrome resolves the browser binary the session manager will launch.
// An explicitly configured path must exist; otherwise the usual Chrome and
// Chromium names are probed on PATH.
func CheckChrome(configured string) Status {
	result := Status{
		Name:        "Chrome",
		Description: "Drives the platform upload flow",
	}

	configured = strings.TrimSpace(configured)
	if configured != "" {
		result.Command = configured
		if _, err := exec.LookPath(configured); err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", configured)
			return result
		}
		result.Available = true
		return result
	}

	for _, candidate := range chromeCandidates {
		if resolved, err := exec.LookPath(candidate); err == nil {
			result.Command = resolved
			result.Available = true
			return result
		}
	}

	result.Command = chromeCandidates[0]
	result.Detail = "no chrome or chromium binary found on PATH"
	return result
}

// MissingRequired returns the names of unavailable non-optional
// dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
