package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication marks failures caused by a missing or expired platform session.
	ErrAuthentication = errors.New("authentication error")
	// ErrAutomation marks browser automation failures (navigation, selectors, upload).
	ErrAutomation = errors.New("automation error")
	// ErrExternalTool marks failures of external binaries such as ffmpeg.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks malformed input or state that breaks an invariant.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration discovered at runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups for rows or resources that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks operations that exceeded their deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures that are safe to retry with a fresh attempt.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// NeedsOperator reports whether the error requires a human to intervene
// before another attempt can succeed (re-login, config fix, missing input).
func NeedsOperator(err error) bool {
	return errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
