package main

import (
	"fmt"
	"strings"
	"time"
)

func errUnknownConfirmChannel(channel string) error {
	return fmt.Errorf("unknown confirm channel %q (expected console or telegram)", channel)
}

func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

func formatPercent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatTime(*value)
}

func truncateCell(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
