// Package config loads, normalizes, and validates reelpost configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and TELEGRAM_BOT_TOKEN. The Config type centralizes every
// knob the CLI needs, from browser selectors and posting rate limits to
// caption providers and render settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
