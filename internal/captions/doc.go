// Package captions turns a product into post text: an attention-grabbing
// caption plus a hashtag line. Captions come from fill-in templates or the
// Gemini API with a model fallback chain; hashtags are derived from the
// product's category, title, and price signals.
package captions
