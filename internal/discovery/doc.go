// Package discovery finds candidate products to promote. Sources are
// pluggable: a built-in demo catalog for credential-free runs and the shop
// partner API with signed requests. Fetched candidates pass through the
// configured price, commission, and rating filters before they reach the
// catalog.
package discovery
