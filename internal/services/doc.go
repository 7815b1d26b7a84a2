// Package services defines shared utilities consumed by the posting workflow
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp artifact IDs, stage names, and batch
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper so failures carry
//     consistent classification (authentication vs automation vs transient).
//
// Use these helpers when wiring new workflow logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
