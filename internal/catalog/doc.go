// Package catalog persists products, rendered video artifacts, and posting
// attempt history in SQLite.
//
// Three tables back the posting lifecycle: products discovered from the
// affiliate source, artifacts rendered from selected products, and post
// events recording every posting attempt and its outcome. The event log is
// append-only with single-resolution semantics, so rate-limit policy can be
// evaluated from history alone. A partial unique index guarantees at most
// one unresolved attempt per artifact.
package catalog
