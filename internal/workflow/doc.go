// Package workflow orchestrates batch posting runs: it iterates every
// artifact ready to post, hands each one to the posting controller, and
// aggregates the outcomes. A per-data-directory file lock keeps runs
// single-instance so rate-limit counters are never raced.
package workflow
