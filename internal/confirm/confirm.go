// Package confirm collects the human decision that gates every post. The
// upload flow stops with the publish button untouched until a Confirmer
// returns its verdict; nothing in this package can click publish itself.
package confirm

import "context"

// Decision is the operator's verdict on a prepared post.
type Decision string

const (
	Approved Decision = "approved"
	Aborted  Decision = "aborted"
)

// Request describes the prepared post awaiting review.
type Request struct {
	ProductTitle string
	Caption      string
	VideoPath    string
	ProductURL   string
}

// Confirmer blocks until a human approves or aborts the prepared post, or
// the context is done. A context error aborts the attempt.
type Confirmer interface {
	Confirm(ctx context.Context, req Request) (Decision, error)
}
