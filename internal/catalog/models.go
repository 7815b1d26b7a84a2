package catalog

import (
	"strings"
	"time"
)

// ProductStatus represents the lifecycle of a discovered product.
type ProductStatus string

const (
	ProductPending       ProductStatus = "pending"
	ProductSelected      ProductStatus = "selected"
	ProductArtifactReady ProductStatus = "artifact_ready"
)

var productStatuses = map[ProductStatus]struct{}{
	ProductPending:       {},
	ProductSelected:      {},
	ProductArtifactReady: {},
}

// ParseProductStatus converts a string into a known ProductStatus.
func ParseProductStatus(value string) (ProductStatus, bool) {
	normalized := ProductStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := productStatuses[normalized]
	return normalized, ok
}

// Product is an affiliate product persisted in SQLite. ProductKey is the
// platform-assigned identifier and is unique across the catalog; ID is the
// local row identifier.
type Product struct {
	ID             int64
	ProductKey     string
	Title          string
	Description    string
	Price          float64
	CommissionRate float64
	Rating         float64
	Category       string
	ImageURL       string
	ProductURL     string
	Status         ProductStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ArtifactStatus represents the lifecycle of a rendered promo video.
type ArtifactStatus string

const (
	ArtifactCreated ArtifactStatus = "created"
	ArtifactPosting ArtifactStatus = "posting"
	ArtifactPosted  ArtifactStatus = "posted"
	ArtifactFailed  ArtifactStatus = "failed"
)

var artifactStatuses = map[ArtifactStatus]struct{}{
	ArtifactCreated: {},
	ArtifactPosting: {},
	ArtifactPosted:  {},
	ArtifactFailed:  {},
}

// ParseArtifactStatus converts a string into a known ArtifactStatus.
func ParseArtifactStatus(value string) (ArtifactStatus, bool) {
	normalized := ArtifactStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := artifactStatuses[normalized]
	return normalized, ok
}

// Artifact is a rendered video plus its caption, ready to post.
type Artifact struct {
	ID           int64
	ProductKey   string
	VideoPath    string
	Caption      string
	Hashtags     string
	Status       ArtifactStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventOutcome represents the resolution of a posting attempt.
type EventOutcome string

const (
	// OutcomeAwaitingConfirmation marks an attempt that has not resolved
	// yet. At most one open event may exist per artifact; the schema
	// enforces this.
	OutcomeAwaitingConfirmation EventOutcome = "awaiting_confirmation"
	OutcomeConfirmed            EventOutcome = "confirmed"
	OutcomeAborted              EventOutcome = "aborted"
	OutcomeError                EventOutcome = "error"
)

// IsTerminal reports whether the outcome is final.
func (o EventOutcome) IsTerminal() bool {
	return o == OutcomeConfirmed || o == OutcomeAborted || o == OutcomeError
}

// CountsTowardLimits reports whether the outcome consumes posting budget.
// Only confirmed posts count: an attempt the human aborted, or one that
// errored before publish, did not reach the platform.
func (o EventOutcome) CountsTowardLimits() bool {
	return o == OutcomeConfirmed
}

// PostEvent is one posting attempt for an artifact. StartedAt is set when the
// attempt opens; ResolvedAt and Outcome change exactly once, when it closes.
type PostEvent struct {
	ID           int64
	ArtifactID   int64
	Platform     string
	Outcome      EventOutcome
	ReferenceURL string
	ErrorMessage string
	StartedAt    time.Time
	ResolvedAt   *time.Time
}

// Stats aggregates catalog counts for status reporting.
type Stats struct {
	ProductsTotal    int
	ProductsPending  int
	ArtifactsTotal   int
	ArtifactsCreated int
	ArtifactsPosted  int
	ArtifactsFailed  int
	PostsConfirmed   int
	PostsAborted     int
	PostsErrored     int
	PostsInFlight    int
}
