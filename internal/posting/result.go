package posting

// Outcome classifies what a posting attempt produced.
type Outcome string

const (
	// OutcomePosted means the operator confirmed publication and the event
	// was recorded as confirmed.
	OutcomePosted Outcome = "posted"
	// OutcomeAborted means the attempt was abandoned before publication;
	// the artifact is marked failed and a retry takes a fresh artifact.
	OutcomeAborted Outcome = "aborted"
	// OutcomeSkipped means no attempt was made: policy denied it, another
	// attempt was in flight, or the artifact was not eligible.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeErrored means the attempt errored.
	OutcomeErrored Outcome = "errored"
)

// Result describes a single posting attempt.
type Result struct {
	ArtifactID   int64
	EventID      int64
	Outcome      Outcome
	Reason       string
	PolicyCode   string
	ReferenceURL string
}
