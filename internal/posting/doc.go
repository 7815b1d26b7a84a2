// Package posting drives a single artifact through a posting attempt
// against the platform's web upload flow. The flow stages a draft in an
// authenticated browser, then stops at a hard human gate: nothing here
// clicks publish, and an attempt only counts as a post once an operator
// confirms they published it themselves.
package posting
