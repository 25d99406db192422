// Package trace provides candidate decision recording for signature searches.
// This package has no dependencies on reco/; it stores pure data types.
package trace

// Outcome classifies what happened to one root candidate.
type Outcome string

const (
	// OutcomeAccepted marks the candidate that produced the match.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeChain: an intermediate level did not have exactly one matching daughter.
	OutcomeChain Outcome = "chain"
	// OutcomeLookup: a daughter reference did not resolve.
	OutcomeLookup Outcome = "lookup"
	// OutcomeTopology: the daughter species differ from the expected multiset.
	OutcomeTopology Outcome = "topology"
	// OutcomeFilter: a daughter failed the filter policy.
	OutcomeFilter Outcome = "filter"
	// OutcomeDecayLength: the decay vertex lies beyond the cutoff.
	OutcomeDecayLength Outcome = "decay-length"
)

// CandidateRecord captures the decision taken on a single root candidate.
type CandidateRecord struct {
	Signature string
	TrackID   int
	Outcome   Outcome
}
