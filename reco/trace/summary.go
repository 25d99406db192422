package trace

// TraceSummary aggregates statistics from one or more SearchTraces.
type TraceSummary struct {
	TotalCandidates int
	AcceptedCount   int
	RejectedCount   int
	ByOutcome       map[Outcome]int
	BySignature     map[string]int // signature -> candidates examined
}

// NewTraceSummary returns an empty summary.
func NewTraceSummary() *TraceSummary {
	return &TraceSummary{
		ByOutcome:   make(map[Outcome]int),
		BySignature: make(map[string]int),
	}
}

// Summarize computes aggregate statistics from a SearchTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SearchTrace) *TraceSummary {
	summary := NewTraceSummary()
	summary.Add(st)
	return summary
}

// Add folds the records of st into the summary. Nil traces are ignored.
func (s *TraceSummary) Add(st *SearchTrace) {
	if st == nil {
		return
	}
	for _, c := range st.Candidates {
		s.TotalCandidates++
		if c.Outcome == OutcomeAccepted {
			s.AcceptedCount++
		} else {
			s.RejectedCount++
		}
		s.ByOutcome[c.Outcome]++
		s.BySignature[c.Signature]++
	}
}
