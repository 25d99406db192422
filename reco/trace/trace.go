package trace

// TraceLevel controls the verbosity of candidate tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelCandidates captures the outcome of every root candidate.
	TraceLevelCandidates TraceLevel = "candidates"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelCandidates: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether level records anything.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelCandidates
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SearchTrace collects candidate records for one event. It is not safe for
// concurrent use; each event analysis owns its own trace.
type SearchTrace struct {
	Config     TraceConfig
	Candidates []CandidateRecord
}

// NewSearchTrace creates a SearchTrace ready for recording.
func NewSearchTrace(config TraceConfig) *SearchTrace {
	return &SearchTrace{
		Config:     config,
		Candidates: make([]CandidateRecord, 0),
	}
}

// RecordCandidate appends a candidate decision record.
func (st *SearchTrace) RecordCandidate(record CandidateRecord) {
	st.Candidates = append(st.Candidates, record)
}
