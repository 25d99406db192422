package reco

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signature-reco/signature-reco/reco/trace"
)

// MatchEnv carries the per-event context of a signature search.
type MatchEnv struct {
	// Vertex is the reference point decay lengths are measured from.
	Vertex r3.Vec
	// Species resolves daughter charges; nil means DefaultSpecies.
	Species SpeciesTable
	// Trace, when non-nil, records the outcome of every root candidate.
	Trace *trace.SearchTrace
}

// DaughterMatch holds the observables of one matched daughter.
type DaughterMatch struct {
	Particle        *Particle
	Charged         bool
	Phi             float64 // momentum azimuth; SentinelFloat for neutral daughters
	ImpactParameter float64 // SentinelFloat for neutral daughters
	Scatters        ScatterSummary
}

// MatchResult is the outcome of one signature search over one event.
type MatchResult struct {
	Signature string
	Found     bool

	Chain       []*Particle // original root first, then each intermediate
	Root        *Particle   // working root: the particle whose decay matched
	Daughters   []DaughterMatch
	DecayVertex r3.Vec
	DecayLength float64
	RefPhi      float64 // azimuth of the decay vertex
}

// NoMatch returns the result of a search that found nothing.
func NoMatch(signature string) MatchResult {
	return MatchResult{
		Signature:   signature,
		DecayLength: SentinelFloat,
		RefPhi:      SentinelFloat,
		DecayVertex: r3.Vec{X: SentinelFloat, Y: SentinelFloat, Z: SentinelFloat},
	}
}

// Matched returns the working root followed by its daughters in discovery
// order. Empty when nothing was found.
func (m *MatchResult) Matched() []*Particle {
	if !m.Found {
		return nil
	}
	out := make([]*Particle, 0, 1+len(m.Daughters))
	out = append(out, m.Root)
	for _, d := range m.Daughters {
		out = append(out, d.Particle)
	}
	return out
}

// Search scans the index in insertion order and returns the first root
// candidate that satisfies the template. A nil filter accepts every daughter.
// Unresolvable ancestry references reject the candidate in hand; scanning
// continues and no error escapes.
func Search(idx *AncestryIndex, tmpl *Template, filter FilterPolicy, env MatchEnv) MatchResult {
	if filter == nil {
		filter = AllowAll{}
	}
	if env.Species == nil {
		env.Species = DefaultSpecies()
	}
	for i := 0; i < idx.Len(); i++ {
		p := idx.At(i)
		if !tmpl.Level.matches(p) {
			continue
		}
		res, outcome := tryCandidate(idx, tmpl, filter, &env, p)
		if env.Trace != nil {
			env.Trace.RecordCandidate(trace.CandidateRecord{
				Signature: tmpl.Name,
				TrackID:   p.TrackID,
				Outcome:   outcome,
			})
		}
		if res != nil {
			return *res
		}
	}
	return NoMatch(tmpl.Name)
}

func tryCandidate(idx *AncestryIndex, tmpl *Template, filter FilterPolicy, env *MatchEnv, cand *Particle) (*MatchResult, trace.Outcome) {
	chain := []*Particle{cand}
	root := cand
	for lvl := tmpl.Intermediate; lvl != nil; lvl = lvl.Intermediate {
		dtrs, err := idx.Resolve(root)
		if err != nil {
			return nil, trace.OutcomeLookup
		}
		var next *Particle
		n := 0
		for _, d := range dtrs {
			if lvl.matches(d) {
				next = d
				n++
			}
		}
		if n != 1 {
			return nil, trace.OutcomeChain
		}
		chain = append(chain, next)
		root = next
	}

	dtrs, err := idx.Resolve(root)
	if err != nil {
		return nil, trace.OutcomeLookup
	}
	if tmpl.DaughterProcess != "" {
		dtrs = keepProcess(dtrs, tmpl.DaughterProcess)
	}
	if !sameSpecies(dtrs, tmpl.Daughters) {
		return nil, trace.OutcomeTopology
	}
	for _, d := range dtrs {
		if !filter.Accept(d) {
			return nil, trace.OutcomeFilter
		}
	}
	length := r3.Norm(r3.Sub(root.End, env.Vertex))
	if length > tmpl.DecayLengthCutoff {
		return nil, trace.OutcomeDecayLength
	}

	res := &MatchResult{
		Signature:   tmpl.Name,
		Found:       true,
		Chain:       chain,
		Root:        root,
		DecayVertex: root.End,
		DecayLength: length,
		RefPhi:      math.Atan2(root.End.Y, root.End.X),
		Daughters:   make([]DaughterMatch, len(dtrs)),
	}
	for i, d := range dtrs {
		dm := DaughterMatch{
			Particle:        d,
			Phi:             SentinelFloat,
			ImpactParameter: SentinelFloat,
			Scatters:        ScanScatters(idx, d),
		}
		if IsCharged(env.Species, d.PDG) {
			p4 := fmom.NewPxPyPzE(d.Momentum.X, d.Momentum.Y, d.Momentum.Z, d.Energy)
			dm.Charged = true
			dm.Phi = p4.Phi()
			dm.ImpactParameter = length * math.Sin(dm.Phi-res.RefPhi)
		}
		res.Daughters[i] = dm
	}
	return res, trace.OutcomeAccepted
}

// keepProcess returns the daughters created by process, as a new slice.
func keepProcess(dtrs []*Particle, process string) []*Particle {
	out := make([]*Particle, 0, len(dtrs))
	for _, d := range dtrs {
		if d.Process == process {
			out = append(out, d)
		}
	}
	return out
}
