package reco

import (
	"math"
	"slices"
)

// DefaultDecayLengthCutoff is the maximum distance between the primary vertex
// and the decay vertex, in detector length units.
const DefaultDecayLengthCutoff = 50.0

// MaxChainDepth bounds the number of levels (root included) of a template.
const MaxChainDepth = 8

// Level describes one particle of a decay chain. Species is compared by
// magnitude so charge conjugates match.
type Level struct {
	Species      int
	Process      string
	EndProcess   string
	Intermediate *Level // next particle down the chain, nil at the decaying level
}

func (l *Level) matches(p *Particle) bool {
	return p.AbsPDG() == l.Species && p.Process == l.Process && p.EndProcess == l.EndProcess
}

// Template describes a decay topology. The embedded Level is the root; each
// Intermediate must be the single matching daughter of the level above. The
// deepest level is the working root whose daughters are compared to
// Daughters.
type Template struct {
	Name string
	Level

	// DaughterProcess, when set, keeps only daughters created by that
	// process before the species comparison.
	DaughterProcess   string
	Daughters         []int // expected signed species codes, as a multiset
	DecayLengthCutoff float64
}

// Depth returns the number of chain levels, root included.
func (t *Template) Depth() int {
	n := 0
	for l := &t.Level; l != nil; l = l.Intermediate {
		n++
		if n > MaxChainDepth {
			break
		}
	}
	return n
}

// Validate checks that every level is fully specified, the chain depth is
// bounded and the cutoff is a finite non-negative distance.
func (t *Template) Validate() error {
	if t.Depth() > MaxChainDepth {
		return configErrorf("%s: decay chain deeper than %d levels", t.Name, MaxChainDepth)
	}
	depth := 0
	for l := &t.Level; l != nil; l = l.Intermediate {
		if l.Species <= 0 {
			return configErrorf("%s: level %d species must be a positive code, got %d", t.Name, depth, l.Species)
		}
		if l.Process == "" || l.EndProcess == "" {
			return configErrorf("%s: level %d requires process and end_process", t.Name, depth)
		}
		depth++
	}
	if len(t.Daughters) == 0 {
		return configErrorf("%s: expected daughters must not be empty", t.Name)
	}
	if t.DecayLengthCutoff < 0 || math.IsNaN(t.DecayLengthCutoff) || math.IsInf(t.DecayLengthCutoff, 0) {
		return configErrorf("%s: decay_length_cutoff must be finite and non-negative, got %f", t.Name, t.DecayLengthCutoff)
	}
	return nil
}

// clone returns a deep copy so presets are never shared mutably.
func (t Template) clone() Template {
	t.Daughters = slices.Clone(t.Daughters)
	t.Intermediate = t.Intermediate.clone()
	return t
}

func (l *Level) clone() *Level {
	if l == nil {
		return nil
	}
	c := *l
	c.Intermediate = l.Intermediate.clone()
	return &c
}

// sameSpecies reports whether the daughters' species codes equal want as
// multisets.
func sameSpecies(daughters []*Particle, want []int) bool {
	if len(daughters) != len(want) {
		return false
	}
	got := make([]int, len(daughters))
	for i, d := range daughters {
		got[i] = d.PDG
	}
	exp := slices.Clone(want)
	slices.Sort(got)
	slices.Sort(exp)
	return slices.Equal(got, exp)
}
