package reco

import (
	"gonum.org/v1/gonum/spatial/r3"
)

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }
func stringPtr(v string) *string { return &v }

// primary returns a primary particle of the given species ending by decay at end.
func primary(id, pdg int, end r3.Vec) Particle {
	return Particle{TrackID: id, PDG: pdg, Process: ProcessPrimary, EndProcess: ProcessDecay, End: end}
}

// decayProduct returns a decay daughter of parent with momentum (px, py, 0).
func decayProduct(id, pdg, parent int, px, py float64) Particle {
	return Particle{
		TrackID:  id,
		PDG:      pdg,
		Process:  ProcessDecay,
		ParentID: parent,
		Momentum: r3.Vec{X: px, Y: py},
		Energy:   1,
	}
}

// sigmaTemplate is the allow-all Sigma- -> n pi- template.
func sigmaTemplate() *Template {
	return &Template{
		Name:              "sigma",
		Level:             Level{Species: 3112, Process: ProcessPrimary, EndProcess: ProcessDecay},
		Daughters:         []int{2112, -211},
		DecayLengthCutoff: DefaultDecayLengthCutoff,
	}
}

func mustIndex(particles ...Particle) *AncestryIndex {
	idx, err := NewAncestryIndex(particles)
	if err != nil {
		panic(err)
	}
	return idx
}

func trackIDs(ps []*Particle) []int {
	ids := make([]int, len(ps))
	for i, p := range ps {
		ids[i] = p.TrackID
	}
	return ids
}
