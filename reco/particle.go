package reco

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Process tags that the bundled signatures and the scatter scan rely on.
const (
	ProcessPrimary    = "primary"
	ProcessDecay      = "Decay"
	ProcessHadElastic = "hadElastic"
)

// Particle is one truth-level simulated particle of an event.
type Particle struct {
	TrackID    int
	PDG        int    // signed species code
	Momentum   r3.Vec // GeV
	Energy     float64
	Process    string // creation process
	EndProcess string
	Start      r3.Vec // creation position
	End        r3.Vec // end position
	ParentID   int    // 0 for primaries

	// DaughterIDs are the daughter track ids declared by the supplier, if any.
	// When empty, daughters are derived from ParentID links.
	DaughterIDs []int
}

// AbsPDG returns the magnitude of the species code. Charge-conjugate species
// share it.
func (p *Particle) AbsPDG() int {
	if p.PDG < 0 {
		return -p.PDG
	}
	return p.PDG
}

// P returns the momentum magnitude.
func (p *Particle) P() float64 {
	return r3.Norm(p.Momentum)
}

// Event holds everything one event contributes to both pipelines.
type Event struct {
	Run    int
	Subrun int
	Number int

	// PrimaryVertex is the true primary interaction point; decay lengths are
	// measured from it.
	PrimaryVertex r3.Vec
	// RecoVertex is the reconstructed primary vertex. Nil when the event has
	// none, in which case every object gets sentinel observables.
	RecoVertex *r3.Vec

	Particles []Particle
	Objects   []RecoObject
	Hits      []Hit
}

// RecoObject is one reconstructed object and its ordered space points,
// already corrected for detector distortions.
type RecoObject struct {
	ID     int
	Points []r3.Vec
}
