// Package pdg exposes the go-hep particle data table as a reco.SpeciesTable.
package pdg

import (
	"go-hep.org/x/hep/heppdt"

	"github.com/signature-reco/signature-reco/reco"
)

// Table resolves species through heppdt's bundled PDG table.
type Table struct{}

// New returns a heppdt backed species table.
func New() *Table { return &Table{} }

// Lookup implements reco.SpeciesTable. Antiparticles absent from the table
// resolve through their conjugate with the charge negated.
func (*Table) Lookup(code int) (reco.Species, bool) {
	if p := heppdt.ParticleByID(heppdt.PID(code)); p != nil {
		return reco.Species{PDG: code, Name: p.Name, Charge: p.Charge, Mass: p.Mass}, true
	}
	if p := heppdt.ParticleByID(heppdt.PID(-code)); p != nil {
		return reco.Species{PDG: code, Name: "anti-" + p.Name, Charge: -p.Charge, Mass: p.Mass}, true
	}
	return reco.Species{}, false
}
