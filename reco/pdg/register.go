// register.go wires the heppdt table into the reco package's registration
// variable (NewHEPPDTTableFunc). This init() runs when any package imports
// reco/pdg, so reco itself does not depend on the particle data table.
package pdg

import "github.com/signature-reco/signature-reco/reco"

func init() {
	reco.NewHEPPDTTableFunc = func() reco.SpeciesTable {
		return New()
	}
}
