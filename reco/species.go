package reco

import (
	"fmt"
	"sort"
)

// Species is the reference data of one particle type.
type Species struct {
	PDG    int     `yaml:"pdg"`
	Name   string  `yaml:"name"`
	Charge float64 `yaml:"charge"` // units of e
	Mass   float64 `yaml:"mass"`   // GeV
}

// SpeciesTable looks up reference data by signed species code. It replaces
// any process-wide particle database and is injected into the Analyzer.
type SpeciesTable interface {
	Lookup(pdg int) (Species, bool)
}

// StaticTable is an in-memory SpeciesTable. A code missing from the table
// resolves through its charge conjugate with the charge negated.
type StaticTable map[int]Species

// NewStaticTable builds a StaticTable from the given entries.
func NewStaticTable(species ...Species) StaticTable {
	t := make(StaticTable, len(species))
	for _, s := range species {
		t[s.PDG] = s
	}
	return t
}

// Lookup implements SpeciesTable.
func (t StaticTable) Lookup(pdg int) (Species, bool) {
	if s, ok := t[pdg]; ok {
		return s, true
	}
	if s, ok := t[-pdg]; ok {
		s.PDG = pdg
		s.Charge = -s.Charge
		s.Name = "anti-" + s.Name
		return s, true
	}
	return Species{}, false
}

// Codes returns the table's species codes in ascending order.
func (t StaticTable) Codes() []int {
	codes := make([]int, 0, len(t))
	for c := range t {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// DefaultSpecies returns the species the bundled signatures touch.
func DefaultSpecies() StaticTable {
	return NewStaticTable(
		Species{PDG: 11, Name: "e-", Charge: -1, Mass: 0.000511},
		Species{PDG: 13, Name: "mu-", Charge: -1, Mass: 0.10566},
		Species{PDG: 22, Name: "gamma", Charge: 0, Mass: 0},
		Species{PDG: 111, Name: "pi0", Charge: 0, Mass: 0.13498},
		Species{PDG: 211, Name: "pi+", Charge: 1, Mass: 0.13957},
		Species{PDG: 130, Name: "K_L0", Charge: 0, Mass: 0.49761},
		Species{PDG: 310, Name: "K_S0", Charge: 0, Mass: 0.49761},
		Species{PDG: 311, Name: "K0", Charge: 0, Mass: 0.49761},
		Species{PDG: 321, Name: "K+", Charge: 1, Mass: 0.49368},
		Species{PDG: 2112, Name: "n", Charge: 0, Mass: 0.93957},
		Species{PDG: 2212, Name: "p", Charge: 1, Mass: 0.93827},
		Species{PDG: 3112, Name: "Sigma-", Charge: -1, Mass: 1.19745},
		Species{PDG: 3122, Name: "Lambda0", Charge: 0, Mass: 1.11568},
		Species{PDG: 3212, Name: "Sigma0", Charge: 0, Mass: 1.19264},
		Species{PDG: 3222, Name: "Sigma+", Charge: 1, Mass: 1.18937},
	)
}

// overlayTable answers from extra first and falls back to base.
type overlayTable struct {
	extra StaticTable
	base  SpeciesTable
}

// Overlay returns a SpeciesTable where entries of extra shadow base.
func Overlay(base SpeciesTable, extra StaticTable) SpeciesTable {
	if len(extra) == 0 {
		return base
	}
	return &overlayTable{extra: extra, base: base}
}

func (o *overlayTable) Lookup(pdg int) (Species, bool) {
	if s, ok := o.extra.Lookup(pdg); ok {
		return s, true
	}
	return o.base.Lookup(pdg)
}

// IsCharged reports whether the species carries electric charge. Species the
// table does not know are treated as neutral.
func IsCharged(table SpeciesTable, pdg int) bool {
	s, ok := table.Lookup(pdg)
	return ok && s.Charge != 0
}

// NewHEPPDTTableFunc builds the heppdt backed species table. reco/pdg sets it
// in its init(); it is nil unless that package is linked in.
var NewHEPPDTTableFunc func() SpeciesTable

// ValidSpeciesTables is the set of recognized species table names.
var ValidSpeciesTables = map[string]bool{"": true, "static": true, "heppdt": true}

// NewSpeciesTable creates a species table by name. An empty name defaults to
// DefaultSpecies.
func NewSpeciesTable(name string) (SpeciesTable, error) {
	switch name {
	case "", "static":
		return DefaultSpecies(), nil
	case "heppdt":
		if NewHEPPDTTableFunc == nil {
			return nil, fmt.Errorf("species table %q not registered; import reco/pdg", name)
		}
		return NewHEPPDTTableFunc(), nil
	default:
		return nil, configErrorf("unknown species table %q", name)
	}
}
