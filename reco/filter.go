package reco

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FilterPolicy decides whether a decay daughter is acceptable. Accept must be
// pure: one instance is shared by every candidate of a signature search and
// by concurrent event analyses.
type FilterPolicy interface {
	Accept(p *Particle) bool
}

// AllowAll accepts every particle.
type AllowAll struct{}

func (AllowAll) Accept(*Particle) bool { return true }

// KinematicFilter applies energy, momentum, charge-sign and end-process cuts.
// Zero-value fields do not cut.
type KinematicFilter struct {
	MinEnergy    float64
	MinMomentum  float64
	ChargeSign   *int // required sign of the charge; nil means any
	EndProcesses map[string]bool

	species SpeciesTable
}

// NewKinematicFilter creates a KinematicFilter resolving charges through species.
func NewKinematicFilter(species SpeciesTable, minEnergy, minMomentum float64, chargeSign *int, endProcesses []string) *KinematicFilter {
	f := &KinematicFilter{
		MinEnergy:   minEnergy,
		MinMomentum: minMomentum,
		ChargeSign:  chargeSign,
		species:     species,
	}
	if len(endProcesses) > 0 {
		f.EndProcesses = make(map[string]bool, len(endProcesses))
		for _, ep := range endProcesses {
			f.EndProcesses[ep] = true
		}
	}
	return f
}

// Accept implements FilterPolicy.
func (f *KinematicFilter) Accept(p *Particle) bool {
	if p.Energy < f.MinEnergy {
		return false
	}
	if p.P() < f.MinMomentum {
		return false
	}
	if f.EndProcesses != nil && !f.EndProcesses[p.EndProcess] {
		return false
	}
	if f.ChargeSign != nil {
		s, ok := f.species.Lookup(p.PDG)
		if !ok {
			return false
		}
		if sign(s.Charge) != *f.ChargeSign {
			return false
		}
	}
	return true
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// FiducialFilter accepts particles ending inside an axis-aligned box.
type FiducialFilter struct {
	Min, Max r3.Vec
}

// Accept implements FilterPolicy.
func (f *FiducialFilter) Accept(p *Particle) bool {
	e := p.End
	return e.X >= f.Min.X && e.X <= f.Max.X &&
		e.Y >= f.Min.Y && e.Y <= f.Max.Y &&
		e.Z >= f.Min.Z && e.Z <= f.Max.Z
}

// IsValidFilterPolicy returns true if name is a recognized filter policy.
func IsValidFilterPolicy(name string) bool {
	return ValidFilterPolicies[name]
}

// NewFilterPolicy creates a filter policy from its configuration.
// Valid names are defined in ValidFilterPolicies (bundle.go).
// An empty name defaults to AllowAll.
// Panics on unrecognized names; call FilterConfig.Validate first.
func NewFilterPolicy(cfg FilterConfig, species SpeciesTable) FilterPolicy {
	if !IsValidFilterPolicy(cfg.Policy) {
		panic(fmt.Sprintf("unknown filter policy %q", cfg.Policy))
	}
	switch cfg.Policy {
	case "", "allow-all":
		return AllowAll{}
	case "kinematic":
		return NewKinematicFilter(species, deref(cfg.MinEnergy, 0), deref(cfg.MinMomentum, 0), cfg.ChargeSign, cfg.EndProcesses)
	case "fiducial":
		box := cfg.Box
		if box == nil {
			box = &BoxConfig{
				Min: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
				Max: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
			}
		}
		return &FiducialFilter{
			Min: r3.Vec{X: box.Min[0], Y: box.Min[1], Z: box.Min[2]},
			Max: r3.Vec{X: box.Max[0], Y: box.Max[1], Z: box.Max[2]},
		}
	default:
		panic(fmt.Sprintf("unhandled filter policy %q", cfg.Policy))
	}
}

func deref(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
