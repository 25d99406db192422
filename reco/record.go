package reco

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinels for record fields without a value, so tabular consumers never see
// uninitialized data.
const (
	SentinelFloat = -math.MaxFloat64
	SentinelInt   = math.MinInt
	SentinelID    = -1
)

// EventRecord is the flat per-event output of the Analyzer.
type EventRecord struct {
	RunID  string `json:"run_id"`
	Index  int64  `json:"index"`
	Run    int    `json:"run"`
	Subrun int    `json:"subrun"`
	Event  int    `json:"event"`
	// Error describes an input-data problem that degraded the event.
	Error string `json:"error,omitempty"`

	PrimaryVertex VecRecord         `json:"primary_vertex"`
	Presence      []PresenceRecord  `json:"presence"`
	Signatures    []SignatureRecord `json:"signatures"`
	Objects       []ObjectRecord    `json:"objects"`
	Segments      []SegmentRecord   `json:"segments"`
}

// VecRecord is a flattened 3-vector.
type VecRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vecRecord(v r3.Vec) VecRecord { return VecRecord{X: v.X, Y: v.Y, Z: v.Z} }

// PresenceRecord flags a primary particle of one species.
type PresenceRecord struct {
	PDG   int  `json:"pdg"`
	Found bool `json:"found"`
}

// ParticleRecord holds the identifiers and kinematics of one particle.
type ParticleRecord struct {
	TrackID    int     `json:"track_id"`
	PDG        int     `json:"pdg"`
	Energy     float64 `json:"energy"`
	Px         float64 `json:"px"`
	Py         float64 `json:"py"`
	Pz         float64 `json:"pz"`
	Process    string  `json:"process"`
	EndProcess string  `json:"end_process"`
}

// EmptyParticleRecord returns the sentinel ParticleRecord.
func EmptyParticleRecord() ParticleRecord {
	return ParticleRecord{
		TrackID: SentinelID,
		PDG:     SentinelInt,
		Energy:  SentinelFloat,
		Px:      SentinelFloat,
		Py:      SentinelFloat,
		Pz:      SentinelFloat,
	}
}

func particleRecord(p *Particle) ParticleRecord {
	return ParticleRecord{
		TrackID:    p.TrackID,
		PDG:        p.PDG,
		Energy:     p.Energy,
		Px:         p.Momentum.X,
		Py:         p.Momentum.Y,
		Pz:         p.Momentum.Z,
		Process:    p.Process,
		EndProcess: p.EndProcess,
	}
}

// DaughterRecord is one daughter slot of a signature.
type DaughterRecord struct {
	ParticleRecord
	Phi             float64 `json:"phi"`
	ImpactParameter float64 `json:"impact_parameter"`
	Elastic         int     `json:"n_elastic"`
	Inelastic       int     `json:"n_inelastic"`
	EndState        string  `json:"end_state"`
}

// EmptyDaughterRecord returns the sentinel DaughterRecord.
func EmptyDaughterRecord() DaughterRecord {
	return DaughterRecord{
		ParticleRecord:  EmptyParticleRecord(),
		Phi:             SentinelFloat,
		ImpactParameter: SentinelFloat,
		Elastic:         SentinelInt,
		Inelastic:       SentinelInt,
	}
}

// SignatureRecord is the outcome of one configured signature.
type SignatureRecord struct {
	Name        string           `json:"name"`
	Found       bool             `json:"found"`
	Chain       []int            `json:"chain"` // track ids, original root first
	Root        ParticleRecord   `json:"root"`
	DecayVertex VecRecord        `json:"decay_vertex"`
	DecayLength float64          `json:"decay_length"`
	Daughters   []DaughterRecord `json:"daughters"`
}

// EmptySignatureRecord returns the sentinel record of a signature expecting
// nDaughters daughters. Daughter slots are kept so every event has the same
// width.
func EmptySignatureRecord(name string, nDaughters int) SignatureRecord {
	rec := SignatureRecord{
		Name:        name,
		Chain:       []int{},
		Root:        EmptyParticleRecord(),
		DecayVertex: VecRecord{X: SentinelFloat, Y: SentinelFloat, Z: SentinelFloat},
		DecayLength: SentinelFloat,
		Daughters:   make([]DaughterRecord, nDaughters),
	}
	for i := range rec.Daughters {
		rec.Daughters[i] = EmptyDaughterRecord()
	}
	return rec
}

// NewSignatureRecord flattens a MatchResult.
func NewSignatureRecord(m *MatchResult, nDaughters int) SignatureRecord {
	if !m.Found {
		return EmptySignatureRecord(m.Signature, nDaughters)
	}
	rec := SignatureRecord{
		Name:        m.Signature,
		Found:       true,
		Chain:       make([]int, len(m.Chain)),
		Root:        particleRecord(m.Root),
		DecayVertex: vecRecord(m.DecayVertex),
		DecayLength: m.DecayLength,
		Daughters:   make([]DaughterRecord, len(m.Daughters)),
	}
	for i, p := range m.Chain {
		rec.Chain[i] = p.TrackID
	}
	for i, d := range m.Daughters {
		rec.Daughters[i] = DaughterRecord{
			ParticleRecord:  particleRecord(d.Particle),
			Phi:             d.Phi,
			ImpactParameter: d.ImpactParameter,
			Elastic:         d.Scatters.Elastic,
			Inelastic:       d.Scatters.Inelastic,
			EndState:        d.Scatters.EndState,
		}
	}
	return rec
}

// ObjectRecord holds the separation, azimuth and perpendicular offset of one
// reconstructed object.
type ObjectRecord struct {
	ID         int     `json:"id"`
	Separation float64 `json:"separation"`
	Phi        float64 `json:"phi"`
	Offset     float64 `json:"offset"`
	Segments   int     `json:"n_segments"`
}

// SegmentRecord is one segment of a classified hit set.
type SegmentRecord struct {
	Class  string  `json:"class"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Length float64 `json:"length"`
}
