package reco

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// HitCategory is the class code an external hit classifier assigns.
type HitCategory int

const (
	HitUnclassified HitCategory = 0
	HitHadronic     HitCategory = 2
	HitLeptonic     HitCategory = 3
)

// String returns the lower-case class name used in records.
func (c HitCategory) String() string {
	switch c {
	case HitHadronic:
		return "hadronic"
	case HitLeptonic:
		return "leptonic"
	default:
		return "unclassified"
	}
}

// Hit is one raw detector hit with its reconstructed position and whatever
// class label the upstream classifier attached.
type Hit struct {
	Position r3.Vec
	PeakTime float64
	Label    HitCategory
}

// HitClassifier maps hits to category subsets. Classification itself is an
// external service; implementations only expose its result.
type HitClassifier interface {
	Classify(hits []Hit) map[HitCategory][]Hit
}

// LabelClassifier groups hits by the label supplied with the input, keeping
// input order inside each group.
type LabelClassifier struct{}

func (LabelClassifier) Classify(hits []Hit) map[HitCategory][]Hit {
	out := make(map[HitCategory][]Hit)
	for _, h := range hits {
		out[h.Label] = append(out[h.Label], h)
	}
	return out
}

// PositionCorrector remaps a position for detector distortions.
type PositionCorrector interface {
	Correct(p r3.Vec) r3.Vec
}

// IdentityCorrector leaves positions untouched; inputs are already corrected.
type IdentityCorrector struct{}

func (IdentityCorrector) Correct(p r3.Vec) r3.Vec { return p }

// SpacePointBuilder turns a hit subset into ordered space points.
type SpacePointBuilder interface {
	Build(hits []Hit) []r3.Vec
}

// HitPositions builds one space point per hit from its corrected position.
type HitPositions struct {
	Corrector PositionCorrector
}

func (b HitPositions) Build(hits []Hit) []r3.Vec {
	corr := b.Corrector
	if corr == nil {
		corr = IdentityCorrector{}
	}
	pts := make([]r3.Vec, len(hits))
	for i, h := range hits {
		pts[i] = corr.Correct(h.Position)
	}
	return pts
}
