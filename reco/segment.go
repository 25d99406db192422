package reco

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is a contiguous, inclusive index range of a point sequence.
type Segment struct {
	Start       int
	End         int
	ChordLength float64 // distance between the boundary points
}

// Segmenter splits ordered trajectories at kinks.
type Segmenter struct {
	// AngleToleranceDeg is the largest direction change, in degrees, that is
	// not a kink.
	AngleToleranceDeg float64
	// MinSegmentLength drops segments whose chord is shorter.
	MinSegmentLength float64
}

// DefaultSegmenter returns a Segmenter with the default tolerances.
func DefaultSegmenter() Segmenter {
	return Segmenter{AngleToleranceDeg: DefaultAngleToleranceDeg, MinSegmentLength: DefaultMinSegmentLength}
}

// Validate checks the tolerance is an angle in [0, 180] and the minimum
// length is non-negative.
func (s Segmenter) Validate() error {
	if math.IsNaN(s.AngleToleranceDeg) || s.AngleToleranceDeg < 0 || s.AngleToleranceDeg > 180 {
		return configErrorf("angle_tolerance_deg must be in [0, 180], got %f", s.AngleToleranceDeg)
	}
	if math.IsNaN(s.MinSegmentLength) || s.MinSegmentLength < 0 {
		return configErrorf("min_segment_length must be non-negative, got %f", s.MinSegmentLength)
	}
	return nil
}

// KinkAngles returns, for every interior point i, the angle in degrees
// between the incoming and outgoing directions; index 0 and n-1 are zero.
// A zero-length step carries no direction: the incoming direction is the last
// non-zero one, and a point whose outgoing step is zero-length gets angle 0,
// so a turn across repeated points lands on the point where motion resumes.
func KinkAngles(points []r3.Vec) []float64 {
	n := len(points)
	if n < 3 {
		return make([]float64, n)
	}
	angles := make([]float64, n)
	in := unit(r3.Sub(points[1], points[0]))
	for i := 1; i < n-1; i++ {
		out := unit(r3.Sub(points[i+1], points[i]))
		if out == (r3.Vec{}) {
			continue
		}
		if in != (r3.Vec{}) {
			// Rounding can push the dot product of unit vectors past ±1.
			cos := math.Max(-1, math.Min(1, r3.Dot(in, out)))
			angles[i] = math.Acos(cos) * 180 / math.Pi
		}
		in = out
	}
	return angles
}

func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// Boundaries returns the sorted segment boundaries of points: the first and
// last index plus every point whose kink angle exceeds the tolerance. Nil for
// fewer than three points.
func (s Segmenter) Boundaries(points []r3.Vec) []int {
	n := len(points)
	if n < 3 {
		return nil
	}
	angles := KinkAngles(points)
	bounds := []int{0}
	for i := 1; i < n-1; i++ {
		if angles[i] > s.AngleToleranceDeg {
			bounds = append(bounds, i)
		}
	}
	return append(bounds, n-1)
}

// Segment splits points at kinks and returns the segments whose chord is at
// least MinSegmentLength. Undersized segments are dropped, not merged into a
// neighbour. Fewer than three points yield no segments.
func (s Segmenter) Segment(points []r3.Vec) []Segment {
	bounds := s.Boundaries(points)
	if len(bounds) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]
		chord := r3.Norm(r3.Sub(points[b], points[a]))
		if chord < s.MinSegmentLength {
			continue
		}
		segs = append(segs, Segment{Start: a, End: b, ChordLength: chord})
	}
	return segs
}
