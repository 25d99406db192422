package reco

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Trajectory summarizes one reconstructed object relative to a vertex.
type Trajectory struct {
	Segments   []Segment
	Separation float64 // vertex to trajectory end
	Phi        float64 // azimuth of the trajectory end
	Offset     float64 // Separation * sin(Phi - azimuth of the trajectory start)
}

// NoTrajectory is the sentinel value for objects without a trajectory.
func NoTrajectory() Trajectory {
	return Trajectory{Separation: SentinelFloat, Phi: SentinelFloat, Offset: SentinelFloat}
}

// Found reports whether the object produced a trajectory.
func (t *Trajectory) Found() bool { return len(t.Segments) > 0 }

// TrajectoryOf segments points and, when at least one segment survives,
// measures the trajectory from the first segment's start to the last
// segment's end against vertex.
func (s Segmenter) TrajectoryOf(vertex r3.Vec, points []r3.Vec) Trajectory {
	segs := s.Segment(points)
	if len(segs) == 0 {
		return NoTrajectory()
	}
	start := points[segs[0].Start]
	end := points[segs[len(segs)-1].End]
	sep := r3.Norm(r3.Sub(end, vertex))
	// Azimuth is measured from +X toward +Y, like the matcher's decay azimuth.
	phiH := math.Atan2(start.Y, start.X)
	phi := math.Atan2(end.Y, end.X)
	return Trajectory{
		Segments:   segs,
		Separation: sep,
		Phi:        phi,
		Offset:     sep * math.Sin(phi-phiH),
	}
}
