package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-hep.org/x/hep/lcio"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signature-reco/signature-reco/reco"
)

// DefaultMCCollection is the conventional name of the truth collection.
const DefaultMCCollection = "MCParticle"

// Process tags synthesized from the simulator status.
const (
	processSecondary       = "secondary"
	endProcessLeftDetector = "LeftDetector"
	endProcessStopped      = "Stopped"
)

// LCIOReader reads truth particles from an LCIO file.
type LCIOReader struct {
	r          *lcio.Reader
	collection string
	n          int
}

// OpenLCIO opens an LCIO file and reads the named McParticle collection of
// each event. An empty collection name means DefaultMCCollection.
func OpenLCIO(path, collection string) (*LCIOReader, error) {
	r, err := lcio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lcio file: %w", err)
	}
	if collection == "" {
		collection = DefaultMCCollection
	}
	return &LCIOReader{r: r, collection: collection}, nil
}

// Next implements Reader.
func (r *LCIOReader) Next(ctx context.Context) (*reco.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.r.Next() {
		if err := r.r.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading lcio event: %w", err)
		}
		return nil, io.EOF
	}
	r.n++
	evt := r.r.Event()
	coll, ok := evt.Get(r.collection).(*lcio.McParticleContainer)
	if !ok {
		return nil, &DecodeError{Position: r.n, Err: fmt.Errorf("collection %q missing or not an McParticle collection", r.collection)}
	}
	ev := convertMC(coll)
	ev.Run = int(evt.RunNumber)
	ev.Number = int(evt.EventNumber)
	return ev, nil
}

// Close implements Reader.
func (r *LCIOReader) Close() error {
	return r.r.Close()
}

// convertMC maps an McParticle collection onto reco particles. Track ids are
// 1-based collection positions; the first parent is the ancestry parent.
// LCIO carries no process names, so tags are derived from the simulator status.
func convertMC(coll *lcio.McParticleContainer) *reco.Event {
	pos := make(map[*lcio.McParticle]int, len(coll.Particles))
	for i := range coll.Particles {
		pos[&coll.Particles[i]] = i
	}
	ev := &reco.Event{Particles: make([]reco.Particle, len(coll.Particles))}
	vertexSet := false
	for i := range coll.Particles {
		mc := &coll.Particles[i]
		end := mc.EndPoint()
		p := reco.Particle{
			TrackID:    i + 1,
			PDG:        int(mc.PDG),
			Momentum:   r3.Vec{X: mc.P[0], Y: mc.P[1], Z: mc.P[2]},
			Energy:     mc.Energy(),
			Process:    reco.ProcessPrimary,
			EndProcess: endProcess(mc),
			Start:      r3.Vec{X: mc.Vertex[0], Y: mc.Vertex[1], Z: mc.Vertex[2]},
			End:        r3.Vec{X: end[0], Y: end[1], Z: end[2]},
		}
		if len(mc.Parents) > 0 {
			p.Process = processSecondary
			if j, ok := pos[mc.Parents[0]]; ok {
				p.ParentID = j + 1
				if parent := &coll.Particles[j]; decayed(parent) || !parent.IsCreatedInSimulation() {
					p.Process = reco.ProcessDecay
				}
			}
		} else if !vertexSet {
			ev.PrimaryVertex = p.Start
			vertexSet = true
		}
		ev.Particles[i] = p
	}
	return ev
}

func decayed(mc *lcio.McParticle) bool {
	return mc.IsDecayedInTracker() || mc.IsDecayedInCalorimeter()
}

func endProcess(mc *lcio.McParticle) string {
	switch {
	case decayed(mc):
		return reco.ProcessDecay
	case mc.IsStopped():
		return endProcessStopped
	case mc.HasLeftDetector():
		return endProcessLeftDetector
	default:
		return ""
	}
}
