package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signature-reco/signature-reco/reco"
)

// maxLineBytes bounds one JSON event line.
const maxLineBytes = 64 << 20

// eventJSON is the wire form of one event line.
type eventJSON struct {
	Run           int            `json:"run"`
	Subrun        int            `json:"subrun"`
	Event         int            `json:"event"`
	PrimaryVertex [3]float64     `json:"primary_vertex"`
	RecoVertex    *[3]float64    `json:"reco_vertex,omitempty"`
	Particles     []particleJSON `json:"particles"`
	Objects       []objectJSON   `json:"objects,omitempty"`
	Hits          []hitJSON      `json:"hits,omitempty"`
}

type particleJSON struct {
	TrackID    int        `json:"track_id"`
	PDG        int        `json:"pdg"`
	Momentum   [3]float64 `json:"momentum"`
	Energy     float64    `json:"energy"`
	Process    string     `json:"process"`
	EndProcess string     `json:"end_process"`
	Start      [3]float64 `json:"start"`
	End        [3]float64 `json:"end"`
	ParentID   int        `json:"parent_id"`
	Daughters  []int      `json:"daughters,omitempty"`
}

type objectJSON struct {
	ID     int          `json:"id"`
	Points [][3]float64 `json:"points"`
}

type hitJSON struct {
	Position [3]float64 `json:"position"`
	PeakTime float64    `json:"peak_time,omitempty"`
	Label    int        `json:"label"`
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

func arr(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func (e *eventJSON) event() *reco.Event {
	ev := &reco.Event{
		Run:           e.Run,
		Subrun:        e.Subrun,
		Number:        e.Event,
		PrimaryVertex: vec(e.PrimaryVertex),
		Particles:     make([]reco.Particle, len(e.Particles)),
		Objects:       make([]reco.RecoObject, len(e.Objects)),
		Hits:          make([]reco.Hit, len(e.Hits)),
	}
	if e.RecoVertex != nil {
		v := vec(*e.RecoVertex)
		ev.RecoVertex = &v
	}
	for i, p := range e.Particles {
		ev.Particles[i] = reco.Particle{
			TrackID:     p.TrackID,
			PDG:         p.PDG,
			Momentum:    vec(p.Momentum),
			Energy:      p.Energy,
			Process:     p.Process,
			EndProcess:  p.EndProcess,
			Start:       vec(p.Start),
			End:         vec(p.End),
			ParentID:    p.ParentID,
			DaughterIDs: p.Daughters,
		}
	}
	for i, o := range e.Objects {
		pts := make([]r3.Vec, len(o.Points))
		for j, pt := range o.Points {
			pts[j] = vec(pt)
		}
		ev.Objects[i] = reco.RecoObject{ID: o.ID, Points: pts}
	}
	for i, h := range e.Hits {
		ev.Hits[i] = reco.Hit{Position: vec(h.Position), PeakTime: h.PeakTime, Label: reco.HitCategory(h.Label)}
	}
	return ev
}

func encodeEvent(ev *reco.Event) *eventJSON {
	e := &eventJSON{
		Run:           ev.Run,
		Subrun:        ev.Subrun,
		Event:         ev.Number,
		PrimaryVertex: arr(ev.PrimaryVertex),
		Particles:     make([]particleJSON, len(ev.Particles)),
	}
	if ev.RecoVertex != nil {
		v := arr(*ev.RecoVertex)
		e.RecoVertex = &v
	}
	for i, p := range ev.Particles {
		e.Particles[i] = particleJSON{
			TrackID:    p.TrackID,
			PDG:        p.PDG,
			Momentum:   arr(p.Momentum),
			Energy:     p.Energy,
			Process:    p.Process,
			EndProcess: p.EndProcess,
			Start:      arr(p.Start),
			End:        arr(p.End),
			ParentID:   p.ParentID,
			Daughters:  p.DaughterIDs,
		}
	}
	for _, o := range ev.Objects {
		oj := objectJSON{ID: o.ID, Points: make([][3]float64, len(o.Points))}
		for j, pt := range o.Points {
			oj.Points[j] = arr(pt)
		}
		e.Objects = append(e.Objects, oj)
	}
	for _, h := range ev.Hits {
		e.Hits = append(e.Hits, hitJSON{Position: arr(h.Position), PeakTime: h.PeakTime, Label: int(h.Label)})
	}
	return e
}

// JSONLReader reads one JSON event per line. Blank lines are skipped.
type JSONLReader struct {
	sc   *bufio.Scanner
	c    io.Closer
	line int
}

// NewJSONLReader reads events from r. Close closes r if it is an io.Closer.
func NewJSONLReader(r io.Reader) *JSONLReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	jr := &JSONLReader{sc: sc}
	if c, ok := r.(io.Closer); ok {
		jr.c = c
	}
	return jr
}

// OpenJSONL opens a JSON lines event file.
func OpenJSONL(path string) (*JSONLReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening events: %w", err)
	}
	return NewJSONLReader(f), nil
}

// Next implements Reader.
func (r *JSONLReader) Next(ctx context.Context) (*reco.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				return nil, fmt.Errorf("reading events: %w", err)
			}
			return nil, io.EOF
		}
		r.line++
		line := bytes.TrimSpace(r.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e eventJSON
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&e); err != nil {
			return nil, &DecodeError{Position: r.line, Err: err}
		}
		return e.event(), nil
	}
}

// Close implements Reader.
func (r *JSONLReader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// EventWriter writes events in the format JSONLReader reads.
type EventWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

// NewEventWriter writes JSON event lines to w. Call Flush when done.
func NewEventWriter(w io.Writer) *EventWriter {
	bw := bufio.NewWriter(w)
	return &EventWriter{bw: bw, enc: json.NewEncoder(bw)}
}

// Write appends one event line.
func (w *EventWriter) Write(ev *reco.Event) error {
	return w.enc.Encode(encodeEvent(ev))
}

// Flush flushes buffered lines.
func (w *EventWriter) Flush() error {
	return w.bw.Flush()
}
