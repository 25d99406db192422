package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signature-reco/signature-reco/reco"
	"github.com/signature-reco/signature-reco/reco/source"
	"github.com/signature-reco/signature-reco/reco/trace"
)

// sliceReader replays items; an error item is returned in place of an event.
type sliceReader struct {
	items []any
	pos   int
}

func (r *sliceReader) Next(ctx context.Context) (*reco.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.pos >= len(r.items) {
		return nil, io.EOF
	}
	item := r.items[r.pos]
	r.pos++
	if err, ok := item.(error); ok {
		return nil, err
	}
	return item.(*reco.Event), nil
}

func (r *sliceReader) Close() error { return nil }

type memWriter struct {
	recs    []*reco.EventRecord
	failAt  int
	written int
}

func (w *memWriter) Write(rec *reco.EventRecord) error {
	w.written++
	if w.failAt > 0 && w.written == w.failAt {
		return errors.New("disk full")
	}
	w.recs = append(w.recs, rec)
	return nil
}

func (w *memWriter) Close() error { return nil }

type countingObserver struct{ n int }

func (o *countingObserver) Observe(*reco.EventRecord) { o.n++ }

// sigmaEvent holds a primary Sigma- decaying 5 units from the origin into a
// neutron and a pi-. When matching is false the pion is replaced by a pi+.
func sigmaEvent(number int, matching bool) *reco.Event {
	pion := -211
	if !matching {
		pion = 211
	}
	return &reco.Event{
		Number: number,
		Particles: []reco.Particle{
			{TrackID: 1, PDG: 3112, Process: reco.ProcessPrimary, EndProcess: reco.ProcessDecay, End: r3.Vec{X: 3, Y: 4}},
			{TrackID: 2, PDG: 2112, Process: reco.ProcessDecay, ParentID: 1, Momentum: r3.Vec{X: 1}, Energy: 1.2},
			{TrackID: 3, PDG: pion, Process: reco.ProcessDecay, ParentID: 1, Momentum: r3.Vec{X: 0.1, Y: 0.1}, Energy: 0.2},
		},
	}
}

func newAnalyzer(t *testing.T) *reco.Analyzer {
	t.Helper()
	an, err := reco.NewAnalyzer(reco.DefaultConfig(), nil)
	require.NoError(t, err)
	return an
}

func TestRun_PreservesInputOrderAcrossWorkers(t *testing.T) {
	// GIVEN many events interleaved with an undecodable one
	var items []any
	for i := 0; i < 50; i++ {
		items = append(items, sigmaEvent(i, i%2 == 0))
		if i == 10 {
			items = append(items, &source.DecodeError{Position: 12, Err: errors.New("bad json")})
		}
	}
	dst := &memWriter{}
	obs := &countingObserver{}

	// WHEN the pipeline runs with several workers
	stats, err := Run(context.Background(), newAnalyzer(t), &sliceReader{items: items}, dst,
		Options{Workers: 4, Observers: []Observer{obs}})

	// THEN records come out dense, in input order, one per decoded event
	require.NoError(t, err)
	require.Len(t, dst.recs, 50)
	for i, rec := range dst.recs {
		assert.Equal(t, int64(i), rec.Index)
		assert.Equal(t, i, rec.Event)
	}
	assert.Equal(t, int64(50), stats.Events)
	assert.Equal(t, int64(50), stats.Written)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, 25, stats.Found["charged-sigma"])
	assert.Equal(t, 50, obs.n)
	assert.Nil(t, stats.Trace)
}

func TestRun_FoldsTraces(t *testing.T) {
	items := []any{sigmaEvent(0, true), sigmaEvent(1, false)}
	stats, err := Run(context.Background(), newAnalyzer(t), &sliceReader{items: items}, &memWriter{},
		Options{Workers: 2, Trace: trace.TraceLevelCandidates})

	require.NoError(t, err)
	require.NotNil(t, stats.Trace)
	assert.Equal(t, 2, stats.Trace.BySignature["charged-sigma"])
	assert.Equal(t, 1, stats.Trace.ByOutcome[trace.OutcomeAccepted])
	assert.Equal(t, 1, stats.Trace.ByOutcome[trace.OutcomeTopology])
}

func TestRun_CountsDegradedRecords(t *testing.T) {
	ev := sigmaEvent(0, true)
	ev.Particles[2].TrackID = 2 // duplicate id
	stats, err := Run(context.Background(), newAnalyzer(t), &sliceReader{items: []any{ev}}, &memWriter{}, Options{Workers: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Degraded)
	assert.Zero(t, stats.Found["charged-sigma"])
}

func TestRun_SinkErrorStopsRun(t *testing.T) {
	var items []any
	for i := 0; i < 20; i++ {
		items = append(items, sigmaEvent(i, true))
	}
	dst := &memWriter{failAt: 3}

	_, err := Run(context.Background(), newAnalyzer(t), &sliceReader{items: items}, dst, Options{Workers: 3})

	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, dst.recs, 2)
}

func TestRun_SourceErrorStopsRun(t *testing.T) {
	items := []any{sigmaEvent(0, true), errors.New("device gone")}
	_, err := Run(context.Background(), newAnalyzer(t), &sliceReader{items: items}, &memWriter{}, Options{})
	assert.ErrorContains(t, err, "device gone")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, newAnalyzer(t), &sliceReader{items: []any{sigmaEvent(0, true)}}, &memWriter{}, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
