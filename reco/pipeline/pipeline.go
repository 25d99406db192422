// Package pipeline drives an Analyzer over an event source with a pool of
// workers and writes the records to a sink in input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/signature-reco/signature-reco/reco"
	"github.com/signature-reco/signature-reco/reco/sink"
	"github.com/signature-reco/signature-reco/reco/source"
	"github.com/signature-reco/signature-reco/reco/trace"
)

// Observer sees every record after it is written, in input order.
type Observer interface {
	Observe(rec *reco.EventRecord)
}

// Options configures Run.
type Options struct {
	// Workers is the number of concurrent analyses; <= 0 means GOMAXPROCS.
	Workers int
	// Trace selects candidate tracing. Traces are folded into Stats.Trace.
	Trace     trace.TraceLevel
	Observers []Observer
}

// Stats summarizes a run.
type Stats struct {
	Events   int64          // decoded events
	Written  int64          // records written
	Skipped  int64          // events that failed to decode
	Degraded int64          // records carrying an input-data error
	Found    map[string]int // signature name -> matched events
	Trace    *trace.TraceSummary
}

type job struct {
	seq int64
	ev  *reco.Event
}

type result struct {
	seq int64
	rec *reco.EventRecord
	tr  *trace.SearchTrace
}

// Run reads src to exhaustion, analyzes every event and writes one record per
// decoded event to dst. Record indices count decoded events from 0. Events
// that fail to decode are logged and skipped; any other source error, a sink
// error or cancellation of ctx stops the run. Run does not close src or dst.
func Run(ctx context.Context, an *reco.Analyzer, src source.Reader, dst sink.Writer, opts Options) (*Stats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	stats := &Stats{Found: make(map[string]int)}
	if opts.Trace.Enabled() {
		stats.Trace = trace.NewTraceSummary()
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, workers)
	results := make(chan result, workers)

	var events, skipped int64
	g.Go(func() error {
		defer close(jobs)
		for {
			ev, err := src.Next(gctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			var de *source.DecodeError
			if errors.As(err, &de) {
				logrus.Warnf("skipping undecodable event: %v", de)
				skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("reading events: %w", err)
			}
			select {
			case jobs <- job{seq: events, ev: ev}:
				events++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				var tr *trace.SearchTrace
				if opts.Trace.Enabled() {
					tr = trace.NewSearchTrace(trace.TraceConfig{Level: opts.Trace})
				}
				r := result{seq: j.seq, rec: an.Analyze(j.seq, j.ev, tr), tr: tr}
				select {
				case results <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int64]result)
		var next int64
		for r := range results {
			pending[r.seq] = r
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := dst.Write(p.rec); err != nil {
					return fmt.Errorf("writing record %d: %w", p.seq, err)
				}
				stats.observe(p)
				for _, o := range opts.Observers {
					o.Observe(p.rec)
				}
			}
		}
		return nil
	})

	err := g.Wait()
	stats.Events, stats.Skipped = events, skipped
	if err != nil {
		return stats, err
	}
	logrus.Infof("analyzed %d events (%d skipped, %d degraded)", stats.Events, stats.Skipped, stats.Degraded)
	return stats, nil
}

func (s *Stats) observe(r result) {
	s.Written++
	if r.rec.Error != "" {
		s.Degraded++
	}
	for _, sig := range r.rec.Signatures {
		if sig.Found {
			s.Found[sig.Name]++
		}
	}
	s.Trace.Add(r.tr)
}
