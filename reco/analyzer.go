package reco

import (
	"github.com/sirupsen/logrus"

	"github.com/signature-reco/signature-reco/reco/trace"
)

// Analyzer turns one Event into one EventRecord. It holds only read-only
// configuration and is safe for concurrent use.
type Analyzer struct {
	runID      string
	signatures []Signature
	nDaughters []int // expected daughter count per signature
	segmenter  Segmenter
	presence   []int
	species    SpeciesTable
	classifier HitClassifier
	builder    SpacePointBuilder
}

// AnalyzerOption customizes an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRunID stamps every record with id.
func WithRunID(id string) AnalyzerOption {
	return func(a *Analyzer) { a.runID = id }
}

// WithHitClassifier replaces the LabelClassifier.
func WithHitClassifier(c HitClassifier) AnalyzerOption {
	return func(a *Analyzer) { a.classifier = c }
}

// WithSpacePointBuilder replaces the HitPositions builder.
func WithSpacePointBuilder(b SpacePointBuilder) AnalyzerOption {
	return func(a *Analyzer) { a.builder = b }
}

// NewAnalyzer validates cfg and builds its signatures against species.
func NewAnalyzer(cfg *Config, species SpeciesTable, opts ...AnalyzerOption) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if species == nil {
		species = DefaultSpecies()
	}
	species = Overlay(species, NewStaticTable(cfg.Species.Overrides...))
	sigs, err := BuildSignatures(cfg, species)
	if err != nil {
		return nil, err
	}
	seg, err := cfg.Segmenter.Build()
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		signatures: sigs,
		nDaughters: make([]int, len(sigs)),
		segmenter:  seg,
		presence:   append([]int(nil), cfg.Presence...),
		species:    species,
		classifier: LabelClassifier{},
		builder:    HitPositions{Corrector: IdentityCorrector{}},
	}
	for i, sc := range cfg.Signatures {
		tmpl, _ := sc.Template()
		a.nDaughters[i] = len(tmpl.Daughters)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Signatures returns the configured signature names in order.
func (a *Analyzer) Signatures() []string {
	names := make([]string, len(a.signatures))
	for i, s := range a.signatures {
		names[i] = s.Name()
	}
	return names
}

// Segmenter returns the configured segmenter.
func (a *Analyzer) Segmenter() Segmenter { return a.segmenter }

// Analyze runs both pipelines on ev. tr may be nil. An input-data error in
// the ancestry degrades the truth part of the record to sentinels; the
// segmentation part is still filled.
func (a *Analyzer) Analyze(index int64, ev *Event, tr *trace.SearchTrace) *EventRecord {
	rec := &EventRecord{
		RunID:         a.runID,
		Index:         index,
		Run:           ev.Run,
		Subrun:        ev.Subrun,
		Event:         ev.Number,
		PrimaryVertex: vecRecord(ev.PrimaryVertex),
		Presence:      make([]PresenceRecord, len(a.presence)),
		Signatures:    make([]SignatureRecord, len(a.signatures)),
	}
	for i, code := range a.presence {
		rec.Presence[i] = PresenceRecord{PDG: code}
	}

	idx, err := NewAncestryIndex(ev.Particles)
	if err != nil {
		logrus.WithFields(logrus.Fields{"event": ev.Number, "index": index}).Warnf("ancestry rejected: %v", err)
		rec.Error = err.Error()
		for i, s := range a.signatures {
			rec.Signatures[i] = EmptySignatureRecord(s.Name(), a.nDaughters[i])
		}
	} else {
		for i, found := range PresenceFlags(idx, a.presence) {
			rec.Presence[i].Found = found
		}
		env := MatchEnv{Vertex: ev.PrimaryVertex, Species: a.species, Trace: tr}
		for i, s := range a.signatures {
			m := s.TryMatch(idx, env)
			if m.Found {
				logrus.Debugf("event %d: %s matched root track %d, decay length %.2f", ev.Number, m.Signature, m.Root.TrackID, m.DecayLength)
			}
			rec.Signatures[i] = NewSignatureRecord(&m, a.nDaughters[i])
		}
	}

	rec.Objects = a.objects(ev)
	rec.Segments = a.classSegments(ev)
	return rec
}

func (a *Analyzer) objects(ev *Event) []ObjectRecord {
	out := make([]ObjectRecord, len(ev.Objects))
	for i, obj := range ev.Objects {
		traj := NoTrajectory()
		if ev.RecoVertex != nil {
			traj = a.segmenter.TrajectoryOf(*ev.RecoVertex, obj.Points)
		}
		out[i] = ObjectRecord{
			ID:         obj.ID,
			Separation: traj.Separation,
			Phi:        traj.Phi,
			Offset:     traj.Offset,
			Segments:   len(traj.Segments),
		}
	}
	return out
}

// classSegments segments the hadronic then the leptonic space points.
func (a *Analyzer) classSegments(ev *Event) []SegmentRecord {
	if len(ev.Hits) == 0 {
		return []SegmentRecord{}
	}
	classes := a.classifier.Classify(ev.Hits)
	out := []SegmentRecord{}
	for _, cat := range []HitCategory{HitHadronic, HitLeptonic} {
		pts := a.builder.Build(classes[cat])
		for _, s := range a.segmenter.Segment(pts) {
			out = append(out, SegmentRecord{Class: cat.String(), Start: s.Start, End: s.End, Length: s.ChordLength})
		}
	}
	return out
}
