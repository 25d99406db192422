// Package hist books per-signature distributions of matched records and
// writes them as YODA text or PNG plots.
package hist

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"

	"github.com/signature-reco/signature-reco/reco"
)

// Binning of the booked distributions.
const (
	DecayLengthBins = 50
	DecayLengthMax  = 100.0
	ImpactBins      = 40
	ImpactMax       = 20.0
	PhiBins         = 36
)

// SignatureHists holds the distributions of one signature.
type SignatureHists struct {
	Name        string
	Events      int64
	Found       int64
	DecayLength *hbook.H1D
	Impact      *hbook.H1D // signed, charged daughters only
	Phi         *hbook.H1D // charged daughters only
}

func newSignatureHists(name string) *SignatureHists {
	h := &SignatureHists{
		Name:        name,
		DecayLength: hbook.NewH1D(DecayLengthBins, 0, DecayLengthMax),
		Impact:      hbook.NewH1D(ImpactBins, -ImpactMax, ImpactMax),
		Phi:         hbook.NewH1D(PhiBins, -math.Pi, math.Pi),
	}
	h.DecayLength.Ann["name"] = name + "/decay_length"
	h.Impact.Ann["name"] = name + "/impact_parameter"
	h.Phi.Ann["name"] = name + "/phi"
	return h
}

// Efficiency is the fraction of observed events in which the signature matched.
func (h *SignatureHists) Efficiency() float64 {
	if h.Events == 0 {
		return 0
	}
	return float64(h.Found) / float64(h.Events)
}

func (h *SignatureHists) all() []*hbook.H1D {
	return []*hbook.H1D{h.DecayLength, h.Impact, h.Phi}
}

// Book accumulates histograms keyed by signature name. It is not safe for
// concurrent use; the pipeline feeds it from its single writer goroutine.
type Book struct {
	sigs map[string]*SignatureHists
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{sigs: make(map[string]*SignatureHists)}
}

// Observe fills the histograms from rec. Sentinel values are never filled.
func (b *Book) Observe(rec *reco.EventRecord) {
	for i := range rec.Signatures {
		s := &rec.Signatures[i]
		h, ok := b.sigs[s.Name]
		if !ok {
			h = newSignatureHists(s.Name)
			b.sigs[s.Name] = h
		}
		h.Events++
		if !s.Found {
			continue
		}
		h.Found++
		h.DecayLength.Fill(s.DecayLength, 1)
		for _, d := range s.Daughters {
			if d.Phi == reco.SentinelFloat {
				continue
			}
			h.Phi.Fill(d.Phi, 1)
			h.Impact.Fill(d.ImpactParameter, 1)
		}
	}
}

// Signature returns the histograms of name, or nil if it was never observed.
func (b *Book) Signature(name string) *SignatureHists {
	return b.sigs[name]
}

// Names returns the observed signature names in sorted order.
func (b *Book) Names() []string {
	names := make([]string, 0, len(b.sigs))
	for n := range b.sigs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WriteYODA writes every histogram as YODA text in name order.
func (b *Book) WriteYODA(w io.Writer) error {
	for _, name := range b.Names() {
		for _, h := range b.sigs[name].all() {
			raw, err := h.MarshalYODA()
			if err != nil {
				return fmt.Errorf("encoding %v: %w", h.Ann["name"], err)
			}
			if _, err := w.Write(raw); err != nil {
				return fmt.Errorf("writing %v: %w", h.Ann["name"], err)
			}
		}
	}
	return nil
}

// SavePlots renders one PNG per histogram into dir.
func (b *Book) SavePlots(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating plot dir: %w", err)
	}
	labels := []string{"decay length", "impact parameter", "phi"}
	for _, name := range b.Names() {
		for i, h := range b.sigs[name].all() {
			p := hplot.New()
			p.Title.Text = name
			p.X.Label.Text = labels[i]
			p.Y.Label.Text = "entries"
			p.Add(hplot.NewH1D(h))
			file := filepath.Join(dir, fmt.Sprintf("%s_%d.png", name, i))
			if err := p.Save(12*vg.Centimeter, 8*vg.Centimeter, file); err != nil {
				return fmt.Errorf("saving %s: %w", file, err)
			}
		}
	}
	return nil
}
