// Package reco provides the per-event analysis core for signature-reco.
//
// # Reading Guide
//
// Start with these files to understand the two analysis pipelines:
//   - particle.go, ancestry.go: truth particles and the per-event ancestry index
//   - matcher.go: the signature search over the ancestry index
//   - segment.go: kink detection and trajectory segmentation of ordered points
//   - analyzer.go: one event in, one flat EventRecord out
//
// # Architecture
//
// The reco package defines the data model, both algorithms and the interfaces
// for the thin glue around them; adapters live in sub-packages:
//   - reco/pdg/: go-hep heppdt backed species table
//   - reco/source/: event suppliers (JSON lines, LCIO)
//   - reco/sink/: record writers (JSON lines, SQLite)
//   - reco/hist/: observable histograms
//   - reco/pipeline/: parallel, order-preserving event runner
//   - reco/trace/: candidate decision trace recording
//
// Sub-packages register optional implementations via init() functions that
// set package-level factory variables (NewHEPPDTTableFunc).
//
// # Key Interfaces
//
// The extension points are single-method or small interfaces:
//   - Signature: configure from YAML, try to match one event's ancestry
//   - FilterPolicy: accept or reject a decay daughter
//   - SpeciesTable: charge and mass lookup by species code
//   - HitClassifier, SpacePointBuilder, PositionCorrector: hit-level glue
//     feeding the segmenter
//
// Nothing in this package holds state across events. An AncestryIndex, a
// MatchResult and an EventRecord belong to exactly one event; configuration
// is read-only once built and may be shared between goroutines.
package reco
