package reco

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Segmenter defaults.
const (
	DefaultAngleToleranceDeg = 10.0
	DefaultMinSegmentLength  = 5.0
)

// Config is the analysis configuration, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML": the signature preset or the
// package default applies.
type Config struct {
	Signatures []SignatureConfig `yaml:"signatures"`
	Segmenter  SegmenterConfig   `yaml:"segmenter"`
	Presence   []int             `yaml:"presence"`
	Species    SpeciesConfig     `yaml:"species"`
}

// SignatureConfig configures one signature search. Kind selects the variant
// from the registry; every other field overrides the variant's preset.
type SignatureConfig struct {
	Name              string       `yaml:"name"`
	Kind              string       `yaml:"kind"`
	Species           *int         `yaml:"species,omitempty"`
	Process           *string      `yaml:"process,omitempty"`
	EndProcess        *string      `yaml:"end_process,omitempty"`
	DaughterProcess   *string      `yaml:"daughter_process,omitempty"`
	Daughters         []int        `yaml:"daughters,omitempty"`
	DecayLengthCutoff *float64     `yaml:"decay_length_cutoff,omitempty"`
	Intermediate      *LevelConfig `yaml:"intermediate,omitempty"`
	Filter            FilterConfig `yaml:"filter"`
}

// LevelConfig is one level of a decay chain.
type LevelConfig struct {
	Species      int          `yaml:"species"`
	Process      string       `yaml:"process"`
	EndProcess   string       `yaml:"end_process"`
	Intermediate *LevelConfig `yaml:"intermediate,omitempty"`
}

// FilterConfig configures the daughter filter policy of a signature.
type FilterConfig struct {
	Policy       string     `yaml:"policy"`
	MinEnergy    *float64   `yaml:"min_energy,omitempty"`
	MinMomentum  *float64   `yaml:"min_momentum,omitempty"`
	ChargeSign   *int       `yaml:"charge_sign,omitempty"`
	EndProcesses []string   `yaml:"end_processes,omitempty"`
	Box          *BoxConfig `yaml:"box,omitempty"`
}

// BoxConfig is an axis-aligned box, in detector coordinates.
type BoxConfig struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// SegmenterConfig configures the trajectory segmenter.
type SegmenterConfig struct {
	AngleToleranceDeg *float64 `yaml:"angle_tolerance_deg,omitempty"`
	MinSegmentLength  *float64 `yaml:"min_segment_length,omitempty"`
}

// SpeciesConfig selects the species table and adds entries on top of it.
type SpeciesConfig struct {
	Table     string    `yaml:"table"`
	Overrides []Species `yaml:"overrides,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given: the
// charged-sigma and pionic K-short searches, hyperon presence flags and the
// default segmenter.
func DefaultConfig() *Config {
	return &Config{
		Signatures: []SignatureConfig{
			{Name: "charged-sigma", Kind: "charged-sigma"},
			{Name: "kshort-pionic", Kind: "kshort-pionic"},
		},
		Presence: []int{3122, 3222, 3212, 3112},
	}
}

// LoadConfig reads and parses a YAML analysis configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes with strict field checking.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing analysis config: %v", ErrConfiguration, err)
	}
	return &cfg, nil
}

// Validate checks signature kinds and names, every template and filter, the
// segmenter parameters and the species table name.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Signatures))
	for i := range c.Signatures {
		sc := &c.Signatures[i]
		prefix := fmt.Sprintf("signatures[%d]", i)
		if !IsValidSignature(sc.Kind) {
			return configErrorf("%s: unknown signature kind %q; valid: %v", prefix, sc.Kind, SignatureKinds())
		}
		name := sc.DisplayName()
		if seen[name] {
			return configErrorf("%s: duplicate signature name %q", prefix, name)
		}
		seen[name] = true
		tmpl, err := sc.Template()
		if err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		if err := tmpl.Validate(); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		if err := sc.Filter.Validate(); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	if _, err := c.Segmenter.Build(); err != nil {
		return err
	}
	if !ValidSpeciesTables[c.Species.Table] {
		return configErrorf("unknown species table %q", c.Species.Table)
	}
	for _, s := range c.Species.Overrides {
		if s.PDG == 0 {
			return configErrorf("species override %q: pdg must be non-zero", s.Name)
		}
	}
	return nil
}

// DisplayName returns Name, or Kind when Name is empty.
func (sc *SignatureConfig) DisplayName() string {
	if sc.Name != "" {
		return sc.Name
	}
	return sc.Kind
}

// Template resolves the signature's preset and applies the overrides.
func (sc *SignatureConfig) Template() (Template, error) {
	tmpl, ok := presetTemplate(sc.Kind)
	if !ok {
		return Template{}, configErrorf("unknown signature kind %q", sc.Kind)
	}
	tmpl.Name = sc.DisplayName()
	if sc.Species != nil {
		tmpl.Species = *sc.Species
	}
	if sc.Process != nil {
		tmpl.Process = *sc.Process
	}
	if sc.EndProcess != nil {
		tmpl.EndProcess = *sc.EndProcess
	}
	if sc.DaughterProcess != nil {
		tmpl.DaughterProcess = *sc.DaughterProcess
	}
	if sc.Daughters != nil {
		tmpl.Daughters = append([]int(nil), sc.Daughters...)
	}
	if sc.DecayLengthCutoff != nil {
		tmpl.DecayLengthCutoff = *sc.DecayLengthCutoff
	}
	if sc.Intermediate != nil {
		tmpl.Intermediate = sc.Intermediate.level()
	}
	return tmpl, nil
}

func (lc *LevelConfig) level() *Level {
	if lc == nil {
		return nil
	}
	return &Level{
		Species:      lc.Species,
		Process:      lc.Process,
		EndProcess:   lc.EndProcess,
		Intermediate: lc.Intermediate.level(),
	}
}

// ValidFilterPolicies is the set of recognized filter policy names.
// Shared by Validate() and NewFilterPolicy() to avoid duplication.
var ValidFilterPolicies = map[string]bool{"": true, "allow-all": true, "kinematic": true, "fiducial": true}

// Validate checks the policy name and parameter ranges.
func (f *FilterConfig) Validate() error {
	if !ValidFilterPolicies[f.Policy] {
		return configErrorf("unknown filter policy %q", f.Policy)
	}
	if f.MinEnergy != nil && (*f.MinEnergy < 0 || math.IsNaN(*f.MinEnergy)) {
		return configErrorf("min_energy must be non-negative, got %f", *f.MinEnergy)
	}
	if f.MinMomentum != nil && (*f.MinMomentum < 0 || math.IsNaN(*f.MinMomentum)) {
		return configErrorf("min_momentum must be non-negative, got %f", *f.MinMomentum)
	}
	if f.ChargeSign != nil && (*f.ChargeSign < -1 || *f.ChargeSign > 1) {
		return configErrorf("charge_sign must be -1, 0 or 1, got %d", *f.ChargeSign)
	}
	if f.Policy == "fiducial" {
		if f.Box == nil {
			return configErrorf("fiducial filter requires a box")
		}
		for i := 0; i < 3; i++ {
			if f.Box.Min[i] > f.Box.Max[i] {
				return configErrorf("box min[%d]=%f exceeds max[%d]=%f", i, f.Box.Min[i], i, f.Box.Max[i])
			}
		}
	}
	return nil
}

// Build returns the configured Segmenter with defaults applied.
func (sc SegmenterConfig) Build() (Segmenter, error) {
	seg := Segmenter{
		AngleToleranceDeg: DefaultAngleToleranceDeg,
		MinSegmentLength:  DefaultMinSegmentLength,
	}
	if sc.AngleToleranceDeg != nil {
		seg.AngleToleranceDeg = *sc.AngleToleranceDeg
	}
	if sc.MinSegmentLength != nil {
		seg.MinSegmentLength = *sc.MinSegmentLength
	}
	if err := seg.Validate(); err != nil {
		return Segmenter{}, err
	}
	return seg, nil
}
