package reco

import (
	"fmt"
	"sort"
)

// Signature searches one event for a decay topology. Configure is called once
// at startup; TryMatch is then safe for concurrent use. A SignatureConfig with
// an empty Kind configures the signature as its own kind; BuildSignatures
// resolves kinds from the configuration and so always passes one.
type Signature interface {
	Name() string
	Configure(cfg SignatureConfig, species SpeciesTable) error
	TryMatch(idx *AncestryIndex, env MatchEnv) MatchResult
}

// templateSignature is a Signature driven entirely by a Template and a
// filter policy. Every bundled variant is one.
type templateSignature struct {
	kind   string
	tmpl   Template
	filter FilterPolicy
}

func (s *templateSignature) Name() string { return s.tmpl.Name }

// Template returns a copy of the configured template.
func (s *templateSignature) Template() Template { return s.tmpl.clone() }

func (s *templateSignature) Configure(cfg SignatureConfig, species SpeciesTable) error {
	if cfg.Kind == "" { // direct Configure on an instance from NewSignature
		cfg.Kind = s.kind
	}
	if cfg.Kind != s.kind {
		return configErrorf("signature %q: kind %q does not match %q", cfg.DisplayName(), cfg.Kind, s.kind)
	}
	tmpl, err := cfg.Template()
	if err != nil {
		return err
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}
	if err := cfg.Filter.Validate(); err != nil {
		return fmt.Errorf("signature %q: %w", tmpl.Name, err)
	}
	s.tmpl = tmpl
	s.filter = NewFilterPolicy(cfg.Filter, species)
	return nil
}

func (s *templateSignature) TryMatch(idx *AncestryIndex, env MatchEnv) MatchResult {
	return Search(idx, &s.tmpl, s.filter, env)
}

// signaturePresets holds the template every bundled kind starts from.
// "custom" starts empty and must be fully configured.
var signaturePresets = map[string]Template{
	// Sigma- -> n + pi-, counting only daughters created by the decay.
	"charged-sigma": {
		Level:             Level{Species: 3112, Process: ProcessPrimary, EndProcess: ProcessDecay},
		DaughterProcess:   ProcessDecay,
		Daughters:         []int{2112, -211},
		DecayLengthCutoff: DefaultDecayLengthCutoff,
	},
	// K0 -> K_S0 -> pi+ pi-.
	"kshort-pionic": {
		Level: Level{
			Species: 311, Process: ProcessPrimary, EndProcess: ProcessDecay,
			Intermediate: &Level{Species: 310, Process: ProcessDecay, EndProcess: ProcessDecay},
		},
		Daughters:         []int{211, -211},
		DecayLengthCutoff: DefaultDecayLengthCutoff,
	},
	// Lambda -> p + pi-.
	"lambda-protonic": {
		Level:             Level{Species: 3122, Process: ProcessPrimary, EndProcess: ProcessDecay},
		DaughterProcess:   ProcessDecay,
		Daughters:         []int{2212, -211},
		DecayLengthCutoff: DefaultDecayLengthCutoff,
	},
	"custom": {
		DecayLengthCutoff: DefaultDecayLengthCutoff,
	},
}

// ValidSignatures is the set of recognized signature kinds.
var ValidSignatures = map[string]bool{"charged-sigma": true, "kshort-pionic": true, "lambda-protonic": true, "custom": true}

// IsValidSignature returns true if kind is a recognized signature kind.
func IsValidSignature(kind string) bool {
	return ValidSignatures[kind]
}

// SignatureKinds returns the recognized kinds in sorted order.
func SignatureKinds() []string {
	kinds := make([]string, 0, len(ValidSignatures))
	for k := range ValidSignatures {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func presetTemplate(kind string) (Template, bool) {
	t, ok := signaturePresets[kind]
	if !ok {
		return Template{}, false
	}
	t = t.clone()
	t.Name = kind
	return t, true
}

// PresetTemplate returns a copy of the template a kind starts from.
func PresetTemplate(kind string) (Template, bool) {
	return presetTemplate(kind)
}

// NewSignature creates an unconfigured signature by kind.
// Valid kinds are defined in ValidSignatures.
// Panics on unrecognized kinds.
func NewSignature(kind string) Signature {
	if !IsValidSignature(kind) {
		panic(fmt.Sprintf("unknown signature kind %q", kind))
	}
	tmpl, _ := presetTemplate(kind)
	return &templateSignature{kind: kind, tmpl: tmpl, filter: AllowAll{}}
}

// BuildSignatures creates and configures every signature of cfg.
func BuildSignatures(cfg *Config, species SpeciesTable) ([]Signature, error) {
	sigs := make([]Signature, 0, len(cfg.Signatures))
	for i, sc := range cfg.Signatures {
		if !IsValidSignature(sc.Kind) {
			return nil, configErrorf("signatures[%d]: unknown signature kind %q", i, sc.Kind)
		}
		sig := NewSignature(sc.Kind)
		if err := sig.Configure(sc, species); err != nil {
			return nil, fmt.Errorf("signatures[%d]: %w", i, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
