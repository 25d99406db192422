package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/signature-reco/signature-reco/reco"
	// Registers the heppdt species table.
	_ "github.com/signature-reco/signature-reco/reco/pdg"
)

// loadAnalysisConfig reads the analysis YAML, or the built-in defaults when
// path is empty. A non-empty species name replaces the configured table.
// The result is validated with strict field checking already applied.
func loadAnalysisConfig(path, species string) (*reco.Config, error) {
	cfg := reco.DefaultConfig()
	if path != "" {
		loaded, err := reco.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		logrus.Debugf("Loaded analysis config from %s: %d signatures", path, len(cfg.Signatures))
	}
	if species != "" {
		cfg.Species.Table = species
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Signatures) == 0 {
		logrus.Warnf("No signatures configured; records will carry segmentation output only")
	}
	return cfg, nil
}
