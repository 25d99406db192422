package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/signature-reco/signature-reco/reco"
)

// presetView is the YAML rendering of one signature preset, in the shape a
// configuration file would override it.
type presetView struct {
	Kind              string            `yaml:"kind"`
	Species           int               `yaml:"species,omitempty"`
	Process           string            `yaml:"process,omitempty"`
	EndProcess        string            `yaml:"end_process,omitempty"`
	DaughterProcess   string            `yaml:"daughter_process,omitempty"`
	Daughters         []int             `yaml:"daughters,omitempty"`
	DecayLengthCutoff float64           `yaml:"decay_length_cutoff"`
	Intermediate      *reco.LevelConfig `yaml:"intermediate,omitempty"`
}

func levelView(l *reco.Level) *reco.LevelConfig {
	if l == nil {
		return nil
	}
	return &reco.LevelConfig{
		Species:      l.Species,
		Process:      l.Process,
		EndProcess:   l.EndProcess,
		Intermediate: levelView(l.Intermediate),
	}
}

// writePresets renders every signature preset, kinds in sorted order.
func writePresets(w io.Writer) error {
	views := make([]presetView, 0, len(reco.ValidSignatures))
	for _, kind := range reco.SignatureKinds() {
		tmpl, _ := reco.PresetTemplate(kind)
		views = append(views, presetView{
			Kind:              kind,
			Species:           tmpl.Species,
			Process:           tmpl.Process,
			EndProcess:        tmpl.EndProcess,
			DaughterProcess:   tmpl.DaughterProcess,
			Daughters:         tmpl.Daughters,
			DecayLengthCutoff: tmpl.DecayLengthCutoff,
			Intermediate:      levelView(tmpl.Intermediate),
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]presetView{"signatures": views}); err != nil {
		return fmt.Errorf("encoding presets: %w", err)
	}
	return enc.Close()
}

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "Print the bundled signature presets as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writePresets(os.Stdout); err != nil {
			logrus.Fatalf("Failed to print presets: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(signaturesCmd)
}
