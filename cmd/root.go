package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/signature-reco/signature-reco/reco"
	"github.com/signature-reco/signature-reco/reco/hist"
	"github.com/signature-reco/signature-reco/reco/pipeline"
	"github.com/signature-reco/signature-reco/reco/sink"
	"github.com/signature-reco/signature-reco/reco/source"
	"github.com/signature-reco/signature-reco/reco/trace"
)

var (
	// CLI flags for the run command
	eventsPath   string // Input event file
	inputFormat  string // Input format: jsonl or lcio
	mcCollection string // LCIO truth collection name
	configPath   string // Analysis configuration YAML; empty uses the defaults
	outPath      string // Record output path
	sinkKind     string // Record sink: jsonl or sqlite
	workers      int    // Concurrent event analyses
	traceLevel   string // Candidate trace level
	histPath     string // YODA histogram output; empty disables
	plotDir      string // PNG plot directory; empty disables
	logLevel     string // Log verbosity level
	speciesName  string // Species table override
	runID        string // Run identifier stamped on every record
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "signature-reco",
	Short: "Truth-level decay signature matching and trajectory segmentation",
}

// runOptions is everything runAnalysis needs, decoupled from the flag globals.
type runOptions struct {
	Events     string
	Format     string
	Collection string
	Config     string
	Species    string
	Out        string
	Sink       string
	Workers    int
	Trace      string
	Hist       string
	Plots      string
	RunID      string
}

// runCmd analyzes an event file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze an event file and write one record per event",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if eventsPath == "" {
			logrus.Fatalf("No event file provided. Use --events.")
		}
		if runID == "" {
			runID = uuid.NewString()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		stats, err := runAnalysis(ctx, runOptions{
			Events:     eventsPath,
			Format:     inputFormat,
			Collection: mcCollection,
			Config:     configPath,
			Species:    speciesName,
			Out:        outPath,
			Sink:       sinkKind,
			Workers:    workers,
			Trace:      traceLevel,
			Hist:       histPath,
			Plots:      plotDir,
			RunID:      runID,
		})
		if err != nil {
			logrus.Fatalf("Analysis failed: %v", err)
		}
		logrus.WithFields(logrus.Fields{
			"run_id":  runID,
			"events":  stats.Events,
			"skipped": stats.Skipped,
			"elapsed": time.Since(startTime).Round(time.Millisecond),
		}).Info("Analysis complete.")
		for name, n := range stats.Found {
			logrus.Infof("  %s: %d matched", name, n)
		}
		if stats.Trace != nil {
			logrus.Infof("  candidates: %d examined, %d accepted, by outcome %v",
				stats.Trace.TotalCandidates, stats.Trace.AcceptedCount, stats.Trace.ByOutcome)
		}
	},
}

// runAnalysis wires the configured source, analyzer, sink and histograms
// together and runs the pipeline.
func runAnalysis(ctx context.Context, opts runOptions) (*pipeline.Stats, error) {
	if !trace.IsValidTraceLevel(opts.Trace) {
		return nil, fmt.Errorf("unknown trace level %q", opts.Trace)
	}
	cfg, err := loadAnalysisConfig(opts.Config, opts.Species)
	if err != nil {
		return nil, err
	}
	species, err := reco.NewSpeciesTable(cfg.Species.Table)
	if err != nil {
		return nil, err
	}
	an, err := reco.NewAnalyzer(cfg, species, reco.WithRunID(opts.RunID))
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting analysis of %s with signatures %v, segmenter %+v", opts.Events, an.Signatures(), an.Segmenter())

	src, err := openSource(opts.Format, opts.Events, opts.Collection)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := sink.Open(opts.Sink, opts.Out)
	if err != nil {
		return nil, err
	}

	var book *hist.Book
	var observers []pipeline.Observer
	if opts.Hist != "" || opts.Plots != "" {
		book = hist.NewBook()
		observers = append(observers, book)
	}

	stats, err := pipeline.Run(ctx, an, src, dst, pipeline.Options{
		Workers:   opts.Workers,
		Trace:     trace.TraceLevel(opts.Trace),
		Observers: observers,
	})
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return stats, err
	}
	if book != nil {
		if err := writeHistograms(book, opts.Hist, opts.Plots); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// openSource opens the event file in the given format.
func openSource(format, path, collection string) (source.Reader, error) {
	switch format {
	case "", "jsonl":
		return source.OpenJSONL(path)
	case "lcio":
		return source.OpenLCIO(path, collection)
	default:
		return nil, fmt.Errorf("unknown input format %q; valid options: jsonl, lcio", format)
	}
}

func writeHistograms(book *hist.Book, yodaPath, plots string) error {
	if yodaPath != "" {
		f, err := os.Create(yodaPath)
		if err != nil {
			return fmt.Errorf("creating histogram file: %w", err)
		}
		if err := book.WriteYODA(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing histogram file: %w", err)
		}
		logrus.Infof("Histograms written to %s", yodaPath)
	}
	if plots != "" {
		if err := book.SavePlots(plots); err != nil {
			return err
		}
		logrus.Infof("Plots written to %s", plots)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&eventsPath, "events", "", "Input event file")
	runCmd.Flags().StringVar(&inputFormat, "format", "jsonl", "Input format (jsonl, lcio)")
	runCmd.Flags().StringVar(&mcCollection, "collection", source.DefaultMCCollection, "LCIO McParticle collection name")
	runCmd.Flags().StringVar(&configPath, "config", "", "Analysis configuration YAML (default: built-in signatures)")
	runCmd.Flags().StringVar(&speciesName, "species", "", "Species table (static, heppdt); overrides the configuration")
	runCmd.Flags().StringVar(&outPath, "out", "-", "Record output path; - writes jsonl to stdout")
	runCmd.Flags().StringVar(&sinkKind, "sink", "jsonl", "Record sink (jsonl, sqlite)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent event analyses (0 = GOMAXPROCS)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Candidate trace level (none, candidates)")
	runCmd.Flags().StringVar(&histPath, "hist", "", "Write per-signature histograms as YODA to this file")
	runCmd.Flags().StringVar(&plotDir, "plots", "", "Write per-signature PNG plots to this directory")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier stamped on every record (default: random UUID)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
