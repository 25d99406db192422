package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/signature-reco/signature-reco/reco/source"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert external event formats to the JSON lines event format",
	Long:  "Convert external event formats (LCIO truth collections) to JSON lines events. Output is written to stdout for piping.",
}

// --- signature-reco convert lcio ---

var (
	lcioPath       string
	lcioCollection string
)

var convertLCIOCmd = &cobra.Command{
	Use:   "lcio",
	Short: "Convert an LCIO McParticle collection to JSON lines events",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := source.OpenLCIO(lcioPath, lcioCollection)
		if err != nil {
			logrus.Fatalf("LCIO conversion failed: %v", err)
		}
		defer src.Close()
		n, err := convertEvents(context.Background(), src, os.Stdout)
		if err != nil {
			logrus.Fatalf("LCIO conversion failed: %v", err)
		}
		logrus.Infof("Converted %d events", n)
	},
}

// convertEvents copies every decodable event of src to w as JSON lines.
func convertEvents(ctx context.Context, src source.Reader, w io.Writer) (int, error) {
	ew := source.NewEventWriter(w)
	n := 0
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		var de *source.DecodeError
		if errors.As(err, &de) {
			logrus.Warnf("Skipping event: %v", de)
			continue
		}
		if err != nil {
			return n, err
		}
		if err := ew.Write(ev); err != nil {
			return n, fmt.Errorf("writing event %d: %w", n, err)
		}
		n++
	}
	return n, ew.Flush()
}

func init() {
	convertLCIOCmd.Flags().StringVar(&lcioPath, "file", "", "Path to the LCIO file")
	convertLCIOCmd.Flags().StringVar(&lcioCollection, "collection", source.DefaultMCCollection, "McParticle collection name")
	_ = convertLCIOCmd.MarkFlagRequired("file")

	convertCmd.AddCommand(convertLCIOCmd)
	rootCmd.AddCommand(convertCmd)
}
