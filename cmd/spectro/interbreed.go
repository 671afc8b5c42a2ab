package main

import (
	"fmt"

	"github.com/RyanBlaney/spectro/logging"
	"github.com/RyanBlaney/spectro/specdb"
	"github.com/RyanBlaney/spectro/spectrogram"
	"github.com/spf13/cobra"
)

var interbreedCmd = &cobra.Command{
	Use:   "interbreed",
	Short: "Synthesize spectrograms by combining two groups",
	Long: `interbreed adds randomly drawn spectrograms of group B onto randomly
drawn spectrograms of group A and writes the composites to the output
database. Gains, axis scalings and smoothing come from the interbreed
section of the configuration.`,
	RunE: runInterbreed,
}

func init() {
	rootCmd.AddCommand(interbreedCmd)

	interbreedCmd.Flags().String("a", "", "database holding group A")
	interbreedCmd.Flags().String("a-group", "/", "group of spectrograms A")
	interbreedCmd.Flags().String("b", "", "database holding group B, defaults to --a")
	interbreedCmd.Flags().String("b-group", "/", "group of spectrograms B")
	interbreedCmd.Flags().String("output", "", "output database file")
	interbreedCmd.Flags().String("output-group", spectrogram.DefaultSinkGroup, "group composites are written to")
	interbreedCmd.Flags().Int("num", 0, "number of spectrograms to synthesize, overrides interbreed.num")
	interbreedCmd.MarkFlagRequired("a")
	interbreedCmd.MarkFlagRequired("output")
}

func runInterbreed(cmd *cobra.Command, args []string) error {
	pathA, _ := cmd.Flags().GetString("a")
	groupA, _ := cmd.Flags().GetString("a-group")
	pathB, _ := cmd.Flags().GetString("b")
	groupB, _ := cmd.Flags().GetString("b-group")
	output, _ := cmd.Flags().GetString("output")
	outputGroup, _ := cmd.Flags().GetString("output-group")
	num, _ := cmd.Flags().GetInt("num")

	if pathB == "" {
		pathB = pathA
	}
	logger := logging.WithFields(logging.Fields{"command": "interbreed"})

	specsA, err := loadGroup(pathA, groupA)
	if err != nil {
		return err
	}
	specsB, err := loadGroup(pathB, groupB)
	if err != nil {
		return err
	}

	writer, err := specdb.NewWriter(output, cfg.Database, logger)
	if err != nil {
		return err
	}

	opts := spectrogram.InterbreedOptions{
		InterbreedConfig: cfg.Interbreed,
		Sink:             writer,
		SinkGroup:        outputGroup,
		Logger:           logger,
	}
	if num > 0 {
		opts.Num = num
	}

	_, err = spectrogram.Interbreed(specsA, specsB, opts)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	logger.Info("Interbreed finished", logging.Fields{
		"group_a":      len(specsA),
		"group_b":      len(specsB),
		"spectrograms": writer.Count(),
	})
	return nil
}

func loadGroup(path, group string) ([]*spectrogram.Spectrogram, error) {
	r, err := specdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	specs, err := r.Load(group)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("group %s of %s is empty", specdb.CleanGroup(group), path)
	}
	return specs, nil
}
