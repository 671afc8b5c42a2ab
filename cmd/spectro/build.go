package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/spectro/logging"
	"github.com/RyanBlaney/spectro/specdb"
	"github.com/RyanBlaney/spectro/spectrogram"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute spectrograms of WAV files and store them in a database",
	Long: `build walks the input directory (or takes a single file), cuts every WAV
file into segments of spectrogram.length seconds and writes their
spectrograms to the output database.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("input", "", "WAV file or directory of WAV files")
	buildCmd.Flags().String("output", "", "output database file")
	buildCmd.Flags().String("group", "", "group to write to, overrides database.group")
	buildCmd.MarkFlagRequired("input")
	buildCmd.MarkFlagRequired("output")
}

func runBuild(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	group, _ := cmd.Flags().GetString("group")

	logger := logging.WithFields(logging.Fields{"command": "build"})

	files, err := findWAVFiles(input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no WAV files found in %s", input)
	}

	loader, err := spectrogram.NewLoader(cfg.Spectrogram, &cfg.Decoder, logger)
	if err != nil {
		return err
	}

	dbConfig := cfg.Database
	if group != "" {
		dbConfig.Group = group
	}
	writer, err := specdb.NewWriter(output, dbConfig, logger)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range files {
		specs, err := loader.LoadSegments(path)
		if err != nil {
			logger.Error(err, "Failed to compute spectrograms", logging.Fields{"path": path})
			failed++
			continue
		}
		for _, s := range specs {
			if err := writer.Write(s); err != nil {
				writer.Close()
				return err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("Database built", logging.Fields{
		"files":        len(files),
		"failed":       failed,
		"spectrograms": writer.Count(),
		"ignored":      writer.Ignored(),
		"output":       strings.Join(writer.Written(), ", "),
	})
	return nil
}

// findWAVFiles returns input itself when it is a file, or every .wav file
// below it in lexical order
func findWAVFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".wav") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
