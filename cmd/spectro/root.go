package main

import (
	"fmt"

	"github.com/RyanBlaney/spectro/config"
	"github.com/RyanBlaney/spectro/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	noColor    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "spectro",
	Short:        "Build and manipulate spectrogram databases",
	Long:         "spectro computes spectrograms of WAV files, stores them in sqlite databases and synthesizes new training samples from them.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		parsed, err := logging.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}

		logging.SetGlobalLogger(logging.NewDefaultLogger())
		logging.SetLevel(parsed)
		if noColor {
			logging.DisableColors()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
}
