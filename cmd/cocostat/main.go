package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/audi70r/cocostat/internal/config"
	"github.com/audi70r/cocostat/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cocostat",
	Short: "CocoStat - commit history statistics from git log output",
	Long: `CocoStat parses "git log --numstat" output into commits with per-file
line counts, and turns them into author, file and activity statistics.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var loadErr error
		cfg, loadErr = config.Load(cfgFile)
		if loadErr != nil {
			if cfgFile != "" {
				return loadErr
			}
			cfg = config.Default()
		}

		var err error
		logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format, verbose)
		if err != nil {
			return err
		}
		if loadErr != nil {
			logger.WithError(loadErr).Warn("Failed to load config, using defaults")
		}
		logger.WithFields(logrus.Fields{
			"since": cfg.Since.Format("2006-01-02"),
			"until": cfg.Until.Format("2006-01-02"),
		}).Debug("configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .cocostat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`CocoStat {{.Version}}
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statsCmd)
}
