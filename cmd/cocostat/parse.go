package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/audi70r/cocostat/internal/gitlog"
	"github.com/audi70r/cocostat/internal/report"
	"github.com/audi70r/cocostat/internal/store"
)

var (
	parseFormat        string
	parseDBPath        string
	parseFlushTrailing bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]...",
	Short: "Parse saved git log output",
	Long: `Parse output of

  git log --pretty="format:[%h] %aN %at %s" --numstat --summary

from files or stdin and print the commits.

A commit is only emitted once a blank line follows it. A final newline
counts as one, so the last commit is dropped only when the log ends
without a newline, unless --flush-trailing is set. Several files are parsed in parallel and printed in argument order.

Examples:
  git log --pretty="format:[%h] %aN %at %s" --numstat | cocostat parse
  cocostat parse history.log --format json
  cocostat parse a.log b.log --db commits.db`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "text", "output format: text, json or yaml")
	parseCmd.Flags().StringVar(&parseDBPath, "db", "", "also store the commits in this bbolt database")
	parseCmd.Flags().BoolVar(&parseFlushTrailing, "flush-trailing", false, "emit the final commit even without a closing blank line")
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := report.ParseFormat(parseFormat)
	if err != nil {
		return err
	}

	flushTrailing := cfg.FlushTrailing
	if cmd.Flags().Changed("flush-trailing") {
		flushTrailing = parseFlushTrailing
	}
	opts := []gitlog.Option{
		gitlog.WithLogger(logger),
		gitlog.WithFlushTrailing(flushTrailing),
	}

	var batches []store.Batch
	if len(args) <= 1 {
		in := io.Reader(os.Stdin)
		source := ""
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
			source = sourceName(args[0])
		}
		commits, err := gitlog.ParseReader(ctx, in, opts...)
		if err != nil {
			return err
		}
		batches = append(batches, store.Batch{Source: source, Commits: commits})
	} else {
		chunks := make([]string, len(args))
		for i, name := range args {
			data, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			chunks[i] = string(data)
		}
		results, err := gitlog.ParseAll(ctx, chunks, opts...)
		if err != nil {
			return err
		}
		for i, res := range results {
			logger.WithField("file", args[i]).WithField("commits", len(res)).Debug("parsed")
			batches = append(batches, store.Batch{Source: sourceName(args[i]), Commits: res})
		}
	}

	if err := persist(cmd, parseDBPath, batches); err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), flatten(batches), format)
}

// sourceName makes a file or repository path absolute so the same input
// stored twice lands on the same keys
func sourceName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func flatten(batches []store.Batch) []gitlog.Commit {
	var commits []gitlog.Commit
	for _, b := range batches {
		commits = append(commits, b.Commits...)
	}
	return commits
}

// persist stores commits when a database path is set by flag or config
func persist(cmd *cobra.Command, flagPath string, batches []store.Batch) error {
	dbPath := cfg.DBPath
	if cmd.Flags().Changed("db") {
		dbPath = flagPath
	}
	if dbPath == "" {
		return nil
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.SaveBatches(cmd.Context(), batches...)
	if err != nil {
		return fmt.Errorf("failed to store commits: %w", err)
	}
	logger.WithField("db", dbPath).WithField("commits", n).Info("stored commits")
	return nil
}
