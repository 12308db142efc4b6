package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/audi70r/cocostat/internal/git"
	"github.com/audi70r/cocostat/internal/report"
	"github.com/audi70r/cocostat/internal/store"
)

var (
	logFormat string
	logDBPath string
)

var logCmd = &cobra.Command{
	Use:   "log [repository...]",
	Short: "Run git log in repositories and print the parsed commits",
	Long: `Run git log with numstat output in each repository, parse it and print
the commits oldest first. Repositories default to the configured list, or
the current directory.

Examples:
  cocostat log
  cocostat log ~/src/api ~/src/web --format yaml
  cocostat log --db commits.db`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVarP(&logFormat, "format", "f", "text", "output format: text, json or yaml")
	logCmd.Flags().StringVar(&logDBPath, "db", "", "also store the commits in this bbolt database")
}

func runLog(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(logFormat)
	if err != nil {
		return err
	}

	repos, err := resolveRepos(args)
	if err != nil {
		return err
	}

	batches, err := scanCommits(cmd, repos)
	if err != nil {
		return err
	}

	if err := persist(cmd, logDBPath, batches); err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), flatten(batches), format)
}

// resolveRepos picks repositories from args, then config, then the working
// directory, and checks each is a git repository
func resolveRepos(args []string) ([]string, error) {
	repos := args
	if len(repos) == 0 {
		repos = cfg.Repositories
	}
	if len(repos) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		repos = []string{cwd}
	}

	for _, repo := range repos {
		if !git.IsGitRepo(repo) {
			return nil, fmt.Errorf("not a git repository: %s", repo)
		}
	}
	return repos, nil
}

// scanCommits runs git log in every repo and returns one batch per repo in
// repo order. Failing repositories are logged and skipped.
func scanCommits(cmd *cobra.Command, repos []string) ([]store.Batch, error) {
	estimate := 0
	for _, repo := range repos {
		if n, err := git.NewRunner(repo, logger).EstimateCommitCount(cmd.Context(), cfg.Since, cfg.Until); err == nil {
			estimate += n
		}
	}
	logger.WithFields(logrus.Fields{
		"repositories": len(repos),
		"estimate":     estimate,
	}).Info("scanning git history")

	results, err := git.ScanRepositories(cmd.Context(), repos, cfg.Since, cfg.Until, logger,
		func(p git.ScanProgress) {
			logger.WithFields(logrus.Fields{
				"repo":    p.CurrentRepo,
				"done":    p.ReposDone,
				"total":   p.ReposTotal,
				"commits": p.CommitsParsed,
			}).Debug("scanned repository")
		})
	if err != nil {
		return nil, err
	}

	var batches []store.Batch
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.WithError(res.Err).WithField("repo", res.Path).Warn("skipping repository")
			continue
		}
		batches = append(batches, store.Batch{Source: sourceName(res.Path), Commits: res.Commits})
	}
	if failed == len(results) && failed > 0 {
		return nil, fmt.Errorf("git log failed in all %d repositories", failed)
	}
	return batches, nil
}
