package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/audi70r/cocostat/internal/git"
	"github.com/audi70r/cocostat/internal/logging"
	"github.com/audi70r/cocostat/internal/store"
	"github.com/audi70r/cocostat/internal/ui"
)

var statsDBPath string

var statsCmd = &cobra.Command{
	Use:   "stats [repository...]",
	Short: "Open the interactive statistics browser",
	Long: `Scan repositories (or read a commit database written by "parse --db"
or "log --db") and browse author, file, hotspot and activity statistics.

Keys: 1-6 switch views, Tab moves focus, s/r change sorting, R rescans,
q quits.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsDBPath, "db", "", "read commits from this bbolt database instead of running git (default db_path from config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	var load ui.Loader
	if dbPath := statsDatabase(cmd, args); dbPath != "" {
		load = dbLoader(dbPath)
	} else {
		repos, err := resolveRepos(args)
		if err != nil {
			return err
		}
		load = repoLoader(repos)
	}

	// the terminal belongs to tview from here on
	app := ui.NewApp(cfg, load, logging.Discard())
	return app.Run(cmd.Context())
}

// statsDatabase picks the database to browse. An explicit --db wins, then
// db_path from the config unless repositories were named on the command line.
func statsDatabase(cmd *cobra.Command, args []string) string {
	if cmd.Flags().Changed("db") {
		path, _ := cmd.Flags().GetString("db")
		return path
	}
	if len(args) > 0 || cfg == nil {
		return ""
	}
	return cfg.DBPath
}

func dbLoader(path string) ui.Loader {
	return func(ctx context.Context, onProgress func(git.ScanProgress)) (*ui.Dataset, error) {
		db, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		commits, err := db.LoadCommits(ctx)
		if err != nil {
			return nil, err
		}
		onProgress(git.ScanProgress{ReposDone: 1, ReposTotal: 1, CommitsParsed: len(commits), CurrentRepo: path, Done: true})
		return &ui.Dataset{Path: path, Commits: commits}, nil
	}
}

func repoLoader(repos []string) ui.Loader {
	return func(ctx context.Context, onProgress func(git.ScanProgress)) (*ui.Dataset, error) {
		results, err := git.ScanRepositories(ctx, repos, cfg.Since, cfg.Until, logging.Discard(), onProgress)
		if err != nil {
			return nil, err
		}

		data := &ui.Dataset{Path: repos[0]}
		if len(repos) > 1 {
			data.Path = fmt.Sprintf("%d repositories", len(repos))
		}
		for _, res := range results {
			if res.Err != nil {
				return nil, fmt.Errorf("%s: %w", res.Path, res.Err)
			}
			data.Commits = append(data.Commits, res.Commits...)

			// size is informational, a failure just leaves it out
			if size, err := git.GetCodebaseSize(ctx, res.Path); err == nil {
				data.CodebaseSize += size
			}
		}
		return data, nil
	}
}
