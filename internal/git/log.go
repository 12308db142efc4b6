package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/audi70r/cocostat/internal/gitlog"
)

// LogFormat is the pretty format understood by gitlog.Parser
const LogFormat = "format:[%h] %aN %at %s"

// Runner invokes git for a single repository
type Runner struct {
	RepoPath string
	Logger   logrus.FieldLogger
}

// NewRunner creates a git runner for the given repository path
func NewRunner(repoPath string, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{RepoPath: repoPath, Logger: logger}
}

// LogArgs builds the git log arguments for the given date range
func LogArgs(since, until time.Time) []string {
	args := []string{
		"log",
		"--pretty=" + LogFormat,
		"--numstat",
		"--summary",
		"--reverse",
	}

	if !since.IsZero() {
		args = append(args, "--since="+since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(time.RFC3339))
	}
	return args
}

// EstimateCommitCount returns an estimate of commits in the date range
func (r *Runner) EstimateCommitCount(ctx context.Context, since, until time.Time) (int, error) {
	args := []string{"rev-list", "--count", "HEAD"}

	if !since.IsZero() {
		args = append(args, "--since="+since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(time.RFC3339))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.RepoPath

	output, err := cmd.Output()
	if err != nil {
		return -1, fmt.Errorf("git rev-list in %s: %w", r.RepoPath, err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return -1, fmt.Errorf("parse commit count %q: %w", strings.TrimSpace(string(output)), err)
	}

	return count, nil
}

// Log runs git log and parses its output.
// git never ends its output with a blank line, so the last commit is
// flushed explicitly.
func (r *Runner) Log(ctx context.Context, since, until time.Time) ([]gitlog.Commit, error) {
	cmd := exec.CommandContext(ctx, "git", LogArgs(since, until)...)
	cmd.Dir = r.RepoPath

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start git log in %s: %w", r.RepoPath, err)
	}

	log := r.Logger.WithField("repo", r.RepoPath)
	commits, parseErr := gitlog.ParseReader(ctx, stdout,
		gitlog.WithLogger(log),
		gitlog.WithFlushTrailing(true),
	)

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("git log in %s: %w (stderr: %s)", r.RepoPath, err, strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return nil, parseErr
	}

	log.WithField("commits", len(commits)).Debug("parsed git log")
	return commits, nil
}

// ScanRepositories runs Log for every repository in parallel, each with its
// own parser. A failing repository is reported in its RepoLog and does not
// stop the others. Results keep the order of repos.
func ScanRepositories(ctx context.Context, repos []string, since, until time.Time,
	logger logrus.FieldLogger, onProgress func(ScanProgress)) ([]RepoLog, error) {

	results := make([]RepoLog, len(repos))

	var (
		mu       sync.Mutex
		done     int
		nCommits int
	)
	report := func(repo string, commits int) {
		mu.Lock()
		defer mu.Unlock()
		done++
		nCommits += commits
		if onProgress != nil {
			onProgress(ScanProgress{
				ReposDone:     done,
				ReposTotal:    len(repos),
				CommitsParsed: nCommits,
				CurrentRepo:   repo,
				Done:          done == len(repos),
			})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, repo := range repos {
		g.Go(func() error {
			commits, err := NewRunner(repo, logger).Log(ctx, since, until)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			results[i] = RepoLog{Path: repo, Commits: commits, Err: err}
			report(repo, len(commits))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// IsGitRepo checks if the path is a valid git repository
func IsGitRepo(path string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path
	return cmd.Run() == nil
}

// GetCodebaseSize returns total lines in the tracked files of the repository
func GetCodebaseSize(ctx context.Context, repoPath string) (int, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "-z")
	cmd.Dir = repoPath

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("git ls-files in %s: %w", repoPath, err)
	}

	totalLines := 0
	for _, file := range strings.Split(string(output), "\x00") {
		if file == "" {
			continue
		}
		n, err := countLines(filepath.Join(repoPath, file))
		if err != nil {
			continue // deleted in the worktree, or unreadable
		}
		totalLines += n
	}

	return totalLines, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lines := 0
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		lines += bytes.Count(buf[:n], []byte{'\n'})
		if err != nil {
			break
		}
	}
	return lines, nil
}
