package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audi70r/cocostat/internal/gitlog"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "commits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	commits := []gitlog.Commit{
		{Revision: "bbbbbbb", Author: "Bob", Timestamp: 200, Message: "second",
			Changes: []gitlog.FileChange{{File: "b.go", Added: 1, Deleted: 2}}},
		{Revision: "aaaaaaa", Author: "Alice", Timestamp: 100, Message: "first",
			Changes: []gitlog.FileChange{{File: "img.png", Added: gitlog.Binary, Deleted: gitlog.Binary}}},
	}

	n, err := s.SaveCommits(ctx, "", commits)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := s.LoadCommits(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, commits[1], loaded[0])
	assert.Equal(t, commits[0], loaded[1])
}

func TestStore_SaveReplacesSameRevision(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.SaveCommits(ctx, "repo", []gitlog.Commit{{Revision: "aaaaaaa", Message: "old", Changes: []gitlog.FileChange{}}})
	require.NoError(t, err)
	_, err = s.SaveCommits(ctx, "repo", []gitlog.Commit{{Revision: "aaaaaaa", Message: "new", Changes: []gitlog.FileChange{}}})
	require.NoError(t, err)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	loaded, err := s.LoadCommits(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded[0].Message)
}

func TestStore_SameRevisionFromTwoSources(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	n, err := s.SaveBatches(ctx,
		Batch{Source: "/src/api", Commits: []gitlog.Commit{{Revision: "abc1234", Author: "Alice", Timestamp: 100, Message: "api"}}},
		Batch{Source: "/src/web", Commits: []gitlog.Commit{{Revision: "abc1234", Author: "Bob", Timestamp: 200, Message: "web"}}},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := s.LoadCommits(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "api", loaded[0].Message)
	assert.Equal(t, "web", loaded[1].Message)
}

func TestStore_SaveCancelled(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveCommits(ctx, "repo", []gitlog.Commit{{Revision: "aaaaaaa"}})

	assert.ErrorIs(t, err, context.Canceled)
	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_ParsedLogRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	parsed := gitlog.Parse("[abcdef1] Dev 1600000000 msg\n1\t2\ta.go\n-\t-\tb.png\n\n")
	_, err := s.SaveCommits(ctx, "history.log", parsed)
	require.NoError(t, err)

	loaded, err := s.LoadCommits(ctx)
	require.NoError(t, err)
	assert.Equal(t, parsed, loaded)
}
