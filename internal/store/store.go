// Package store persists parsed commits in a bbolt database keyed by source
// and revision.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/audi70r/cocostat/internal/gitlog"
)

const commitsBucket = "commits"

// Store wraps a bbolt database of commits
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open commit store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(commitsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Batch holds the commits read from one source, a log file or a repository.
// Short revisions only need to be unique within a source.
type Batch struct {
	Source  string
	Commits []gitlog.Commit
}

// commitKey joins source and revision with a NUL, which neither can contain
func commitKey(source, revision string) []byte {
	if source == "" {
		return []byte(revision)
	}
	return []byte(source + "\x00" + revision)
}

// SaveCommits stores commits from a single source. See SaveBatches.
func (s *Store) SaveCommits(ctx context.Context, source string, commits []gitlog.Commit) (int, error) {
	return s.SaveBatches(ctx, Batch{Source: source, Commits: commits})
}

// SaveBatches writes every batch in one transaction, replacing any stored
// commit with the same source and revision. It returns the number written.
func (s *Store) SaveBatches(ctx context.Context, batches ...Batch) (int, error) {
	written := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(commitsBucket))
		for _, b := range batches {
			for _, c := range b.Commits {
				if err := ctx.Err(); err != nil {
					return err
				}
				data, err := json.Marshal(c)
				if err != nil {
					return fmt.Errorf("encode commit %s: %w", c.Revision, err)
				}
				if err := bucket.Put(commitKey(b.Source, c.Revision), data); err != nil {
					return err
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// LoadCommits returns all stored commits ordered by timestamp, then revision
func (s *Store) LoadCommits(ctx context.Context) ([]gitlog.Commit, error) {
	var commits []gitlog.Commit
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(commitsBucket)).ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var c gitlog.Commit
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("decode commit %s: %w", k, err)
			}
			commits = append(commits, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(commits, func(i, j int) bool {
		if commits[i].Timestamp == commits[j].Timestamp {
			return commits[i].Revision < commits[j].Revision
		}
		return commits[i].Timestamp < commits[j].Timestamp
	})
	return commits, nil
}

// Count returns the number of stored commits
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(commitsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}
