package stats

import (
	"time"
)

// DateRange bounds the commits that are counted. A zero Since or Until
// leaves that side open; Until is inclusive.
type DateRange struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && t.After(r.Until) {
		return false
	}
	return true
}

// Repository is the aggregate built from one or more parsed logs
type Repository struct {
	Path      string
	DateRange DateRange

	TotalCommits int
	TotalAuthors int
	Skipped      int // commits outside DateRange

	Authors   map[string]*AuthorStats // by author name, the log format has no email
	FileStats map[string]*FileStats   // by post-rename path
	DirStats  map[string]*DirStats    // by top-level directory

	DailyActivity map[string]int // "2024-01-15" -> commits
	HourlyMatrix  [7][24]int     // weekday x hour, Monday first

	TotalAdditions int
	TotalDeletions int
	BinaryChanges  int
	Renames        int

	// lines in tracked files at HEAD, filled in by the caller
	CodebaseSize int
}

func NewRepository(path string, dateRange DateRange) *Repository {
	return &Repository{
		Path:          path,
		DateRange:     dateRange,
		Authors:       map[string]*AuthorStats{},
		FileStats:     map[string]*FileStats{},
		DirStats:      map[string]*DirStats{},
		DailyActivity: map[string]int{},
	}
}

// AuthorStats accumulates one author's commits
type AuthorStats struct {
	Name         string
	Commits      int
	Additions    int
	Deletions    int
	FilesTouched map[string]int // path -> commits touching it
	FirstCommit  time.Time
	LastCommit   time.Time
}

func NewAuthorStats(name string) *AuthorStats {
	return &AuthorStats{Name: name, FilesTouched: map[string]int{}}
}

// Net is additions minus deletions
func (a *AuthorStats) Net() int {
	return a.Additions - a.Deletions
}

// merge folds other into a
func (a *AuthorStats) merge(other *AuthorStats) {
	a.Commits += other.Commits
	a.Additions += other.Additions
	a.Deletions += other.Deletions
	for file, count := range other.FilesTouched {
		a.FilesTouched[file] += count
	}
	if a.FirstCommit.IsZero() || (!other.FirstCommit.IsZero() && other.FirstCommit.Before(a.FirstCommit)) {
		a.FirstCommit = other.FirstCommit
	}
	if other.LastCommit.After(a.LastCommit) {
		a.LastCommit = other.LastCommit
	}
}

// FileStats accumulates the changes to one path. Binary changes count as a
// touch with no lines.
type FileStats struct {
	Path         string
	TotalChanges int // Additions + Deletions
	TouchCount   int
	Authors      map[string]int // author -> commits
	Additions    int
	Deletions    int
	Binary       bool
}

func NewFileStats(path string) *FileStats {
	return &FileStats{Path: path, Authors: map[string]int{}}
}

// DirStats accumulates changes below one top-level directory
type DirStats struct {
	Path         string
	Authors      map[string]*DirAuthorStats
	TotalChanges int
	TouchCount   int
}

func NewDirStats(path string) *DirStats {
	return &DirStats{Path: path, Authors: map[string]*DirAuthorStats{}}
}

// DirAuthorStats is one author's part of a directory
type DirAuthorStats struct {
	Name    string
	Touches int // file changes, not commits
	Changes int
	Share   float64 // percent of the directory's changed lines
}

// TimelineData is a gap-free daily commit series
type TimelineData struct {
	Period     string
	Labels     []string
	Values     []int
	RollingAvg []float64
}

type HeatmapData struct {
	Matrix   [7][24]int
	MaxValue int
	Timezone *time.Location
}

// HotspotFile is a file shared by several authors, scored for risk
type HotspotFile struct {
	Path        string
	ChurnScore  float64 // percent of the busiest file's churn
	AuthorCount int
	RiskScore   float64
	Changes     int
	TouchCount  int
}

// Summary is the headline numbers of a Repository
type Summary struct {
	Commits           int
	Authors           int
	TotalAdditions    int
	TotalDeletions    int
	TotalChanges      int
	FilesTouched      int
	BinaryChanges     int
	Renames           int
	FirstCommit       time.Time
	LastCommit        time.Time
	CodebaseSize      int
	RefactoredPercent float64 // TotalChanges relative to CodebaseSize
}
