package git

import "github.com/audi70r/cocostat/internal/gitlog"

// RepoLog is the parsed history of one repository
type RepoLog struct {
	Path    string
	Commits []gitlog.Commit
	Err     error
}

// ScanProgress reports scanning progress across repositories
type ScanProgress struct {
	ReposDone     int
	ReposTotal    int
	CommitsParsed int
	CurrentRepo   string
	Done          bool
}
