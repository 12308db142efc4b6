package gitlog

import "time"

// Binary is stored in FileChange counts when git reports "-" for a binary file
const Binary = -1

// Commit represents a single parsed commit block
type Commit struct {
	Revision  string       `json:"revision" yaml:"revision"`
	Author    string       `json:"author" yaml:"author"`
	Committer string       `json:"committer" yaml:"committer"`
	Branch    string       `json:"branch" yaml:"branch"`
	Timestamp int64        `json:"timestamp" yaml:"timestamp"`
	Message   string       `json:"message" yaml:"message"`
	Changes   []FileChange `json:"changes" yaml:"changes"`
}

// Time returns the commit timestamp as a time.Time
func (c Commit) Time() time.Time {
	return time.Unix(c.Timestamp, 0)
}

// clone returns a deep copy so stored commits never share a Changes array
func (c Commit) clone() Commit {
	out := c
	if c.Changes != nil {
		out.Changes = make([]FileChange, len(c.Changes))
		copy(out.Changes, c.Changes)
	}
	return out
}

// FileChange represents one numstat line. The columns are stored in line
// order: Deleted holds git's first column and Added its second, which git
// prints as lines added and lines removed. Use Additions and Deletions for
// git's meaning.
type FileChange struct {
	File    string `json:"file" yaml:"file"`
	Added   int    `json:"added" yaml:"added"`
	Deleted int    `json:"deleted" yaml:"deleted"`
	Mode    string `json:"mode" yaml:"mode"`
}

// IsBinary reports whether git printed "-" instead of line counts
func (fc FileChange) IsBinary() bool {
	return fc.Added == Binary || fc.Deleted == Binary
}

// Additions is the number of lines git reports as added
func (fc FileChange) Additions() int {
	return fc.Deleted
}

// Deletions is the number of lines git reports as removed
func (fc FileChange) Deletions() int {
	return fc.Added
}

// LineKind is the classification of a single log line
type LineKind int

const (
	LineBoundary LineKind = iota
	LineRevision
	LineChange
	// LineChangeMode covers --summary lines such as " create mode 100644 a.go".
	// They are recognized but carry no state yet.
	LineChangeMode
)

func (k LineKind) String() string {
	switch k {
	case LineRevision:
		return "revision"
	case LineChange:
		return "change"
	case LineChangeMode:
		return "change-mode"
	default:
		return "boundary"
	}
}

// State is the accumulation state of a Parser
type State int

const (
	Idle State = iota
	Accumulating
)

func (s State) String() string {
	if s == Accumulating {
		return "accumulating"
	}
	return "idle"
}
