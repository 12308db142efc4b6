package gitlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// Match "[828fe39523]" anywhere in the line
	revisionRegex = regexp.MustCompile(`\[(?P<rev>[\d|a-f]{5,12})\]`)
	// Author is everything up to the first whitespace followed by a unix timestamp
	authorRegex = regexp.MustCompile(`(?P<author>.*?)\s\d{10}`)
	dateRegex   = regexp.MustCompile(`(?P<date>\d{10})`)
	// Numstat line: "<deleted>\t<added>\t<file>", "-" for binary files
	changeRegex = regexp.MustCompile(`(?P<deleted>[\d-]+)[\t\s]+(?P<added>[\d-]+)[\t\s]+(?P<filename>.*)`)
	// --summary line: " create mode 100644 a.go", " rename a => b (90%)"
	changeModeRegex = regexp.MustCompile(`\s(\w{1,6})\s(mode 100(\d){3})?\s?(.*)(\s\(\d{2}%\))?`)
)

// Option configures a Parser
type Option func(*Parser)

// WithLogger sets the logger used for skipped lines
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithFlushTrailing makes Parse and ParseReader emit a commit that is still
// accumulating when the input ends. Off by default: a final block without a
// boundary line is dropped.
func WithFlushTrailing(flush bool) Option {
	return func(p *Parser) {
		p.flushTrailing = flush
	}
}

// Parser is a line-oriented state machine that turns coco-format git log
// text into commits. A Parser is single-use and not safe for concurrent use.
type Parser struct {
	log           logrus.FieldLogger
	flushTrailing bool

	state   State
	current Commit
	changes changeSet
	commits []Commit
	lineNum int
}

// NewParser creates an idle parser
func NewParser(opts ...Option) *Parser {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Parser{
		log:     discard,
		changes: newChangeSet(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classify reports which kind of line the parser would treat text as
func Classify(text string) LineKind {
	kind, _ := classify(strings.TrimSuffix(text, "\r"))
	return kind
}

func classify(line string) (LineKind, []string) {
	if m := revisionRegex.FindStringSubmatch(line); m != nil {
		return LineRevision, m
	}
	if m := changeRegex.FindStringSubmatch(line); m != nil {
		return LineChange, m
	}
	if changeModeRegex.MatchString(line) {
		return LineChangeMode, nil
	}
	return LineBoundary, nil
}

// ParseLine classifies a single line and updates the parser state.
// The returned error is a *LineError; the parser remains usable after it.
func (p *Parser) ParseLine(text string) error {
	p.lineNum++
	line := strings.TrimSuffix(text, "\r")

	kind, m := classify(line)
	var err error
	switch kind {
	case LineRevision:
		err = p.startCommit(line, m[1])
	case LineChange:
		err = p.addChange(m[1], m[2], m[3])
	case LineChangeMode:
		// rename and mode-change lines are not tracked yet
	default:
		p.flush()
	}

	if err != nil {
		return &LineError{Line: p.lineNum, Text: line, Err: err}
	}
	return nil
}

func (p *Parser) startCommit(line, rev string) error {
	// A new revision marker closes the pending commit
	if p.flush() {
		p.log.WithField("line", p.lineNum).Debug("revision marker closed pending commit")
	}

	commit, err := parseHeader(line, rev)
	if err != nil {
		return err
	}

	p.current = commit
	p.state = Accumulating
	return nil
}

func (p *Parser) addChange(deletedStr, addedStr, file string) error {
	if p.state != Accumulating {
		p.log.WithFields(logrus.Fields{
			"line": p.lineNum,
			"file": file,
		}).Debug("change line outside of a commit, dropped")
		return nil
	}

	deleted, err := parseCount(deletedStr)
	if err != nil {
		return err
	}
	added, err := parseCount(addedStr)
	if err != nil {
		return err
	}

	p.changes.put(FileChange{
		File:    file,
		Added:   added,
		Deleted: deleted,
	})
	return nil
}

// flush moves the accumulated changes into the current commit and appends it
// to the output. It reports whether a commit was emitted.
func (p *Parser) flush() bool {
	if p.state != Accumulating {
		return false
	}

	p.current.Changes = p.changes.list()
	p.commits = append(p.commits, p.current.clone())

	p.changes.reset()
	p.current = Commit{}
	p.state = Idle
	return true
}

// Finish flushes a commit left accumulating at end of input. It reports
// whether one was flushed.
func (p *Parser) Finish() bool {
	return p.flush()
}

// State returns the current accumulation state
func (p *Parser) State() State {
	return p.state
}

// Commits returns copies of all commits flushed so far, in flush order
func (p *Parser) Commits() []Commit {
	out := make([]Commit, 0, len(p.commits))
	for _, c := range p.commits {
		out = append(out, c.clone())
	}
	return out
}

func (p *Parser) handle(line string) {
	if err := p.ParseLine(line); err != nil {
		p.log.WithError(err).Warn("skipping unparsable log line")
	}
}

func (p *Parser) done() []Commit {
	if p.flushTrailing && p.Finish() {
		p.log.Debug("flushed trailing commit at end of input")
	}
	return p.Commits()
}

// Parse splits text on newlines and returns the commits whose blocks were
// closed by a boundary line. Unparsable lines are logged and skipped.
func Parse(text string, opts ...Option) []Commit {
	p := NewParser(opts...)
	for _, line := range strings.Split(text, "\n") {
		p.handle(line)
	}
	return p.done()
}

// ParseReader is the streaming form of Parse. Line splitting matches Parse
// exactly, including the empty line after a trailing newline.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) ([]Commit, error) {
	p := NewParser(opts...)
	br := bufio.NewReaderSize(r, 64*1024)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read git log: %w", err)
		}
		p.handle(strings.TrimSuffix(s, "\n"))
		if err != nil {
			break
		}
	}

	return p.done(), nil
}

func parseHeader(line, rev string) (Commit, error) {
	_, rest, ok := strings.Cut(line, "["+rev+"] ")
	if !ok {
		return Commit{}, fmt.Errorf("%w: nothing after revision %s", ErrMalformedHeader, rev)
	}

	m := authorRegex.FindStringSubmatch(rest)
	if m == nil {
		return Commit{}, fmt.Errorf("%w: no author before timestamp", ErrMalformedHeader)
	}
	author := m[1]

	_, rest, ok = strings.Cut(rest, author+" ")
	if !ok {
		return Commit{}, fmt.Errorf("%w: author %q not followed by a space", ErrMalformedHeader, author)
	}

	date := dateRegex.FindString(rest)
	if date == "" {
		return Commit{}, fmt.Errorf("%w: no timestamp", ErrMalformedHeader)
	}

	_, message, ok := strings.Cut(rest, date+" ")
	if !ok {
		if !strings.HasSuffix(rest, date) {
			return Commit{}, fmt.Errorf("%w: timestamp %s not followed by message", ErrMalformedHeader, date)
		}
		message = ""
	}

	ts, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	return Commit{
		Revision:  rev,
		Author:    author,
		Timestamp: ts,
		Message:   message,
	}, nil
}

func parseCount(s string) (int, error) {
	if s == "-" {
		return Binary, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChangeCount, s)
	}
	return n, nil
}

// changeSet keeps file changes keyed by path in first-insertion order
type changeSet struct {
	index map[string]int
	items []FileChange
}

func newChangeSet() changeSet {
	return changeSet{index: make(map[string]int)}
}

func (s *changeSet) put(fc FileChange) {
	if i, ok := s.index[fc.File]; ok {
		s.items[i] = fc
		return
	}
	s.index[fc.File] = len(s.items)
	s.items = append(s.items, fc)
}

func (s *changeSet) list() []FileChange {
	out := make([]FileChange, len(s.items))
	copy(out, s.items)
	return out
}

func (s *changeSet) reset() {
	s.index = make(map[string]int)
	s.items = nil
}
