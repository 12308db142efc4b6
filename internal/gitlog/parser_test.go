package gitlog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleCommitLog = "[828fe39523] Rossen Stoyanchev 1575388800 Consistently use releaseBody in DefaultWebClient\n" +
	"5\t3\tspring-webflux/core/main/java/org/springframework/web/reactive/function/client/ClientResponse.java\n" +
	"1\t1\tspring-webflux/core/main/java/org/springframework/web/reactive/function/client/DefaultWebClient.java\n" +
	"9\t3\tspring-webflux/core/main/java/org/springframework/web/reactive/function/client/WebClient.java\n" +
	"6\t11\tcore/docs/asciidoc/web/webflux-webclient.adoc\n"

const multiCommitLog = `[d00f0124d] Phodal Huang 1575388800 update files
0       0       core/domain/bs/BadSmellApp.go

[1d00f0124b] Phodal Huang 1575388801 update files
1       1       cmd/bs.go
0       0       core/domain/bs/BadSmellApp.go

[d00f04111b] Phodal Huang 1575388802 refactor: move bs to adapter
1       1       cmd/bs.go
5       5       core/{domain => adapter}/bs/BadSmellApp.go

[d00f01214b] Phodal Huang 1575388803 update files
1       1       cmd/bs.go
0       0       core/adapter/bs/BadSmellApp.go
`

func TestParse_SingleCommit(t *testing.T) {
	commits := Parse(singleCommitLog)

	require.Len(t, commits, 1)
	c := commits[0]
	assert.Equal(t, "828fe39523", c.Revision)
	assert.Equal(t, "Rossen Stoyanchev", c.Author)
	assert.Equal(t, int64(1575388800), c.Timestamp)
	assert.Equal(t, "Consistently use releaseBody in DefaultWebClient", c.Message)
	assert.Empty(t, c.Committer)
	assert.Empty(t, c.Branch)
	require.Len(t, c.Changes, 4)

	// first column is deleted, second is added
	assert.Equal(t, FileChange{
		File:    "spring-webflux/core/main/java/org/springframework/web/reactive/function/client/ClientResponse.java",
		Added:   3,
		Deleted: 5,
	}, c.Changes[0])
	assert.Equal(t, "core/docs/asciidoc/web/webflux-webclient.adoc", c.Changes[3].File)
	assert.Equal(t, 11, c.Changes[3].Added)
	assert.Equal(t, 6, c.Changes[3].Deleted)
}

func TestParse_MultipleCommitsInOrder(t *testing.T) {
	commits := Parse(multiCommitLog)

	require.Len(t, commits, 4)
	revs := make([]string, 0, len(commits))
	for _, c := range commits {
		revs = append(revs, c.Revision)
	}
	assert.Equal(t, []string{"d00f0124d", "1d00f0124b", "d00f04111b", "d00f01214b"}, revs)

	assert.Len(t, commits[0].Changes, 1)
	assert.Len(t, commits[1].Changes, 2)
	assert.Equal(t, "refactor: move bs to adapter", commits[2].Message)
	// rename syntax is passed through untouched
	assert.Equal(t, "core/{domain => adapter}/bs/BadSmellApp.go", commits[2].Changes[1].File)
}

func TestParse_ChangesKeepInputOrder(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 order\n" +
		"1\t1\tz.go\n" +
		"1\t1\ta.go\n" +
		"1\t1\tm.go\n" +
		"\n"

	commits := Parse(log)

	require.Len(t, commits, 1)
	var files []string
	for _, fc := range commits[0].Changes {
		files = append(files, fc.File)
	}
	assert.Equal(t, []string{"z.go", "a.go", "m.go"}, files)
}

func TestParse_DuplicatePathOverwritesInPlace(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 dup\n" +
		"1\t1\ta.go\n" +
		"2\t2\tb.go\n" +
		"7\t9\ta.go\n" +
		"\n"

	commits := Parse(log)

	require.Len(t, commits, 1)
	require.Len(t, commits[0].Changes, 2)
	assert.Equal(t, FileChange{File: "a.go", Added: 9, Deleted: 7}, commits[0].Changes[0])
	assert.Equal(t, "b.go", commits[0].Changes[1].File)
}

func TestParse_BinarySentinel(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 add image\n" +
		"-\t-\tbinary.png\n" +
		"\n"

	var commits []Commit
	require.NotPanics(t, func() { commits = Parse(log) })

	require.Len(t, commits, 1)
	require.Len(t, commits[0].Changes, 1)
	fc := commits[0].Changes[0]
	assert.Equal(t, Binary, fc.Added)
	assert.Equal(t, Binary, fc.Deleted)
	assert.True(t, fc.IsBinary())
}

func TestFileChange_AdditionsReadFirstColumn(t *testing.T) {
	commits := Parse("[abcdef1] Dev 1600000000 grow file\n" +
		"12\t2\tgrow.go\n" +
		"\n")

	require.Len(t, commits, 1)
	fc := commits[0].Changes[0]
	assert.Equal(t, 12, fc.Deleted)
	assert.Equal(t, 12, fc.Additions())
	assert.Equal(t, 2, fc.Deletions())
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(multiCommitLog)
	second := Parse(multiCommitLog)

	assert.Equal(t, first, second)
}

func TestParse_TrailingCommitWithoutBoundaryIsDropped(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 first\n" +
		"1\t1\ta.go\n" +
		"\n" +
		"[abcdef2] Dev 1600000001 second\n" +
		"1\t1\tb.go"

	commits := Parse(log)

	require.Len(t, commits, 1)
	assert.Equal(t, "abcdef1", commits[0].Revision)
}

func TestParse_FinalNewlineEndsCommit(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 first\n" +
		"1\t1\ta.go\n" +
		"\n" +
		"[abcdef2] Dev 1600000001 second\n" +
		"1\t1\tb.go\n"

	commits := Parse(log)

	require.Len(t, commits, 2)
	assert.Equal(t, "abcdef2", commits[1].Revision)
}

func TestParse_FlushTrailing(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 only\n1\t1\ta.go"

	assert.Empty(t, Parse(log))

	commits := Parse(log, WithFlushTrailing(true))
	require.Len(t, commits, 1)
	assert.Equal(t, "abcdef1", commits[0].Revision)
	assert.Len(t, commits[0].Changes, 1)
}

func TestParse_RepeatedBlankLinesDoNotDuplicate(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 once\n" +
		"1\t1\ta.go\n" +
		"\n\n\n"

	commits := Parse(log)

	assert.Len(t, commits, 1)
}

func TestParse_RevisionMarkerClosesPendingCommit(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 first\n" +
		"1\t1\ta.go\n" +
		"[abcdef2] Dev 1600000001 second\n" +
		"2\t2\tb.go\n" +
		"\n"

	commits := Parse(log)

	require.Len(t, commits, 2)
	assert.Equal(t, "abcdef1", commits[0].Revision)
	assert.Equal(t, []FileChange{{File: "a.go", Added: 1, Deleted: 1}}, commits[0].Changes)
	assert.Equal(t, "abcdef2", commits[1].Revision)
	assert.Equal(t, []FileChange{{File: "b.go", Added: 2, Deleted: 2}}, commits[1].Changes)
}

func TestParse_CommitWithoutChanges(t *testing.T) {
	commits := Parse("[abcdef1] Dev 1600000000 merge\n\n")

	require.Len(t, commits, 1)
	assert.NotNil(t, commits[0].Changes)
	assert.Empty(t, commits[0].Changes)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n"))
}

func TestParse_LeadingNoiseIsIgnored(t *testing.T) {
	log := "\n" +
		"garbage\n" +
		"3\t4\torphan.go\n" +
		"[abcdef1] Dev 1600000000 real\n" +
		"1\t1\ta.go\n" +
		"\n"

	commits := Parse(log)

	require.Len(t, commits, 1)
	// numstat lines before any header belong to no commit
	assert.Equal(t, []FileChange{{File: "a.go", Added: 1, Deleted: 1}}, commits[0].Changes)
}

func TestParse_ChangeModeLinesAreNoOps(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 summary\n" +
		"1\t0\tnew.go\n" +
		" create mode 100644 new.go\n" +
		" rename core/{domain => adapter}/bs/App.go (100%)\n" +
		"2\t0\tother.go\n" +
		"\n"

	commits := Parse(log)

	require.Len(t, commits, 1)
	assert.Len(t, commits[0].Changes, 2)
	for _, fc := range commits[0].Changes {
		assert.Empty(t, fc.Mode)
	}
}

func TestParse_CRLF(t *testing.T) {
	log := strings.ReplaceAll(singleCommitLog, "\n", "\r\n")

	commits := Parse(log)

	require.Len(t, commits, 1)
	assert.Equal(t, "Consistently use releaseBody in DefaultWebClient", commits[0].Message)
	assert.Equal(t, "core/docs/asciidoc/web/webflux-webclient.adoc", commits[0].Changes[3].File)
}

func TestParse_EmptyMessage(t *testing.T) {
	commits := Parse("[abcdef1] Dev 1600000000\n\n[abcdef2] Dev 1600000001 \n\n")

	require.Len(t, commits, 2)
	assert.Equal(t, "", commits[0].Message)
	assert.Equal(t, "", commits[1].Message)
}

func TestParse_MessageKeepsTrailingContent(t *testing.T) {
	commits := Parse("[abcdef1] Jane Q. Dev 1600000000 fix: handle 1234567890 ids [WIP]\n\n")

	require.Len(t, commits, 1)
	assert.Equal(t, "Jane Q. Dev", commits[0].Author)
	assert.Equal(t, "fix: handle 1234567890 ids [WIP]", commits[0].Message)
}

func TestParseLine_MalformedHeader(t *testing.T) {
	p := NewParser()

	err := p.ParseLine("[abcdef1] nobody wrote a timestamp")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 1, lineErr.Line)
	assert.Equal(t, Idle, p.State())

	// the skipped commit's numstat lines go nowhere
	require.NoError(t, p.ParseLine("1\t1\ta.go"))
	require.NoError(t, p.ParseLine(""))
	assert.Empty(t, p.Commits())
}

func TestParse_MalformedHeaderSkipsOnlyThatCommit(t *testing.T) {
	log := "[abcdef1] broken header\n" +
		"1\t1\ta.go\n" +
		"\n" +
		"[abcdef2] Dev 1600000001 good\n" +
		"2\t2\tb.go\n" +
		"\n"

	commits := Parse(log)

	require.Len(t, commits, 1)
	assert.Equal(t, "abcdef2", commits[0].Revision)
	assert.Equal(t, []FileChange{{File: "b.go", Added: 2, Deleted: 2}}, commits[0].Changes)
}

func TestParseLine_InvalidChangeCount(t *testing.T) {
	p := NewParser()
	require.NoError(t, p.ParseLine("[abcdef1] Dev 1600000000 counts"))

	err := p.ParseLine("1-2\t3\tbad.go")
	assert.ErrorIs(t, err, ErrInvalidChangeCount)
	assert.Equal(t, Accumulating, p.State())

	require.NoError(t, p.ParseLine("4\t5\tgood.go"))
	require.NoError(t, p.ParseLine(""))

	commits := p.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, []FileChange{{File: "good.go", Added: 5, Deleted: 4}}, commits[0].Changes)
}

func TestParser_StateTransitions(t *testing.T) {
	p := NewParser()
	assert.Equal(t, Idle, p.State())

	require.NoError(t, p.ParseLine("[abcdef1] Dev 1600000000 msg"))
	assert.Equal(t, Accumulating, p.State())

	require.NoError(t, p.ParseLine("1\t1\ta.go"))
	assert.Equal(t, Accumulating, p.State())

	require.NoError(t, p.ParseLine(""))
	assert.Equal(t, Idle, p.State())
	assert.False(t, p.Finish())
}

func TestParser_CommitsAreCopies(t *testing.T) {
	p := NewParser()
	require.NoError(t, p.ParseLine("[abcdef1] Dev 1600000000 msg"))
	require.NoError(t, p.ParseLine("1\t1\ta.go"))
	require.NoError(t, p.ParseLine(""))

	got := p.Commits()
	got[0].Changes[0].File = "mutated.go"
	got[0].Author = "someone else"

	again := p.Commits()
	assert.Equal(t, "a.go", again[0].Changes[0].File)
	assert.Equal(t, "Dev", again[0].Author)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want LineKind
	}{
		{"", LineBoundary},
		{"garbage", LineBoundary},
		{"[828fe39523] Rossen Stoyanchev 1575388800 msg", LineRevision},
		{"5\t3\tfileA.java", LineChange},
		{"-\t-\tbinary.png", LineChange},
		{"6       11      core/docs/a.adoc", LineChange},
		{" create mode 100644 new.go", LineChangeMode},
		{" delete mode 100755 run.sh", LineChangeMode},
		{"\r", LineBoundary},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestParseReader_MatchesParse(t *testing.T) {
	for _, log := range []string{singleCommitLog, multiCommitLog, "", "[abcdef1] Dev 1600000000 m\n1\t1\ta.go"} {
		got, err := ParseReader(context.Background(), strings.NewReader(log))
		require.NoError(t, err)
		assert.Equal(t, Parse(log), got)
	}
}

func TestParseReader_FlushTrailing(t *testing.T) {
	log := "[abcdef1] Dev 1600000000 m\n1\t1\ta.go"

	got, err := ParseReader(context.Background(), strings.NewReader(log), WithFlushTrailing(true))

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParseReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseReader(ctx, strings.NewReader(multiCommitLog))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseAll(t *testing.T) {
	results, err := ParseAll(context.Background(), []string{multiCommitLog, singleCommitLog, ""})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, results[0], 4)
	assert.Len(t, results[1], 1)
	assert.Empty(t, results[2])
	assert.Equal(t, Parse(singleCommitLog), results[1])
}
