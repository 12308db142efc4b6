package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/audi70r/cocostat/internal/gitlog"
)

// Format selects how commits are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Write encodes commits to w in the given format
func Write(w io.Writer, commits []gitlog.Commit, format Format) error {
	if commits == nil {
		commits = []gitlog.Commit{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(commits)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(commits); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, commits)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, commits []gitlog.Commit) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			c.Revision,
			c.Time().UTC().Format(time.RFC3339),
			c.Author,
			c.Message)
		for _, fc := range c.Changes {
			fmt.Fprintf(tw, "\t%s\t%s\t%s\n", formatCount(fc.Additions(), "+"), formatCount(fc.Deletions(), "-"), fc.File)
		}
	}
	fmt.Fprintf(tw, "%d commits\n", len(commits))
	return tw.Flush()
}

func formatCount(n int, sign string) string {
	if n == gitlog.Binary {
		return "bin"
	}
	return fmt.Sprintf("%s%d", sign, n)
}
