package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/gitee-release/internal/changelog"
	"github.com/yourorg/gitee-release/internal/db"
)

// Output formats for the notes and journal commands.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// WriteNotes prints a release description as markdown, json or yaml.
func WriteNotes(w io.Writer, info changelog.ReleaseInfo, format string) error {
	switch strings.ToLower(format) {
	case "", FormatMarkdown:
		_, err := fmt.Fprintf(w, "# %s\n\nTag: %s\n\n%s", info.Name, info.TagName, info.Body)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Journal lists recorded releases, newest first.
func (a *App) Journal(ctx context.Context, owner, repo string) ([]db.Release, error) {
	if a.cfg.JournalPath == "" {
		return nil, fmt.Errorf("--journal is required")
	}
	if _, err := os.Stat(a.cfg.JournalPath); err != nil {
		return nil, fmt.Errorf("journal %s: %w", a.cfg.JournalPath, err)
	}
	d, err := db.Open(a.cfg.JournalPath)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return db.NewStore(d).ListReleases(ctx, owner, repo)
}

// WriteJournal prints journal entries as a table, json or yaml.
func WriteJournal(w io.Writer, releases []db.Release, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tREPO\tTAG\tRELEASE\tARTIFACTS\tURL")
		for _, r := range releases {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				r.CreatedAt.Local().Format(time.DateTime),
				repoFull(r.Owner, r.Repo),
				r.TagName,
				r.ReleaseID,
				artifactSummary(r.Artifacts),
				r.HTMLURL,
			)
		}
		return tw.Flush()
	case FormatJSON:
		if releases == nil {
			releases = []db.Release{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(releases)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(releases); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func artifactSummary(arts []db.Artifact) string {
	if len(arts) == 0 {
		return "-"
	}
	counts := map[string]int{}
	for _, a := range arts {
		counts[a.Status]++
	}
	var parts []string
	for _, status := range []string{"uploaded", "skipped", "failed"} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return strings.Join(parts, ", ")
}
