// Package ledger keeps the set of release tags known to a repository.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yourorg/gitee-release/internal/version"
)

// TagSource is the part of a repository the ledger reads from.
type TagSource interface {
	FetchTags(ctx context.Context) error
	TagNames() ([]string, error)
}

// Entry is a tag whose name parses as v<semver>.
type Entry struct {
	Version version.Version
	Name    string
}

// UnknownTagError reports a previous tag that is not in the ledger.
type UnknownTagError struct {
	Name string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("previous tag %s not found", e.Name)
}

// Ledger holds release tags sorted by version, ascending.
type Ledger struct {
	entries []Entry
	byName  map[string]Entry
}

// Load refreshes tags from the remote and builds a ledger from the local tag set.
func Load(ctx context.Context, src TagSource) (*Ledger, error) {
	if err := src.FetchTags(ctx); err != nil {
		return nil, err
	}
	names, err := src.TagNames()
	if err != nil {
		return nil, err
	}
	return FromNames(names), nil
}

// FromNames builds a ledger from tag names. Names that are not v<semver> are ignored.
func FromNames(names []string) *Ledger {
	l := &Ledger{byName: make(map[string]Entry, len(names))}
	for _, name := range names {
		if !strings.HasPrefix(name, "v") {
			continue
		}
		if _, dup := l.byName[name]; dup {
			continue
		}
		v, err := version.Parse(name)
		if err != nil {
			continue
		}
		e := Entry{Version: v, Name: name}
		l.byName[name] = e
		l.entries = append(l.entries, e)
	}
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Version.Less(l.entries[j].Version)
	})
	return l
}

// Entries returns the tags in ascending version order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of release tags.
func (l *Ledger) Len() int { return len(l.entries) }

// Lookup finds a tag by exact name.
func (l *Ledger) Lookup(name string) (Entry, bool) {
	e, ok := l.byName[name]
	return e, ok
}

// ResolveBase picks the version and tag a release is computed from.
// With previous set, that exact tag must exist. Otherwise the newest tag is
// used, or 0.0.0 with an empty tag when there are none.
func (l *Ledger) ResolveBase(previous string) (version.Version, string, error) {
	if previous != "" {
		e, ok := l.Lookup(previous)
		if !ok {
			return version.Version{}, "", &UnknownTagError{Name: previous}
		}
		return e.Version, e.Name, nil
	}
	if len(l.entries) == 0 {
		return version.Zero, "", nil
	}
	latest := l.entries[len(l.entries)-1]
	return latest.Version, latest.Name, nil
}
