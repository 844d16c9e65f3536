// Package changelog turns a range of commits into the next release version and
// a Markdown changelog, following a subset of Conventional Commits.
package changelog

import "strings"

// Commit is a commit as seen by the changelog: its full SHA and summary line.
type Commit struct {
	SHA     string
	Summary string
}

// Category is the changelog section a commit belongs to.
type Category int

const (
	Unclassified Category = iota
	Fix
	Feature
	Breaking
)

func (c Category) String() string {
	switch c {
	case Breaking:
		return "breaking"
	case Feature:
		return "feature"
	case Fix:
		return "fix"
	default:
		return "unclassified"
	}
}

// Classify categorizes a commit summary. Breaking markers win over any prefix.
func Classify(summary string) Category {
	switch {
	case strings.Contains(summary, "BREAKING CHANGE"), strings.Contains(summary, "!:"):
		return Breaking
	case strings.HasPrefix(summary, "feat"):
		return Feature
	case strings.HasPrefix(summary, "fix"):
		return Fix
	default:
		return Unclassified
	}
}

// Groups holds classified commits in walk order.
type Groups struct {
	Breaking []Commit
	Features []Commit
	Fixes    []Commit
}

// Group classifies every commit. Unclassified commits are dropped.
func Group(commits []Commit) Groups {
	var g Groups
	for _, c := range commits {
		switch Classify(c.Summary) {
		case Breaking:
			g.Breaking = append(g.Breaking, c)
		case Feature:
			g.Features = append(g.Features, c)
		case Fix:
			g.Fixes = append(g.Fixes, c)
		}
	}
	return g
}

// Empty reports whether no commit qualified for the changelog.
func (g Groups) Empty() bool {
	return len(g.Breaking) == 0 && len(g.Features) == 0 && len(g.Fixes) == 0
}
