package changelog

import (
	"fmt"

	"github.com/yourorg/gitee-release/internal/version"
)

// ReleaseInfo is a fully resolved release description.
type ReleaseInfo struct {
	TagName string `json:"tag_name" yaml:"tag_name"`
	Name    string `json:"name" yaml:"name"`
	Body    string `json:"body" yaml:"body"`
}

// InvalidVersionError reports a manual version that does not parse.
type InvalidVersionError struct {
	Input string
	Err   error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %v", e.Input, e.Err)
}

func (e *InvalidVersionError) Unwrap() error { return e.Err }

// Result is the outcome of Generate along with how it was reached.
type Result struct {
	Info    ReleaseInfo
	Version version.Version
	Bump    Bump
	Groups  Groups
}

// Generate classifies commits, decides the next version and renders the release.
// A non-empty manualVersion replaces the computed version outright.
func Generate(base version.Version, commits []Commit, manualVersion, commitURLBase string) (Result, error) {
	groups := Group(commits)
	bump := BumpFor(groups)

	next := bump.Apply(base)
	if manualVersion != "" {
		v, err := version.Parse(manualVersion)
		if err != nil {
			return Result{}, &InvalidVersionError{Input: manualVersion, Err: err}
		}
		next = v
	}

	return Result{
		Info: ReleaseInfo{
			TagName: next.Tag(),
			Name:    "Release " + next.String(),
			Body:    RenderBody(groups, commitURLBase),
		},
		Version: next,
		Bump:    bump,
		Groups:  groups,
	}, nil
}
