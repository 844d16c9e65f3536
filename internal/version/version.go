package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a semantic version ordered by (major, minor, patch).
type Version struct {
	v *semver.Version
}

// Zero is the base used when a repository has no release tags yet.
var Zero = New(0, 0, 0)

// New builds a plain MAJOR.MINOR.PATCH version.
func New(major, minor, patch uint64) Version {
	return Version{v: semver.New(major, minor, patch, "", "")}
}

// Parse parses MAJOR.MINOR.PATCH[-prerelease][+build]. A single leading "v" is stripped.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(s, "v")
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("parse version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// IsValid reports whether s parses as a version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func (v Version) sv() *semver.Version {
	if v.v == nil {
		return Zero.v
	}
	return v.v
}

func (v Version) Major() uint64 { return v.sv().Major() }
func (v Version) Minor() uint64 { return v.sv().Minor() }
func (v Version) Patch() uint64 { return v.sv().Patch() }

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	return v.sv().Compare(o.sv())
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// NextMajor increments major and resets minor and patch.
// Prerelease and build metadata are dropped.
func (v Version) NextMajor() Version {
	return New(v.Major()+1, 0, 0)
}

// NextMinor increments minor and resets patch.
func (v Version) NextMinor() Version {
	return New(v.Major(), v.Minor()+1, 0)
}

// NextPatch increments patch. Unlike semver.IncPatch it always advances,
// even on a prerelease base.
func (v Version) NextPatch() Version {
	return New(v.Major(), v.Minor(), v.Patch()+1)
}

// String renders the version without a "v" prefix.
func (v Version) String() string {
	return v.sv().String()
}

// Tag renders the version as a "v"-prefixed tag name.
func (v Version) Tag() string {
	return "v" + v.String()
}
