package changelog

import "github.com/yourorg/gitee-release/internal/version"

// BumpPatchWhenEmpty controls a range with no feat, fix or breaking commits.
// When true such a release still advances the patch component. When false the
// base version is returned unchanged.
const BumpPatchWhenEmpty = true

// Bump is the size of a version increment.
type Bump int

const (
	BumpNone Bump = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return "none"
	}
}

// BumpFor returns the bump implied by the most severe group present.
func BumpFor(g Groups) Bump {
	switch {
	case len(g.Breaking) > 0:
		return BumpMajor
	case len(g.Features) > 0:
		return BumpMinor
	case len(g.Fixes) > 0:
		return BumpPatch
	default:
		return BumpNone
	}
}

// Apply advances base by b.
func (b Bump) Apply(base version.Version) version.Version {
	return b.apply(base, BumpPatchWhenEmpty)
}

func (b Bump) apply(base version.Version, patchWhenEmpty bool) version.Version {
	switch b {
	case BumpMajor:
		return base.NextMajor()
	case BumpMinor:
		return base.NextMinor()
	case BumpPatch:
		return base.NextPatch()
	default:
		if patchWhenEmpty {
			return base.NextPatch()
		}
		return base
	}
}
