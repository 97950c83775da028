// Package semver implements the three-component semantic versions stamped
// into pitch decks and constitutions.
//
// Versions are strict X.Y.Z with non-negative integer components. Anything
// else (prerelease tags, build metadata, missing components) is rejected,
// because document versions are compared by exact equality during analysis
// and loose parsing would hide drift.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
)

// Bump identifies which component of a version to increment.
type Bump string

const (
	BumpMajor Bump = "MAJOR"
	BumpMinor Bump = "MINOR"
	BumpPatch Bump = "PATCH"
)

// Version is a parsed semantic version.
type Version struct {
	Major int
	Minor int
	Patch int
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Parse parses a strict X.Y.Z version string.
// Returns an error for anything that is not three dot-separated integers.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid semantic version: %q", s)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// MustParse parses a version string and panics on error.
// For use with compile-time constants in tests and defaults.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version as "X.Y.Z".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return sign(v.Major - other.Major)
	}
	if v.Minor != other.Minor {
		return sign(v.Minor - other.Minor)
	}
	return sign(v.Patch - other.Patch)
}

// Bumped returns a new version with the given component incremented.
// Minor bumps reset patch; major bumps reset minor and patch.
func (v Version) Bumped(b Bump) Version {
	switch b {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
