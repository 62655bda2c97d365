// Package nextver computes the next release version for a Git
// repository from its tag history.
package nextver

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is a release version parsed from a tag token. It keeps the
// original token so that formats like "0.010" survive a round trip,
// while ordering and equality use the parsed form ("1.10" > "1.9",
// "1.0" == "1.00").
type Version struct {
	token  string
	parsed *semver.Version
}

// ParseVersion parses a version token. Two-segment and zero-padded
// tokens ("1.9", "0.010") are accepted alongside full semver.
func ParseVersion(token string) (Version, error) {
	parsed, err := semver.NewVersion(token)
	if err != nil {
		return Version{}, fmt.Errorf("parsing version %q: %w", token, err)
	}
	return Version{token: token, parsed: parsed}, nil
}

// String returns the original token the version was parsed from.
func (v Version) String() string {
	return v.token
}

// Compare returns -1, 0 or 1 depending on whether v is less than,
// equal to or greater than other.
func (v Version) Compare(other Version) int {
	return v.parsed.Compare(other.parsed)
}

// LessThan reports whether v orders strictly before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other parse to the same version, even
// when their tokens differ ("1.0" and "1.00").
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// VCS is the narrow view of a version-control backend the resolver
// needs. GitVCS implements it on go-git; tests may substitute fakes.
type VCS interface {
	// ListTags returns every tag name in the repository.
	ListTags() ([]string, error)

	// Head returns an opaque identifier for the current HEAD commit.
	Head() (string, error)

	// TagsReachableFromHead returns the tags attached to commits in
	// the ancestry of HEAD. Backends that cannot answer this query
	// return an error; callers fall back to ListTags.
	TagsReachableFromHead() ([]string, error)
}

// DuplicateVersionError reports an attempt to release a version that
// an existing tag already carries.
type DuplicateVersionError struct {
	Version Version
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("version %s has already been released", e.Version)
}
