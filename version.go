package nextver

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultTagPattern matches tags of the form v<version>, the
// convention used by the companion tagging tooling.
const DefaultTagPattern = `^v(.+)$`

// Pattern extracts a version token from a tag name. The underlying
// expression must carry exactly one capture group; the group's match
// is the token.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles a tag pattern, rejecting expressions that do
// not have exactly one capture group.
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling tag pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("tag pattern %q must have exactly one capture group, has %d", expr, re.NumSubexp())
	}
	return &Pattern{re: re}, nil
}

// Capture returns the version token captured from tag, or false when
// the tag does not match.
func (p *Pattern) Capture(tag string) (string, bool) {
	m := p.re.FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseTag extracts and parses a version from a tag name. Tags that do
// not match the pattern, or whose captured token is not a well-formed
// version, report false; a malformed tag never aborts resolution.
func ParseTag(tag string, pattern *Pattern) (Version, bool) {
	token, ok := pattern.Capture(tag)
	if !ok {
		return Version{}, false
	}
	version, err := ParseVersion(token)
	if err != nil {
		return Version{}, false
	}
	return version, true
}

// MaxVersion returns the highest of the given versions, or false when
// the slice is empty. Duplicates are legal and collapse to one value.
func MaxVersion(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	sorted := make([]Version, len(versions))
	copy(sorted, versions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})
	return sorted[len(sorted)-1], true
}

// NextVersion returns the version that follows v. The result is always
// strictly greater than v:
//
//   - a pre-release is promoted to the release it anticipates
//     ("1.2.0-rc.1" becomes "1.2.0"),
//   - otherwise the last run of digits in the token is incremented,
//     keeping its zero-padding width ("0.010" becomes "0.011", "1.9"
//     becomes "1.10", "1.2.3" becomes "1.2.4").
//
// Build metadata is dropped.
func NextVersion(v Version) Version {
	token := v.token
	if i := strings.IndexByte(token, '+'); i >= 0 {
		token = token[:i]
	}

	if v.parsed.Prerelease() != "" {
		if i := strings.IndexByte(token, '-'); i >= 0 {
			token = token[:i]
		}
	} else {
		token = incrementLastNumber(token)
	}

	// The token is derived from an already-parsed version, so this
	// cannot fail.
	next, _ := ParseVersion(token)
	return next
}

// incrementLastNumber increments the final run of digits in s,
// preserving its width ("009" becomes "010", "099" becomes "100").
func incrementLastNumber(s string) string {
	end := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] >= '0' && s[i] <= '9' {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return s
	}

	start := end - 1
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}

	n, err := strconv.ParseUint(s[start:end], 10, 64)
	if err != nil {
		return s
	}

	return s[:start] + fmt.Sprintf("%0*d", end-start, n+1) + s[end:]
}

// AssertNotReleased fails with a DuplicateVersionError when candidate
// parses equal to any known version, catching tag variants like "1.0"
// against "1.00".
func AssertNotReleased(candidate Version, known []Version) error {
	for _, v := range known {
		if candidate.Equal(v) {
			return &DuplicateVersionError{Version: candidate}
		}
	}
	return nil
}
