package nextver

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// DefaultFirstVersion is used when no prior release exists and no
	// first version has been configured.
	DefaultFirstVersion = "0.1.0"

	// DefaultOverrideEnv is the environment variable consulted for a
	// verbatim version override.
	DefaultOverrideEnv = "V"
)

// Options configures a Provider.
type Options struct {
	// VCS is the version-control backend to resolve tags from.
	VCS VCS

	// Cache holds the branch-scoped resolution across invocations.
	// Nil disables caching.
	Cache *ResolutionCache

	// TagPattern extracts version tokens from tag names
	// (default: DefaultTagPattern).
	TagPattern string

	// FirstVersion is returned verbatim when no prior release exists
	// (default: DefaultFirstVersion).
	FirstVersion string

	// VersionByBranch restricts resolution to tags reachable from
	// HEAD instead of all tags in the repository.
	VersionByBranch bool

	// OverrideEnv names the environment variable checked for a
	// verbatim override (default: DefaultOverrideEnv).
	OverrideEnv string

	// Logger receives debug output for skipped tags, cache state and
	// fallbacks (default: no logging).
	Logger *zap.Logger
}

// Provider computes the version to use for the next release and
// exposes the hooks a release pipeline runs around it.
type Provider struct {
	vcs             VCS
	cache           *ResolutionCache
	pattern         *Pattern
	firstVersion    string
	versionByBranch bool
	overrideEnv     string
	log             *zap.Logger
}

// NewProvider validates the options and builds a Provider.
func NewProvider(opts Options) (*Provider, error) {
	if opts.VCS == nil {
		return nil, fmt.Errorf("a VCS backend is required")
	}

	expr := opts.TagPattern
	if expr == "" {
		expr = DefaultTagPattern
	}
	pattern, err := NewPattern(expr)
	if err != nil {
		return nil, err
	}

	first := opts.FirstVersion
	if first == "" {
		first = DefaultFirstVersion
	}
	if _, err := ParseVersion(first); err != nil {
		return nil, fmt.Errorf("invalid first version: %w", err)
	}

	overrideEnv := opts.OverrideEnv
	if overrideEnv == "" {
		overrideEnv = DefaultOverrideEnv
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		vcs:             opts.VCS,
		cache:           opts.Cache,
		pattern:         pattern,
		firstVersion:    first,
		versionByBranch: opts.VersionByBranch,
		overrideEnv:     overrideEnv,
		log:             logger,
	}, nil
}

// ProvideVersion returns the version string for the next release.
//
// The override environment variable wins outright: when set, its value
// is validated and returned verbatim, bypassing resolution and
// bumping. Otherwise the last released version is resolved and bumped,
// or the configured first version is returned when the repository has
// no prior release.
func (p *Provider) ProvideVersion() (string, error) {
	if raw := os.Getenv(p.overrideEnv); raw != "" {
		if _, err := ParseVersion(raw); err != nil {
			return "", fmt.Errorf("%s override %q is not a valid version: %w", p.overrideEnv, raw, err)
		}
		p.log.Debug("using version override",
			zap.String("env", p.overrideEnv), zap.String("version", raw))
		return raw, nil
	}

	last, ok, err := p.LastVersion()
	if err != nil {
		return "", err
	}
	if !ok {
		p.log.Debug("no prior release found, using first version",
			zap.String("version", p.firstVersion))
		return p.firstVersion, nil
	}

	next := NextVersion(last)
	p.log.Debug("bumped last version",
		zap.Stringer("last", last), zap.Stringer("next", next))
	return next.String(), nil
}

// LastVersion resolves the highest released version, branch-scoped
// when configured. False means no prior release exists.
func (p *Provider) LastVersion() (Version, bool, error) {
	if !p.versionByBranch {
		tags, err := p.vcs.ListTags()
		if err != nil {
			return Version{}, false, fmt.Errorf("resolving last version: %w", err)
		}
		v, ok := p.maxOf(tags)
		return v, ok, nil
	}
	return p.lastVersionByBranch()
}

// lastVersionByBranch resolves from tags reachable from HEAD, guarded
// by the resolution cache. When HEAD or the ancestry walk cannot be
// resolved the whole-repository tag list is used for this invocation
// and no cache write occurs.
func (p *Provider) lastVersionByBranch() (Version, bool, error) {
	head, err := p.vcs.Head()
	if err != nil {
		p.log.Debug("cannot resolve HEAD, falling back to all tags", zap.Error(err))
		return p.wholeRepoFallback()
	}

	if p.cache != nil {
		if commitID, cached, ok := p.cache.Get(); ok {
			if commitID != head {
				p.log.Debug("resolution cache is stale",
					zap.String("cached", commitID), zap.String("head", head))
			} else if v, err := ParseVersion(cached); err == nil {
				p.log.Debug("resolution cache hit", zap.Stringer("version", v))
				return v, true, nil
			}
		}
	}

	tags, err := p.vcs.TagsReachableFromHead()
	if err != nil {
		p.log.Debug("ancestry walk failed, falling back to all tags", zap.Error(err))
		return p.wholeRepoFallback()
	}

	v, ok := p.maxOf(tags)
	if ok && p.cache != nil {
		if err := p.cache.Put(head, v.String()); err != nil {
			// Losing the cache only costs the next invocation a walk.
			p.log.Debug("cache write failed", zap.Error(err))
		}
	}
	return v, ok, nil
}

func (p *Provider) wholeRepoFallback() (Version, bool, error) {
	tags, err := p.vcs.ListTags()
	if err != nil {
		return Version{}, false, fmt.Errorf("resolving last version: %w", err)
	}
	v, ok := p.maxOf(tags)
	return v, ok, nil
}

func (p *Provider) maxOf(tags []string) (Version, bool) {
	var versions []Version
	for _, tag := range tags {
		v, ok := ParseTag(tag, p.pattern)
		if !ok {
			p.log.Debug("ignoring tag", zap.String("tag", tag))
			continue
		}
		versions = append(versions, v)
	}
	return MaxVersion(versions)
}

// BeforeRelease fails with a DuplicateVersionError when the candidate
// version has already been released. The check always runs against the
// full cross-branch tag set, even when resolution is branch-scoped.
func (p *Provider) BeforeRelease(candidate string) error {
	v, err := ParseVersion(candidate)
	if err != nil {
		return fmt.Errorf("invalid release version: %w", err)
	}

	tags, err := p.vcs.ListTags()
	if err != nil {
		return fmt.Errorf("checking released versions: %w", err)
	}

	var known []Version
	for _, tag := range tags {
		if kv, ok := ParseTag(tag, p.pattern); ok {
			known = append(known, kv)
		}
	}

	return AssertNotReleased(v, known)
}

// AfterRelease clears the resolution cache. It runs after every
// release attempt, successful or not, so a later branch switch never
// sees a stale entry.
func (p *Provider) AfterRelease() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Clear()
}

// PruneFromManifest removes the cache file's path from a packaging
// file list so the cache is never distributed.
func (p *Provider) PruneFromManifest(files []string) []string {
	pruned := make([]string, 0, len(files))
	for _, f := range files {
		if filepath.Clean(f) == CacheFileName {
			continue
		}
		pruned = append(pruned, f)
	}
	return pruned
}
