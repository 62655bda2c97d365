package nextver

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// GitVCS implements VCS on a go-git repository.
type GitVCS struct {
	repo *git.Repository
}

// NewGitVCS wraps an open repository.
func NewGitVCS(repo *git.Repository) *GitVCS {
	return &GitVCS{repo: repo}
}

// ListTags returns the short names of every tag in the repository.
func (g *GitVCS) ListTags() ([]string, error) {
	refs, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

// Head returns the hash of the current HEAD commit.
func (g *GitVCS) Head() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// TagsReachableFromHead walks the ancestry of HEAD and returns the
// tags attached to the commits it visits. Commits without tags are
// skipped over; a commit carrying several tags contributes all of
// them.
func (g *GitVCS) TagsReachableFromHead() ([]string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	commit, err := g.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting HEAD commit: %w", err)
	}

	tagged, err := g.tagTargets()
	if err != nil {
		return nil, err
	}

	var tags []string
	walker := object.NewCommitPreorderIter(commit, nil, nil)
	err = walker.ForEach(func(c *object.Commit) error {
		tags = append(tags, tagged[c.Hash]...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}

	return tags, nil
}

// tagTargets maps each tagged commit to the short names of its tags,
// resolving annotated tags to the commits they point at.
func (g *GitVCS) tagTargets() (map[plumbing.Hash][]string, error) {
	refs, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	targets := make(map[plumbing.Hash][]string)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		obj, err := g.repo.TagObject(ref.Hash())
		switch err {
		case nil:
			// Annotated tag
			targets[obj.Target] = append(targets[obj.Target], ref.Name().Short())
		case plumbing.ErrObjectNotFound:
			// Lightweight tag
			targets[ref.Hash()] = append(targets[ref.Hash()], ref.Name().Short())
		default:
			return err
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolving tag targets: %w", err)
	}

	return targets, nil
}
