package nextver

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testCommit writes a file and commits it, returning the commit hash
func testCommit(repo *git.Repository, filename, content string) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	err = writeFile(workTree.Filesystem, filename, content)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	_, err = workTree.Add(filename)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return workTree.Commit("Commit "+filename, &git.CommitOptions{Author: testSignature})
}

// testTag creates a lightweight tag pointing at the given commit
func testTag(repo *git.Repository, name string, hash plumbing.Hash) error {
	_, err := repo.CreateTag(name, hash, nil)
	return err
}

// testAnnotatedTag creates an annotated tag pointing at the given commit
func testAnnotatedTag(repo *git.Repository, name string, hash plumbing.Hash) error {
	_, err := repo.CreateTag(name, hash, &git.CreateTagOptions{
		Tagger:  testSignature,
		Message: name,
	})
	return err
}

// testRepoWithTags creates a repository with one tagged commit per tag,
// in the given order
func testRepoWithTags(tags []string) (*git.Repository, error) {
	repo, err := testRepoCreate()
	if err != nil {
		return nil, err
	}

	for _, tag := range tags {
		hash, err := testCommit(repo, "file_"+tag+".txt", "Content for "+tag)
		if err != nil {
			return nil, err
		}
		if err := testTag(repo, tag, hash); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

// testRepoBranchedTags creates a repository where tags v0.001 and
// v0.002 are reachable from HEAD (master) and tag v5.0.0 lives on a
// side branch forked from the first commit.
func testRepoBranchedTags() (*git.Repository, error) {
	repo, err := testRepoCreate()
	if err != nil {
		return nil, err
	}

	first, err := testCommit(repo, "a.txt", "a")
	if err != nil {
		return nil, err
	}
	if err := testTag(repo, "v0.001", first); err != nil {
		return nil, err
	}

	second, err := testCommit(repo, "b.txt", "b")
	if err != nil {
		return nil, err
	}
	if err := testTag(repo, "v0.002", second); err != nil {
		return nil, err
	}

	workTree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}

	err = workTree.Checkout(&git.CheckoutOptions{
		Hash:   first,
		Branch: plumbing.NewBranchReferenceName("side"),
		Create: true,
	})
	if err != nil {
		return nil, err
	}

	side, err := testCommit(repo, "c.txt", "c")
	if err != nil {
		return nil, err
	}
	if err := testTag(repo, "v5.0.0", side); err != nil {
		return nil, err
	}

	err = workTree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("master"),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
