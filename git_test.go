package nextver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGitVCSListTags(t *testing.T) {
	t.Run("Repo with lightweight and annotated tags", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		hash, err := testCommit(repo, "a.txt", "a")
		require.NoError(t, err)

		require.NoError(t, testTag(repo, "v1.0.0", hash))
		require.NoError(t, testAnnotatedTag(repo, "v1.1.0", hash))
		require.NoError(t, testTag(repo, "not-a-version", hash))

		tags, err := NewGitVCS(repo).ListTags()
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"v1.0.0", "v1.1.0", "not-a-version"}, tags)
	})

	t.Run("Repo with no tags", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testCommit(repo, "a.txt", "a")
		require.NoError(t, err)

		tags, err := NewGitVCS(repo).ListTags()
		require.NoError(t, err)
		require.Empty(t, tags)
	})
}

func TestGitVCSHead(t *testing.T) {
	t.Run("Returns the current commit hash", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		hash, err := testCommit(repo, "a.txt", "a")
		require.NoError(t, err)

		head, err := NewGitVCS(repo).Head()
		require.NoError(t, err)
		require.Equal(t, hash.String(), head)
	})

	t.Run("Fails on a repo without commits", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		_, err = NewGitVCS(repo).Head()
		require.Error(t, err)
	})
}

func TestGitVCSTagsReachableFromHead(t *testing.T) {
	t.Run("Excludes tags on unreachable branches", func(t *testing.T) {
		repo, err := testRepoBranchedTags()
		require.NoError(t, err)

		vcs := NewGitVCS(repo)

		reachable, err := vcs.TagsReachableFromHead()
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"v0.001", "v0.002"}, reachable)

		// The full tag list still sees the side branch.
		all, err := vcs.ListTags()
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"v0.001", "v0.002", "v5.0.0"}, all)
	})

	t.Run("Reports all tags on one commit", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		hash, err := testCommit(repo, "a.txt", "a")
		require.NoError(t, err)

		require.NoError(t, testTag(repo, "v1.0.0", hash))
		require.NoError(t, testTag(repo, "v1.0.1", hash))

		reachable, err := NewGitVCS(repo).TagsReachableFromHead()
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"v1.0.0", "v1.0.1"}, reachable)
	})

	t.Run("Resolves annotated tags to their commits", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		first, err := testCommit(repo, "a.txt", "a")
		require.NoError(t, err)
		require.NoError(t, testAnnotatedTag(repo, "v1.0.0", first))

		_, err = testCommit(repo, "b.txt", "b")
		require.NoError(t, err)

		reachable, err := NewGitVCS(repo).TagsReachableFromHead()
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"v1.0.0"}, reachable)
	})

	t.Run("Fails on a repo without commits", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)

		_, err = NewGitVCS(repo).TagsReachableFromHead()
		require.Error(t, err)
	})
}

func TestOpenRepository(t *testing.T) {
	t.Run("Fails outside a repository", func(t *testing.T) {
		_, err := OpenRepository(t.TempDir())
		require.Error(t, err)
	})
}
