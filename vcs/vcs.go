// Package vcs resolves the repository revision a release is built from, so
// every assembled package can record its provenance.
package vcs

import (
	stderrors "errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/damus-io/nostr-sdk/errors"
)

const describeOp = "vcs.Describe"

// Stamp identifies the revision a release was built from. A zero Stamp means
// the build root is not a repository, which is allowed (local builds from an
// exported tree).
type Stamp struct {
	// Commit is the full HEAD commit hash.
	Commit string

	// Tag is the tag pointing at HEAD, if any.
	Tag string

	// Dirty reports uncommitted changes in the worktree.
	Dirty bool
}

// IsZero reports whether no repository was found.
func (s Stamp) IsZero() bool { return s.Commit == "" }

// Short returns the abbreviated commit hash.
func (s Stamp) Short() string {
	if len(s.Commit) < 12 {
		return s.Commit
	}
	return s.Commit[:12]
}

// Describe resolves the Stamp for the repository at root. A missing
// repository yields a zero Stamp and no error; any other failure is a VCS
// error.
func Describe(root string) (Stamp, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return Stamp{}, nil
		}
		return Stamp{}, errors.Wrap(errors.CodeVCS, describeOp, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Stamp{}, errors.Wrap(errors.CodeVCS, describeOp, err)
	}

	stamp := Stamp{Commit: head.Hash().String()}

	tags, err := repo.Tags()
	if err != nil {
		return Stamp{}, errors.Wrap(errors.CodeVCS, describeOp, err)
	}
	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		if ref.Hash() == head.Hash() {
			stamp.Tag = ref.Name().Short()
		}
		return nil
	})

	wt, err := repo.Worktree()
	if err == nil {
		if status, statusErr := wt.Status(); statusErr == nil {
			stamp.Dirty = !status.IsClean()
		}
	}

	return stamp, nil
}
