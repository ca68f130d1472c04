package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

var NotARepositoryError = errors.New("not a git repository")

type RepositoryInfoService interface {
	CurrentBranch() (string, error)
	CurrentCommitHash() (string, error)
	// CurrentTag returns the short name of a tag pointing at HEAD, or "" when there is none.
	CurrentTag() (string, error)
}

type repositoryInfoServiceImpl struct {
	r *git.Repository
}

func NewRepositoryInfoService(repoPath string) (RepositoryInfoService, error) {
	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("opening repository at %s: %w", repoPath, NotARepositoryError)
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	return &repositoryInfoServiceImpl{
		r: repo,
	}, nil
}

func (s *repositoryInfoServiceImpl) CurrentBranch() (string, error) {
	headRef, err := s.r.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	name := headRef.Name()
	if !name.IsBranch() {
		return "", fmt.Errorf("HEAD is not pointing to a branch")
	}

	return name.Short(), nil
}

func (s *repositoryInfoServiceImpl) CurrentCommitHash() (string, error) {
	hash, err := s.headCommitHash()
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (s *repositoryInfoServiceImpl) headCommitHash() (plumbing.Hash, error) {
	headRef, err := s.r.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting HEAD reference: %w", err)
	}

	commit, err := s.r.CommitObject(headRef.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting commit object: %w", err)
	}

	return commit.Hash, nil
}

func (s *repositoryInfoServiceImpl) CurrentTag() (string, error) {
	hash, err := s.headCommitHash()
	if err != nil {
		return "", fmt.Errorf("getting current commit: %w", err)
	}

	tagsIter, err := s.r.Tags()
	if err != nil {
		return "", fmt.Errorf("getting tags iterator: %w", err)
	}
	defer tagsIter.Close()

	var found string
	err = tagsIter.ForEach(func(reference *plumbing.Reference) error {
		if found != "" {
			return nil
		}

		// lightweight tags point at the commit, annotated ones at a tag object
		if reference.Hash().Equal(hash) {
			found = reference.Name().Short()
			return nil
		}
		obj, err := s.r.TagObject(reference.Hash())
		if err != nil {
			return nil
		}
		if obj.Target.Equal(hash) {
			found = reference.Name().Short()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("iterating over tags: %w", err)
	}

	return found, nil
}
