// Package gitrepo reads tags and commit history from a local git repository
// and refreshes its tags from the configured remote.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultRemote is the remote tags are fetched from unless configured otherwise.
const DefaultRemote = "origin"

const tagRefSpec = config.RefSpec("+refs/tags/*:refs/tags/*")

// Options configure Open.
type Options struct {
	Remote      string
	Credentials CredentialProvider
	Logger      *slog.Logger
}

// Repository wraps a go-git repository opened from disk.
type Repository struct {
	repo   *git.Repository
	path   string
	remote string
	creds  CredentialProvider
	logger *slog.Logger
}

// Open opens the repository containing path.
func Open(path string, opts Options) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &RepositoryAccessError{Path: path, Op: "open", Err: err}
	}

	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}
	if opts.Credentials == nil {
		opts.Credentials = AgentOrHelperCredentials
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Repository{
		repo:   repo,
		path:   path,
		remote: opts.Remote,
		creds:  opts.Credentials,
		logger: opts.Logger,
	}, nil
}

// RemoteURL returns the first fetch URL of the configured remote.
func (r *Repository) RemoteURL() (string, error) {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return "", &RepositoryAccessError{Path: r.path, Op: "find remote " + r.remote, Err: err}
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", &RepositoryAccessError{Path: r.path, Op: "find remote " + r.remote, Err: errors.New("remote has no url")}
	}
	return urls[0], nil
}

// FetchTags fetches every tag ref from the remote, overwriting local tags of the same name.
func (r *Repository) FetchTags(ctx context.Context) error {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return &RepositoryAccessError{Path: r.path, Op: "find remote " + r.remote, Err: err}
	}

	remoteURL := ""
	if urls := remote.Config().URLs; len(urls) > 0 {
		remoteURL = urls[0]
	}
	auth, err := r.creds(remoteURL)
	if err != nil {
		return &RepositoryAccessError{Path: r.path, Op: "credentials", Err: err}
	}

	r.logger.Info("Fetching tags", "remote", r.remote, "url", remoteURL)
	err = remote.FetchContext(ctx, &git.FetchOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{tagRefSpec},
		Auth:       auth,
		Tags:       git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return &RepositoryAccessError{Path: r.path, Op: "fetch tags", Err: err}
	}
	return nil
}

// TagNames lists the short names of all local tags.
func (r *Repository) TagNames() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, &RepositoryAccessError{Path: r.path, Op: "list tags", Err: err}
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, &RepositoryAccessError{Path: r.path, Op: "list tags", Err: err}
	}
	return names, nil
}

func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, &RevisionRangeError{Revision: rev, Err: err}
	}
	if _, err := r.repo.CommitObject(*h); err != nil {
		return plumbing.ZeroHash, &RevisionRangeError{Revision: rev, Err: fmt.Errorf("not a commit: %w", err)}
	}
	return *h, nil
}
