// Package publish creates a release on the remote and attaches artifacts to it.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/yourorg/gitee-release/internal/changelog"
	"github.com/yourorg/gitee-release/internal/gitee"
	"github.com/yourorg/gitee-release/internal/i18n"
	"github.com/yourorg/gitee-release/internal/version"
)

// API is the part of the release API the publisher needs.
type API interface {
	CreateRelease(ctx context.Context, owner, repo string, r gitee.ReleaseRequest) (*gitee.Release, error)
	AttachFile(ctx context.Context, owner, repo string, releaseID int64, filename string, content []byte) error
}

// Request describes one publication.
type Request struct {
	Owner           string
	Repo            string
	Info            changelog.ReleaseInfo
	TargetCommitish string
	Draft           bool
	Prerelease      bool
	Artifacts       []string
}

// Outcome is a successful publication.
type Outcome struct {
	Release   gitee.Release
	Artifacts []ArtifactResult
}

// Publisher runs the tag gate, the creation call and the artifact stage.
type Publisher struct {
	api API
	loc *i18n.Localizer
	log *slog.Logger

	readFile func(string) ([]byte, error)
}

// New creates a Publisher. A nil logger discards output.
func New(api API, loc *i18n.Localizer, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{api: api, loc: loc, log: log, readFile: os.ReadFile}
}

// ValidateTag checks that tag, with an optional leading v, is a semantic version.
func (p *Publisher) ValidateTag(tag string) error {
	if _, err := version.Parse(tag); err != nil {
		return &InvalidTagError{Prefix: p.loc.Text(i18n.InvalidTag), Tag: tag, Err: err}
	}
	return nil
}

// Publish creates the release and uploads the artifacts. Only the tag gate and
// the creation call can fail; artifact problems are reported in the outcome.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Outcome, error) {
	log := p.log.With("owner", req.Owner, "repo", req.Repo, "tag", req.Info.TagName)

	if err := p.ValidateTag(req.Info.TagName); err != nil {
		log.Error(err.Error())
		return nil, err
	}

	rel, err := p.api.CreateRelease(ctx, req.Owner, req.Repo, gitee.ReleaseRequest{
		TagName:         req.Info.TagName,
		TargetCommitish: req.TargetCommitish,
		Name:            req.Info.Name,
		Body:            req.Info.Body,
		Draft:           req.Draft,
		Prerelease:      req.Prerelease,
	})
	if err != nil {
		wrapped := &Error{Prefix: p.prefixFor(err), Err: err}
		log.Error(p.loc.Text(i18n.Failure), "error", wrapped)
		return nil, wrapped
	}

	if rel.HTMLURL != "" {
		log.Info(fmt.Sprintf("%s: %s", p.loc.Text(i18n.Success), rel.HTMLURL), "release_id", rel.ID)
	} else {
		log.Info(p.loc.Text(i18n.Success), "release_id", rel.ID)
	}

	return &Outcome{
		Release:   *rel,
		Artifacts: p.UploadArtifacts(ctx, req.Owner, req.Repo, rel.ID, req.Artifacts),
	}, nil
}

func (p *Publisher) prefixFor(err error) string {
	var apiErr *gitee.APIError
	var decErr *gitee.DecodeError
	switch {
	case errors.As(err, &apiErr):
		return p.loc.Text(i18n.APIError)
	case errors.As(err, &decErr):
		return p.loc.Text(i18n.DecodeError)
	default:
		return p.loc.Text(i18n.RequestError)
	}
}
