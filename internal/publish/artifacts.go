package publish

import (
	"context"
	"os"
	"path/filepath"

	"github.com/yourorg/gitee-release/internal/i18n"
)

// ArtifactStatus is the outcome of one artifact.
type ArtifactStatus int

const (
	Uploaded ArtifactStatus = iota
	Skipped
	Failed
)

func (s ArtifactStatus) String() string {
	switch s {
	case Uploaded:
		return "uploaded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ArtifactResult records what happened to one artifact. Err is nil for
// Uploaded, an *ArtifactSkippedError for Skipped and an *ArtifactUploadError
// for Failed.
type ArtifactResult struct {
	Path     string
	Filename string
	Status   ArtifactStatus
	Err      error
}

// Detail is a one-line explanation, empty for uploads.
func (r ArtifactResult) Detail() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Counts tallies results by status.
func Counts(results []ArtifactResult) (uploaded, skipped, failed int) {
	for _, r := range results {
		switch r.Status {
		case Uploaded:
			uploaded++
		case Skipped:
			skipped++
		case Failed:
			failed++
		}
	}
	return uploaded, skipped, failed
}

// UploadArtifacts sends each path to the release in order. Every path yields
// exactly one result and no failure stops the stage.
func (p *Publisher) UploadArtifacts(ctx context.Context, owner, repo string, releaseID int64, paths []string) []ArtifactResult {
	results := make([]ArtifactResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, p.uploadOne(ctx, owner, repo, releaseID, path))
	}
	return results
}

func (p *Publisher) uploadOne(ctx context.Context, owner, repo string, releaseID int64, path string) ArtifactResult {
	log := p.log.With("artifact", path, "release_id", releaseID)
	res := ArtifactResult{Path: path}

	skip := func(key i18n.Key, err error) ArtifactResult {
		reason := p.loc.Text(key)
		log.Warn(reason, "error", err)
		res.Status = Skipped
		res.Err = &ArtifactSkippedError{Path: path, Reason: reason, Err: err}
		return res
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return skip(i18n.ArtifactNotFile, err)
	}

	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return skip(i18n.ArtifactNoFilename, nil)
	}
	res.Filename = name

	content, err := p.readFile(path)
	if err != nil {
		return skip(i18n.FileReadError, err)
	}

	log.Info(p.loc.Text(i18n.UploadStart), "filename", name, "size", len(content))
	if err := p.api.AttachFile(ctx, owner, repo, releaseID, name, content); err != nil {
		log.Error(p.loc.Text(i18n.UploadFailure), "filename", name, "error", err)
		res.Status = Failed
		res.Err = &ArtifactUploadError{Filename: name, Err: err}
		return res
	}

	log.Info(p.loc.Text(i18n.UploadSuccess), "filename", name)
	res.Status = Uploaded
	return res
}
