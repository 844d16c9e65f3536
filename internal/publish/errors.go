package publish

import "fmt"

// InvalidTagError is returned when a tag name is not a semantic version.
// It is raised before any request is sent.
type InvalidTagError struct {
	Prefix string
	Tag    string
	Err    error
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("%s: %s", e.Prefix, e.Tag)
}

func (e *InvalidTagError) Unwrap() error { return e.Err }

// Error wraps a fatal release creation failure with a localized prefix.
// The cause is a *gitee.APIError, a *gitee.DecodeError or a transport error.
type Error struct {
	Prefix string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Prefix, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ArtifactSkippedError explains why an artifact was not sent.
type ArtifactSkippedError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ArtifactSkippedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *ArtifactSkippedError) Unwrap() error { return e.Err }

// ArtifactUploadError is a failed upload of one artifact.
type ArtifactUploadError struct {
	Filename string
	Err      error
}

func (e *ArtifactUploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Filename, e.Err)
}

func (e *ArtifactUploadError) Unwrap() error { return e.Err }
