package gitee

import "fmt"

// ReleaseRequest is the payload of POST /repos/{owner}/{repo}/releases.
type ReleaseRequest struct {
	TagName         string `json:"tag_name"`
	TargetCommitish string `json:"target_commitish"`
	Name            string `json:"name"`
	Body            string `json:"body"`
	Draft           bool   `json:"draft"`
	Prerelease      bool   `json:"prerelease"`
}

// Release is the part of a created release the tool relies on.
type Release struct {
	ID      int64
	HTMLURL string
}

type releaseResponse struct {
	ID      *int64  `json:"id"`
	HTMLURL *string `json:"html_url"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s - %s", e.Status, e.Body)
}

// DecodeError reports a 2xx release response that could not be understood.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode release response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
