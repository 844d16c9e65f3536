// Package gitee is a small client for the release endpoints of the Gitee v5 API.
package gitee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://gitee.com"

const userAgent = "gitee-release/1.0"

// Client provides Gitee release API functionality.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	userAgent string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, such as a local test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a client authenticated with token. Requests carry no timeout of
// their own; bound them through the context.
func New(token string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		baseURL:   DefaultBaseURL,
		token:     token,
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the host requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) releasesURL(owner, repo string) string {
	return fmt.Sprintf("%s/api/v5/repos/%s/%s/releases", c.baseURL, owner, repo)
}

// AttachURL returns the upload endpoint for a release.
func (c *Client) AttachURL(owner, repo string, releaseID int64) string {
	return fmt.Sprintf("%s/%d/attach_files", c.releasesURL(owner, repo), releaseID)
}

// CreateRelease creates a release and returns its id and page URL.
func (c *Client) CreateRelease(ctx context.Context, owner, repo string, r ReleaseRequest) (*Release, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.releasesURL(owner, repo), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if readErr != nil {
			text = "Could not read error body"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: text}
	}
	if readErr != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read body: %w", readErr)}
	}

	var parsed releaseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &DecodeError{Body: string(body), Err: err}
	}
	if parsed.ID == nil {
		return nil, &DecodeError{Body: string(body), Err: errors.New("missing field id")}
	}

	rel := &Release{ID: *parsed.ID}
	if parsed.HTMLURL != nil {
		rel.HTMLURL = *parsed.HTMLURL
	}
	return rel, nil
}

// AttachFile uploads content as a file attachment of a release. The token goes
// both in the Authorization header and in the access_token form field.
func (c *Client) AttachFile(ctx context.Context, owner, repo string, releaseID int64, filename string, content []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("access_token", c.token); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "application/octet-stream")
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AttachURL(owner, repo, releaseID), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		text := string(body)
		if err != nil {
			text = "Could not read error body"
		}
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: text}
	}
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return nil
}
