package gitrepo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// CredentialProvider produces the auth method used to fetch from url.
// A nil AuthMethod with a nil error means anonymous access.
type CredentialProvider func(url string) (transport.AuthMethod, error)

// NoCredentials always fetches anonymously.
func NoCredentials(string) (transport.AuthMethod, error) {
	return nil, nil
}

// AgentOrHelperCredentials uses ssh-agent for git@ and ssh:// remotes and the
// configured git credential helper for http(s) remotes. Local paths get no auth.
func AgentOrHelperCredentials(remoteURL string) (transport.AuthMethod, error) {
	switch {
	case strings.HasPrefix(remoteURL, "http"):
		return helperCredentials(remoteURL)
	case strings.HasPrefix(remoteURL, "git@"), strings.HasPrefix(remoteURL, "ssh://"):
		user := "git"
		if ep, err := transport.NewEndpoint(remoteURL); err == nil && ep.User != "" {
			user = ep.User
		}
		auth, err := gitssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, fmt.Errorf("ssh agent auth: %w", err)
		}
		return auth, nil
	default:
		return nil, nil
	}
}

// helperCredentials asks `git credential fill` for a username and password.
// When no helper answers, the fetch proceeds anonymously so public remotes keep working.
func helperCredentials(remoteURL string) (transport.AuthMethod, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			return &githttp.BasicAuth{Username: u.User.Username(), Password: pw}, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var in bytes.Buffer
	fmt.Fprintf(&in, "protocol=%s\nhost=%s\n", u.Scheme, u.Host)
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		fmt.Fprintf(&in, "path=%s\n", p)
	}
	in.WriteString("\n")

	cmd := exec.CommandContext(ctx, "git", "credential", "fill")
	cmd.Stdin = &in
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		return nil, nil
	}

	var user, pass string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch k {
		case "username":
			user = v
		case "password":
			pass = v
		}
	}
	if pass == "" {
		return nil, nil
	}
	return &githttp.BasicAuth{Username: user, Password: pass}, nil
}
