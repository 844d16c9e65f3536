package gitrepo

import "fmt"

// RepositoryAccessError reports that the repository could not be opened or
// its remote could not be read or fetched.
type RepositoryAccessError struct {
	Path string
	Op   string
	Err  error
}

func (e *RepositoryAccessError) Error() string {
	return fmt.Sprintf("repository %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *RepositoryAccessError) Unwrap() error { return e.Err }

// RevisionRangeError reports that an endpoint of a walk does not resolve to a commit.
type RevisionRangeError struct {
	Revision string
	Err      error
}

func (e *RevisionRangeError) Error() string {
	return fmt.Sprintf("resolve revision %q: %v", e.Revision, e.Err)
}

func (e *RevisionRangeError) Unwrap() error { return e.Err }
