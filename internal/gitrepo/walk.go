package gitrepo

import (
	"container/heap"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is the part of a commit the changelog needs.
type Commit struct {
	SHA     string
	Summary string
	When    time.Time
}

// Walk returns the commits reachable from target but not from base, parents
// before children, with unrelated commits ordered by author time ascending.
// An empty base walks the full ancestry of target. Commits at the boundary of
// a shallow clone are treated as roots.
func (r *Repository) Walk(ctx context.Context, base, target string) ([]Commit, error) {
	targetHash, err := r.resolve(target)
	if err != nil {
		return nil, err
	}

	shallow, err := r.shallowSet()
	if err != nil {
		return nil, err
	}

	excluded := map[plumbing.Hash]bool{}
	if base != "" {
		baseHash, err := r.resolve(base)
		if err != nil {
			return nil, err
		}
		ancestors, err := r.reachable(ctx, baseHash, nil, shallow)
		if err != nil {
			return nil, &RepositoryAccessError{Path: r.path, Op: "walk " + base, Err: err}
		}
		for _, c := range ancestors {
			excluded[c.Hash] = true
		}
	}

	commits, err := r.reachable(ctx, targetHash, excluded, shallow)
	if err != nil {
		return nil, &RepositoryAccessError{Path: r.path, Op: "walk " + target, Err: err}
	}

	r.logger.Debug("Walked history", "base", base, "target", target, "commits", len(commits), "shallow", len(shallow) > 0)
	return topoOldestFirst(commits), nil
}

func (r *Repository) shallowSet() (map[plumbing.Hash]bool, error) {
	hashes, err := r.repo.Storer.Shallow()
	if err != nil {
		return nil, &RepositoryAccessError{Path: r.path, Op: "read shallow", Err: err}
	}
	set := make(map[plumbing.Hash]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}
	return set, nil
}

// reachable collects start and its ancestors, skipping anything in stop. The
// parents of shallow commits are not followed since they are not stored.
func (r *Repository) reachable(ctx context.Context, start plumbing.Hash, stop, shallow map[plumbing.Hash]bool) ([]*object.Commit, error) {
	if stop[start] {
		return nil, nil
	}

	seen := map[plumbing.Hash]bool{start: true}
	queue := []plumbing.Hash{start}
	var out []*object.Commit
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := queue[0]
		queue = queue[1:]

		c, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", h, err)
		}
		out = append(out, c)

		if shallow[h] {
			continue
		}
		for _, p := range c.ParentHashes {
			if seen[p] || stop[p] {
				continue
			}
			seen[p] = true
			queue = append(queue, p)
		}
	}
	return out, nil
}

// topoOldestFirst orders commits so every parent precedes its children and,
// among commits whose parents are already emitted, the earliest author time wins.
func topoOldestFirst(commits []*object.Commit) []Commit {
	inSet := make(map[plumbing.Hash]*object.Commit, len(commits))
	for _, c := range commits {
		inSet[c.Hash] = c
	}

	pending := make(map[plumbing.Hash]int, len(commits))
	children := make(map[plumbing.Hash][]plumbing.Hash, len(commits))
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			if _, ok := inSet[p]; !ok {
				continue
			}
			pending[c.Hash]++
			children[p] = append(children[p], c.Hash)
		}
	}

	ready := &commitHeap{}
	for _, c := range commits {
		if pending[c.Hash] == 0 {
			heap.Push(ready, c)
		}
	}

	out := make([]Commit, 0, len(commits))
	for ready.Len() > 0 {
		c := heap.Pop(ready).(*object.Commit)
		out = append(out, Commit{
			SHA:     c.Hash.String(),
			Summary: summary(c.Message),
			When:    c.Author.When,
		})
		for _, child := range children[c.Hash] {
			pending[child]--
			if pending[child] == 0 {
				heap.Push(ready, inSet[child])
			}
		}
	}
	return out
}

func summary(msg string) string {
	line, _, _ := strings.Cut(strings.TrimLeft(msg, "\n"), "\n")
	return strings.TrimSpace(line)
}

type commitHeap []*object.Commit

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	ti, tj := h[i].Author.When, h[j].Author.When
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return h[i].Hash.String() < h[j].Hash.String()
}

func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) { *h = append(*h, x.(*object.Commit)) }

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
