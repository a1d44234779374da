package git

import (
	"context"
	"strings"

	pq "github.com/emirpasic/gods/queues/priorityqueue"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// maxWalk bounds a history walk on very large repositories.
const maxWalk = 200000

// walkCommits collects every commit reachable from seeds, breadth first.
func walkCommits(ctx context.Context, repo *gogit.Repository, seeds []plumbing.Hash) ([]*object.Commit, error) {
	var collected []*object.Commit
	seen := make(map[plumbing.Hash]bool)
	queue := append([]plumbing.Hash(nil), seeds...)

	for len(queue) > 0 && len(collected) < maxWalk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true

		c, err := repo.CommitObject(current)
		if err != nil {
			// shallow clones and missing objects end the walk on that line
			continue
		}
		collected = append(collected, c)
		queue = append(queue, c.ParentHashes...)
	}
	return collected, nil
}

// newerFirst orders commits by committer time, newest first, breaking ties
// by hash so the order never depends on map iteration.
func newerFirst(a, b interface{}) int {
	ca, cb := a.(*object.Commit), b.(*object.Commit)
	ta, tb := ca.Committer.When, cb.Committer.When
	switch {
	case ta.After(tb):
		return -1
	case ta.Before(tb):
		return 1
	}
	return -strings.Compare(ca.Hash.String(), cb.Hash.String())
}

// orderCommits sorts commits so that every commit comes before its parents,
// preferring newer commits among those whose children are all placed.
func orderCommits(commits []*object.Commit) []*object.Commit {
	inSet := make(map[plumbing.Hash]bool, len(commits))
	for _, c := range commits {
		inSet[c.Hash] = true
	}
	children := make(map[plumbing.Hash]int, len(commits))
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			if inSet[p] {
				children[p]++
			}
		}
	}

	byHash := make(map[plumbing.Hash]*object.Commit, len(commits))
	ready := pq.NewWith(newerFirst)
	for _, c := range commits {
		byHash[c.Hash] = c
		if children[c.Hash] == 0 {
			ready.Enqueue(c)
		}
	}

	ordered := make([]*object.Commit, 0, len(commits))
	placed := make(map[plumbing.Hash]bool, len(commits))
	for !ready.Empty() {
		v, _ := ready.Dequeue()
		c := v.(*object.Commit)
		if placed[c.Hash] {
			continue
		}
		placed[c.Hash] = true
		ordered = append(ordered, c)
		for _, p := range c.ParentHashes {
			if !inSet[p] || placed[p] {
				continue
			}
			children[p]--
			if children[p] == 0 {
				ready.Enqueue(byHash[p])
			}
		}
	}

	// only reachable with corrupt parent links; keep every commit anyway
	if len(ordered) < len(commits) {
		rest := pq.NewWith(newerFirst)
		for _, c := range commits {
			if !placed[c.Hash] {
				rest.Enqueue(c)
			}
		}
		for !rest.Empty() {
			v, _ := rest.Dequeue()
			ordered = append(ordered, v.(*object.Commit))
		}
	}
	return ordered
}
