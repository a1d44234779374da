package git

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LogFormat is the --pretty format ParseLogLine understands:
// commit|parents|decoration|author_name|author_email|timestamp|subject
const LogFormat = "%h|%p|%d|%aN|%aE|%at|%s"

var ErrMalformedLog = errors.New("malformed log line")

// Decoration holds the names pointing at a commit.
type Decoration struct {
	Head     string   `json:"head,omitempty"`
	Branches []string `json:"branches,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Refs     []string `json:"refs,omitempty"`
}

// ParseDecoration parses git's %d output, e.g.
// " (HEAD -> main, tag: v1.0, origin/main, dev)".
func ParseDecoration(deco string) Decoration {
	var d Decoration
	s := strings.TrimSpace(deco)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return d
	}
	for _, name := range strings.Split(s[1:len(s)-1], ", ") {
		d.add(name)
	}
	return d
}

func (d *Decoration) add(name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
	case strings.Contains(name, " -> "):
		parts := strings.Split(name, " -> ")
		d.Head = parts[len(parts)-1]
	case strings.HasPrefix(name, "tag: "):
		d.Tags = append(d.Tags, strings.TrimPrefix(name, "tag: "))
	case strings.Contains(name, "/"):
		d.Refs = append(d.Refs, name)
	default:
		d.Branches = append(d.Branches, name)
	}
}

// IsEmpty reports whether nothing points at the commit.
func (d Decoration) IsEmpty() bool {
	return d.Head == "" && len(d.Branches) == 0 && len(d.Tags) == 0 && len(d.Refs) == 0
}

// Commit is one entry of the history, ordered newest first.
type Commit struct {
	Ref         Ref        `json:"ref"`
	Parents     []Ref      `json:"parents"`
	Decoration  Decoration `json:"decoration"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"authorEmail"`
	Time        time.Time  `json:"time"`
	Subject     string     `json:"subject"`
}

// ParseLogLine parses one line of `git log --pretty=format:` + LogFormat.
func ParseLogLine(line string) (Commit, error) {
	parts := strings.SplitN(line, "|", 7)
	if len(parts) < 7 {
		return Commit{}, fmt.Errorf("%w: %q", ErrMalformedLog, line)
	}

	c := Commit{
		Ref:         Ref(parts[0]),
		Decoration:  ParseDecoration(parts[2]),
		AuthorName:  parts[3],
		AuthorEmail: parts[4],
		Subject:     parts[6],
	}
	if parts[1] != "" {
		c.Parents = Refs(strings.Fields(parts[1])...)
	}
	if parts[5] != "" {
		secs, err := strconv.ParseInt(parts[5], 10, 64)
		if err != nil {
			return Commit{}, fmt.Errorf("%w: bad timestamp %q: %v", ErrMalformedLog, parts[5], err)
		}
		c.Time = time.Unix(secs, 0)
	}
	return c, nil
}

// ParseLog parses the whole output of a log query, skipping blank lines.
func ParseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := ParseLogLine(line)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// PseudoCommit builds a sentinel commit for uncommitted state with head as
// its only parent.
func PseudoCommit(ref, head Ref, subject string) Commit {
	c := Commit{Ref: ref, Subject: subject}
	if !head.IsZero() {
		c.Parents = []Ref{head}
	}
	return c
}

// WithSentinels inserts the staged and unstaged pseudo-commits in front of
// commits. The sentinels take the abbreviation length of the first commit
// (6 for an empty history) and point at head.
func WithSentinels(commits []Commit, head string, staged, unstaged bool) []Commit {
	n := 6
	if len(commits) > 0 {
		n = commits[0].Ref.Len()
	}
	headRef := Abbrev(head, n)

	var front []Commit
	if unstaged {
		front = append(front, PseudoCommit(Unstaged(n), headRef, "Unstaged changes"))
	}
	if staged {
		front = append(front, PseudoCommit(Staged(n), headRef, "Staged changes"))
	}
	if len(front) == 0 {
		return commits
	}
	return append(front, commits...)
}
