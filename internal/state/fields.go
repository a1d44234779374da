package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/kurobon/gitgraph/internal/git"
)

// CommitFields are the formatted columns of a log row, shared by rendering
// and search so that anything shown can be searched for.
type CommitFields struct {
	Hash     git.Ref
	Age      string
	Author   string
	Branches []string
	Tags     []string
	Refs     []string
	Head     string
	Subject  string
}

// NewCommitFields formats c with ages relative to now.
func NewCommitFields(c git.Commit, now time.Time) CommitFields {
	f := CommitFields{
		Hash:    c.Ref,
		Author:  c.AuthorName,
		Subject: c.Subject,
	}
	if !c.Time.IsZero() {
		f.Age = RelativeTime(c.Time, now)
	}
	d := c.Decoration
	if d.Head != "" {
		f.Head = "[" + d.Head + "]"
	}
	for _, b := range d.Branches {
		f.Branches = append(f.Branches, "["+b+"]")
	}
	for _, t := range d.Tags {
		f.Tags = append(f.Tags, "<"+t+">")
	}
	for _, r := range d.Refs {
		f.Refs = append(f.Refs, "<"+r+">")
	}
	return f
}

// Contains reports whether any field contains query.
func (f CommitFields) Contains(query string) bool {
	if f.Hash.Contains(query) ||
		strings.Contains(f.Age, query) ||
		strings.Contains(f.Author, query) ||
		strings.Contains(f.Head, query) ||
		strings.Contains(f.Subject, query) {
		return true
	}
	for _, group := range [][]string{f.Branches, f.Tags, f.Refs} {
		for _, s := range group {
			if strings.Contains(s, query) {
				return true
			}
		}
	}
	return false
}

// RelativeTime describes how long before now t was, in the largest calendar
// unit that differs: years (Y), months (M), days (D), hours (h), minutes (m)
// or seconds (s).
func RelativeTime(t, now time.Time) string {
	t = t.In(now.Location())
	switch {
	case t.Year() != now.Year():
		return fmt.Sprintf("%dY", now.Year()-t.Year())
	case t.Month() != now.Month():
		return fmt.Sprintf("%dM", int(now.Month())-int(t.Month()))
	case t.Day() != now.Day():
		return fmt.Sprintf("%dD", now.Day()-t.Day())
	case t.Hour() != now.Hour():
		return fmt.Sprintf("%dh", now.Hour()-t.Hour())
	case t.Minute() != now.Minute():
		return fmt.Sprintf("%dm", now.Minute()-t.Minute())
	default:
		return fmt.Sprintf("%ds", now.Second()-t.Second())
	}
}
