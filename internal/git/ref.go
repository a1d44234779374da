package git

import "strings"

// Ref identifies a commit. Refs compare by value, so every ref taking part in
// one graph must share the same abbreviation length.
type Ref string

// NewRef wraps a hash string.
func NewRef(s string) Ref {
	return Ref(s)
}

// Refs converts a list of hash strings.
func Refs(hashes ...string) []Ref {
	refs := make([]Ref, 0, len(hashes))
	for _, h := range hashes {
		refs = append(refs, Ref(h))
	}
	return refs
}

// Unstaged returns the sentinel ref standing for working tree changes.
func Unstaged(n int) Ref {
	return Ref(strings.Repeat("0", n))
}

// Staged returns the sentinel ref standing for changes in the index.
func Staged(n int) Ref {
	return Ref(strings.Repeat("S", n))
}

// IsStaged reports whether r is the staged-changes sentinel.
func (r Ref) IsStaged() bool {
	return r != "" && strings.Trim(string(r), "S") == ""
}

// IsUnstaged reports whether r is the unstaged-changes sentinel.
func (r Ref) IsUnstaged() bool {
	return r != "" && strings.Trim(string(r), "0") == ""
}

// IsSentinel reports whether r stands for uncommitted state.
func (r Ref) IsSentinel() bool {
	return r.IsStaged() || r.IsUnstaged()
}

// IsZero reports whether r is empty. The layout engine uses the zero ref for
// "no parent".
func (r Ref) IsZero() bool {
	return r == ""
}

func (r Ref) Len() int {
	return len(r)
}

func (r Ref) Contains(query string) bool {
	return strings.Contains(string(r), query)
}

func (r Ref) String() string {
	return string(r)
}

// Abbrev shortens a full hash to n characters.
func Abbrev(hash string, n int) Ref {
	if n > 0 && len(hash) > n {
		return Ref(hash[:n])
	}
	return Ref(hash)
}
