package git

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedStat = errors.New("malformed numstat line")

// Stat is the line count summary of one changed file.
type Stat struct {
	Adds    int    `json:"adds"`
	Deletes int    `json:"deletes"`
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
	Binary  bool   `json:"binary,omitempty"`
}

// ParseNumstat parses one `--numstat` line: "adds\tdeletes\tpath". Binary
// files report "-" counts. Renames use "old => new" or "dir/{old => new}/f".
func ParseNumstat(line string) (Stat, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return Stat{}, fmt.Errorf("%w: %q", ErrMalformedStat, line)
	}

	var s Stat
	if parts[0] == "-" && parts[1] == "-" {
		s.Binary = true
	} else {
		adds, err := strconv.Atoi(parts[0])
		if err != nil {
			return Stat{}, fmt.Errorf("%w: adds %q", ErrMalformedStat, parts[0])
		}
		dels, err := strconv.Atoi(parts[1])
		if err != nil {
			return Stat{}, fmt.Errorf("%w: deletes %q", ErrMalformedStat, parts[1])
		}
		s.Adds, s.Deletes = adds, dels
	}
	s.Path, s.OldPath = splitRename(parts[2])
	return s, nil
}

// ParseNumstats parses a whole `--numstat` output, skipping blank lines.
func ParseNumstats(out string) ([]Stat, error) {
	var stats []Stat
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := ParseNumstat(line)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// splitRename returns the new and old path of a numstat path field. oldPath
// is empty when the file was not renamed.
func splitRename(field string) (path, oldPath string) {
	if !strings.Contains(field, " => ") {
		return field, ""
	}

	open := strings.Index(field, "{")
	closing := strings.LastIndex(field, "}")
	if open >= 0 && closing > open {
		prefix, suffix := field[:open], field[closing+1:]
		inner := strings.SplitN(field[open+1:closing], " => ", 2)
		if len(inner) == 2 {
			return joinRename(prefix, inner[1], suffix), joinRename(prefix, inner[0], suffix)
		}
	}

	parts := strings.SplitN(field, " => ", 2)
	return parts[1], parts[0]
}

// joinRename glues the pieces of a brace rename, collapsing the double slash
// left by an empty side ("a/{ => b}/c").
func joinRename(prefix, middle, suffix string) string {
	p := prefix + middle + suffix
	return strings.ReplaceAll(p, "//", "/")
}
