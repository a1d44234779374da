package graph

import "github.com/kurobon/gitgraph/internal/git"

// ColorKey is an index into the terminal's 256 color palette.
type ColorKey int

// NoColor is used for blanks and bullets, which take the default style.
const NoColor ColorKey = -1

// DefaultPalette is the six basic ANSI colors, skipping black.
var DefaultPalette = []ColorKey{1, 2, 3, 4, 5, 6}

// ColorMap assigns colors to threads in the order they are first seen,
// cycling through a palette. A map must be used by one render pass at a
// time; start from a fresh or Reset map to get reproducible colors.
type ColorMap struct {
	palette []ColorKey
	colors  map[git.Ref]ColorKey
}

// NewColorMap returns an empty map over palette, or DefaultPalette when
// palette is empty.
func NewColorMap(palette ...ColorKey) *ColorMap {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &ColorMap{
		palette: append([]ColorKey(nil), palette...),
		colors:  make(map[git.Ref]ColorKey),
	}
}

// Get returns the color of ref, assigning the next palette entry the first
// time ref is seen.
func (m *ColorMap) Get(ref git.Ref) ColorKey {
	if c, ok := m.colors[ref]; ok {
		return c
	}
	c := m.palette[len(m.colors)%len(m.palette)]
	m.colors[ref] = c
	return c
}

// Len is the number of refs with an assigned color.
func (m *ColorMap) Len() int {
	return len(m.colors)
}

// Reset forgets every assigned color so the next thread starts the palette over.
func (m *ColorMap) Reset() {
	m.colors = make(map[git.Ref]ColorKey)
}
