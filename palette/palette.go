// Package palette hands out stable display colors for tag and package names.
package palette

import (
	"github.com/pidcat-go/pidcat/common"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Color is an ANSI base color index, 0 to 7.
type Color int

// The eight ANSI base colors.
const (
	Black Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

// rotation is the dynamic palette, assigned round-robin. Black and white
// are reserved for level badges and well-known names.
var rotation = []Color{Red, Green, Yellow, Blue, Magenta, Cyan}

// wellKnown pins colors for tags the platform itself emits. These never
// expire and never rotate.
var wellKnown = map[string]Color{
	"dalvikvm":        White,
	"Process":         White,
	"ActivityManager": White,
	"ActivityThread":  White,
	"AndroidRuntime":  Cyan,
	"jdwp":            White,
	"StrictMode":      White,
	"DEBUG":           Yellow,
}

// Allocator maps names to colors. While a name stays in the cache it keeps
// its color; after eviction it may come back with a different one.
type Allocator struct {
	cache *lru.Cache[string, Color]
	next  int
}

// NewAllocator makes an allocator with the default cache capacity.
func NewAllocator() *Allocator {
	cache, err := lru.New[string, Color](common.ColorCacheSize)
	if err != nil {
		// capacity is a positive constant
		panic(err)
	}
	return &Allocator{cache: cache}
}

// ColorFor resolves the color for a name, assigning the next palette color
// on first sight.
func (a *Allocator) ColorFor(name string) Color {
	if c, ok := wellKnown[name]; ok {
		return c
	}
	if c, ok := a.cache.Get(name); ok {
		return c
	}
	c := rotation[a.next%len(rotation)]
	a.next++
	a.cache.Add(name, c)
	return c
}

// Cached reports whether a name currently holds a dynamic assignment,
// without touching recency.
func (a *Allocator) Cached(name string) bool {
	return a.cache.Contains(name)
}
