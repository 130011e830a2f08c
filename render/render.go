// Package render turns kept records and lifecycle notifications into
// aligned, optionally colorized terminal lines.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pidcat-go/pidcat/palette"
	"github.com/pidcat-go/pidcat/parser"
	"github.com/pidcat-go/pidcat/types"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

var levelText = map[types.Level]string{
	types.Verbose: " V ",
	types.Debug:   " D ",
	types.Info:    " I ",
	types.Warn:    " W ",
	types.Error:   " E ",
	types.Fatal:   " F ",
}

var levelFg = map[types.Level]palette.Color{
	types.Verbose: palette.White,
	types.Debug:   palette.Black,
	types.Info:    palette.Black,
	types.Warn:    palette.Black,
	types.Error:   palette.Black,
	types.Fatal:   palette.Black,
}

var levelBg = map[types.Level]palette.Color{
	types.Verbose: palette.Black,
	types.Debug:   palette.Blue,
	types.Info:    palette.Green,
	types.Warn:    palette.Yellow,
	types.Error:   palette.Red,
	types.Fatal:   palette.Red,
}

var (
	strictModeRule = regexp.MustCompile(`^(StrictMode policy violation)(; ~duration=)(\d+ ms)`)
	gcRule         = regexp.MustCompile(`^(GC_(?:CONCURRENT|FOR_M?ALLOC|EXTERNAL_ALLOC|EXPLICIT) )(freed <?\d+.)(, \d+% free \d+./\d+., )(paused \d+ms(?:\+\d+ms)?)`)
)

// Renderer holds the column configuration and the per-session color state.
// Tag and package names draw from independent allocators, so the same
// string may render differently in each column.
type Renderer struct {
	tagWidth     int
	packageWidth int
	showPackage  bool
	alwaysTags   bool
	colorGC      bool

	widthFn   func() int
	tagColors *palette.Allocator
	pkgColors *palette.Allocator
	lastTag   string

	fg     map[palette.Color]*color.Color
	badges map[types.Level]*color.Color
	bgBars map[palette.Color]*color.Color
}

// New builds a renderer from config. forceTags keeps the tag column
// populated on every line, which is switched on while any tag filter is
// active. widthFn supplies the terminal width, -1 disables wrapping.
func New(config *types.Config, forceTags bool, widthFn func() int) *Renderer {
	r := &Renderer{
		tagWidth:     config.TagWidth,
		packageWidth: config.PackageWidth,
		showPackage:  config.ShowPackage,
		alwaysTags:   config.AlwaysTags || forceTags,
		colorGC:      config.ColorGC,
		widthFn:      widthFn,
		tagColors:    palette.NewAllocator(),
		pkgColors:    palette.NewAllocator(),
		fg:           map[palette.Color]*color.Color{},
		badges:       map[types.Level]*color.Color{},
		bgBars:       map[palette.Color]*color.Color{},
	}
	if r.widthFn == nil {
		r.widthFn = func() int { return -1 }
	}

	setup := func(c *color.Color) *color.Color {
		if config.NoColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c
	}
	for c := palette.Black; c <= palette.White; c++ {
		r.fg[c] = setup(color.New(color.Attribute(30 + int(c))))
		r.bgBars[c] = setup(color.New(color.Attribute(40 + int(c))))
	}
	for level := types.Verbose; level <= types.Fatal; level++ {
		r.badges[level] = setup(color.New(
			color.Attribute(30+int(levelFg[level])),
			color.Attribute(40+int(levelBg[level])),
		))
	}
	return r
}

// HeaderSize is the display width of the prefix columns in front of the
// message.
func (r *Renderer) HeaderSize() int {
	size := r.tagWidth + 1 + 3 + 1
	if r.showPackage {
		size += r.packageWidth + 2
	}
	return size
}

// Render formats a whole record, one output line per message line.
func (r *Renderer) Render(rec *types.Record, pkg string) []string {
	lines := []string{r.Primary(rec, pkg)}
	for _, cont := range rec.Message[1:] {
		lines = append(lines, r.Continuation(cont))
	}
	return lines
}

// Primary formats the first line of a record.
func (r *Renderer) Primary(rec *types.Record, pkg string) string {
	var b strings.Builder
	width := r.widthFn()

	if r.showPackage {
		name := runewidth.Truncate(pkg, r.packageWidth, ellipsis)
		b.WriteString(r.fg[r.pkgColors.ColorFor(pkg)].Sprint(runewidth.FillRight(name, r.packageWidth)))
		b.WriteString("  ")
	}

	if rec.Tag != r.lastTag || r.alwaysTags {
		r.lastTag = rec.Tag
		display := runewidth.Truncate(rec.Tag, r.tagWidth, ellipsis)
		if r.showPackage {
			display = runewidth.FillLeft(display, r.tagWidth)
		} else {
			display = runewidth.FillRight(display, r.tagWidth)
		}
		b.WriteString(r.fg[r.tagColors.ColorFor(rec.Tag)].Sprint(display))
	} else {
		b.WriteString(strings.Repeat(" ", r.tagWidth))
	}
	b.WriteString(" ")

	b.WriteString(r.badges[rec.Level].Sprint(levelText[rec.Level]))
	b.WriteString(" ")

	message := r.applyMessageRules(rec.Message[0])
	b.WriteString(indentWrap(message, width, r.HeaderSize()))
	return b.String()
}

// Continuation formats a merged message line under the message column. The
// blank prefix tells it apart from a new record.
func (r *Renderer) Continuation(text string) string {
	header := r.HeaderSize()
	return strings.Repeat(" ", header) + indentWrap(text, r.widthFn(), header)
}

// StartBanner formats a process-start notification.
func (r *Renderer) StartBanner(start *parser.ProcessStart) []string {
	r.lastTag = ""
	header := r.HeaderSize()
	bar := r.bgBars[palette.White].Sprint(strings.Repeat(" ", header-1))
	created := fmt.Sprintf(" Process %s created for %s", start.Package, start.Target)
	return []string{
		"",
		bar + indentWrap(created, r.widthFn(), header),
		bar + fmt.Sprintf(" PID: %d   UID: %s   GIDs: %s", start.PID, start.UID, start.GIDs),
		"",
	}
}

// DeathBanner formats a process-death notification.
func (r *Renderer) DeathBanner(death *parser.ProcessDeath) []string {
	r.lastTag = ""
	bar := r.bgBars[palette.Red].Sprint(strings.Repeat(" ", r.HeaderSize()-1))
	return []string{
		"",
		bar + fmt.Sprintf(" Process %s (PID: %d) ended", death.Package, death.PID),
		"",
	}
}

func (r *Renderer) applyMessageRules(message string) string {
	if m := strictModeRule.FindStringSubmatchIndex(message); m != nil {
		message = message[m[2]:m[3]] +
			r.fg[palette.Red].Sprint(message[m[4]:m[5]]) +
			r.fg[palette.Yellow].Sprint(message[m[6]:m[7]]) +
			message[m[1]:]
	}
	if r.colorGC {
		if m := gcRule.FindStringSubmatchIndex(message); m != nil {
			message = message[m[2]:m[3]] +
				r.fg[palette.Green].Sprint(message[m[4]:m[5]]) +
				message[m[6]:m[7]] +
				r.fg[palette.Yellow].Sprint(message[m[8]:m[9]]) +
				message[m[1]:]
		}
	}
	return message
}

// indentWrap hard-wraps a message to the terminal width, indenting wrapped
// chunks under the message column. width -1 disables wrapping.
func indentWrap(message string, width, headerSize int) string {
	if width <= 0 {
		return message
	}
	message = strings.ReplaceAll(message, "\t", "    ")
	wrapArea := width - headerSize
	if wrapArea <= 0 {
		return message
	}
	var b strings.Builder
	for current := 0; current < len(message); {
		next := current + wrapArea
		if next > len(message) {
			next = len(message)
		}
		b.WriteString(message[current:next])
		if next < len(message) {
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", headerSize))
		}
		current = next
	}
	return b.String()
}
