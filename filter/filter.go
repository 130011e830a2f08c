// Package filter decides which records reach the terminal.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pidcat-go/pidcat/common"
	"github.com/pidcat-go/pidcat/registry"
	"github.com/pidcat-go/pidcat/types"
)

// metaChars decides pattern classification: any of these makes a pattern a
// regex, otherwise it is a literal substring. `-t Timeout` is substring,
// `-t "^Timeout$"` is regex.
const metaChars = `^$.*+?()[]{}|\`

type patternKind int

const (
	substringPattern patternKind = iota
	regexPattern
)

// pattern is classified once when the spec is built and matched with a
// single switch per line.
type pattern struct {
	kind patternKind
	text string
	re   *regexp.Regexp
}

func classify(raw string) (pattern, error) {
	if strings.ContainsAny(raw, metaChars) {
		re, err := regexp.Compile(raw)
		if err != nil {
			return pattern{}, fmt.Errorf("%w %q: %s", common.ErrBadPattern, raw, err)
		}
		return pattern{kind: regexPattern, text: raw, re: re}, nil
	}
	return pattern{kind: substringPattern, text: raw}, nil
}

func (p pattern) matches(tag string) bool {
	switch p.kind {
	case regexPattern:
		return p.re.MatchString(tag)
	default:
		return strings.Contains(tag, p.text)
	}
}

// Spec is the compiled, immutable filter configuration of one run.
type Spec struct {
	namedProcesses []string
	catchall       []string
	include        []pattern
	exclude        []pattern
	minLevel       types.Level
	extra          *regexp.Regexp
	allLogs        bool
}

// NewSpec compiles the filter configuration. A pattern that fails to
// compile rejects the whole config, nothing is partially applied.
func NewSpec(config *types.Config) (*Spec, error) {
	spec := &Spec{allLogs: config.AllLogs}

	for _, pkg := range config.Packages {
		if strings.Contains(pkg, ":") {
			spec.namedProcesses = append(spec.namedProcesses, strings.TrimSuffix(pkg, ":"))
		} else {
			spec.catchall = append(spec.catchall, pkg)
		}
	}

	var err error
	if spec.minLevel, err = types.ParseLevel(config.MinLevel); err != nil {
		return nil, err
	}
	for _, raw := range config.Tags {
		p, err := classify(raw)
		if err != nil {
			return nil, err
		}
		spec.include = append(spec.include, p)
	}
	for _, raw := range config.IgnoreTags {
		p, err := classify(raw)
		if err != nil {
			return nil, err
		}
		spec.exclude = append(spec.exclude, p)
	}
	if config.ExtraRegex != "" {
		if spec.extra, err = regexp.Compile(config.ExtraRegex); err != nil {
			return nil, fmt.Errorf("%w %q: %s", common.ErrBadPattern, config.ExtraRegex, err)
		}
	}
	return spec, nil
}

// ShouldKeep applies the gates in order, short-circuiting on the first
// failing one.
func (s *Spec) ShouldKeep(rec *types.Record, reg *registry.Registry) bool {
	if s.FiltersPackages() {
		pkg, ok := reg.PackageOf(rec.PID)
		if !ok || !s.MatchPackage(pkg) {
			return false
		}
	}
	if rec.Level < s.minLevel {
		return false
	}
	if len(s.include) > 0 && !matchAny(rec.Tag, s.include) {
		return false
	}
	if matchAny(rec.Tag, s.exclude) {
		return false
	}
	if s.extra != nil && !s.extra.MatchString(rec.PlainText()) {
		return false
	}
	return true
}

// MatchPackage reports whether a process token is one of the requested
// packages. A bare package name matches every process of that package,
// a name with a colon matches that exact process.
func (s *Spec) MatchPackage(token string) bool {
	if !s.FiltersPackages() {
		return true
	}
	for _, p := range s.namedProcesses {
		if token == p {
			return true
		}
	}
	base := token
	if idx := strings.Index(token, ":"); idx != -1 {
		base = token[:idx]
	}
	for _, p := range s.catchall {
		if base == p {
			return true
		}
	}
	return false
}

// FiltersPackages reports whether the package gate is active.
func (s *Spec) FiltersPackages() bool {
	if s.allLogs {
		return false
	}
	return len(s.namedProcesses) > 0 || len(s.catchall) > 0
}

// HasTagFilters reports whether any tag pattern is active. The renderer
// keeps the tag column populated while this holds.
func (s *Spec) HasTagFilters() bool {
	return len(s.include) > 0 || len(s.exclude) > 0
}

// MinLevel returns the severity threshold.
func (s *Spec) MinLevel() types.Level {
	return s.minLevel
}

func matchAny(tag string, patterns []pattern) bool {
	for _, p := range patterns {
		if p.matches(tag) {
			return true
		}
	}
	return false
}
