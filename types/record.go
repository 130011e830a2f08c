package types

import (
	"strings"

	"github.com/pidcat-go/pidcat/common"
)

// Level is a logcat severity, ordered from Verbose to Fatal.
type Level int

// The six logcat levels.
const (
	Verbose Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

// ParseLevel maps a logcat level letter to its Level.
func ParseLevel(letter string) (Level, error) {
	idx := strings.Index(common.LogLevels, strings.ToUpper(letter))
	if len(letter) != 1 || idx < 0 {
		return Verbose, common.ErrInvalidLevel
	}
	return Level(idx), nil
}

// Letter returns the single-letter form, e.g. "W".
func (l Level) Letter() string {
	if l < 0 || int(l) >= len(common.LogLevels) {
		return "?"
	}
	return string(common.LogLevels[int(l)])
}

// Record is one structured log unit. Message holds one entry per line;
// lines beyond the first were merged from continuations.
type Record struct {
	Timestamp string
	Level     Level
	PID       int
	Tag       string
	Message   []string
}

// Append merges a continuation line into the record.
func (r *Record) Append(line string) {
	r.Message = append(r.Message, line)
}

// PlainText renders the record as uncolored "tag: message" text, the form
// the extra-regex gate is matched against.
func (r *Record) PlainText() string {
	msg := ""
	if len(r.Message) > 0 {
		msg = r.Message[0]
	}
	return r.Tag + ": " + msg
}
