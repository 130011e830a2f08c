// Package parser classifies raw logcat lines into structured results.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pidcat-go/pidcat/types"
)

// Kind tags a classification result.
type Kind int

// Classification kinds.
const (
	// KindRecord opens a new log record
	KindRecord Kind = iota
	// KindContinuation extends the open record's message
	KindContinuation
	// KindProcessStart is a process-start notification
	KindProcessStart
	// KindProcessDeath is a process-death notification
	KindProcessDeath
	// KindUnrecognized is noise and is dropped
	KindUnrecognized
)

// ProcessStart carries the fields of a start notification.
type ProcessStart struct {
	PID     int
	Package string
	Target  string
	UID     string
	GIDs    string
}

// ProcessDeath carries the fields of a death notification.
type ProcessDeath struct {
	PID     int
	Package string
}

// Result is one classified line.
type Result struct {
	Kind   Kind
	Record *types.Record
	Text   string
	Start  *ProcessStart
	Death  *ProcessDeath
}

var (
	// threadtime: 01-01 00:00:00.000  123  456 D TimeoutJob: started
	threadtimeLine = regexp.MustCompile(`^(\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d+) +(\d+) +(\d+) ([VDIWEF]) (.*?): (.*)$`)
	// brief: D/TimeoutJob(  123): started
	briefLine = regexp.MustCompile(`^([VDIWEF])/(.+?)\( *(\d+)\): (.*?)$`)

	nativeTagsLine = regexp.MustCompile(`.*nativeGetEnabledTags.*`)

	pidStart51     = regexp.MustCompile(`^.*: Start proc (\d+):([a-zA-Z0-9._:]+)/[a-z0-9]+ for (.*)$`)
	pidStart       = regexp.MustCompile(`^.*: Start proc ([a-zA-Z0-9._:]+) for ([a-z]+ [^:]+): pid=(\d+) uid=(\d+) gids=(.*)$`)
	pidStartDalvik = regexp.MustCompile(`^E/dalvikvm\(\s*(\d+)\): >>>>> ([a-zA-Z0-9._:]+) \[ userId:0 \| appId:(\d+) \]$`)

	pidKill  = regexp.MustCompile(`^Killing (\d+):([a-zA-Z0-9._:]+)/[^:]+: (.*)$`)
	pidLeave = regexp.MustCompile(`^No longer want ([a-zA-Z0-9._:]+) \(pid (\d+)\): .*$`)
	pidDeath = regexp.MustCompile(`^Process ([a-zA-Z0-9._:]+) \(pid (\d+)\) has died.?$`)

	// BacktraceLine matches native crash frames under the DEBUG tag
	BacktraceLine = regexp.MustCompile(`^#(.*?)pc\s(.*?)$`)
)

// Parser classifies one line at a time. It remembers whether a record is
// open so free text can be told apart from leading noise.
type Parser struct {
	recordOpen bool
}

// New makes a parser in the NoOpenRecord state.
func New() *Parser {
	return &Parser{}
}

// Parse classifies a single raw line. It never fails; malformed input
// becomes a continuation of the open record or is dropped.
func (p *Parser) Parse(raw string) Result {
	line := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Result{Kind: KindUnrecognized}
	}
	if nativeTagsLine.MatchString(line) {
		return Result{Kind: KindUnrecognized}
	}

	if start := parseStart(line); start != nil {
		p.recordOpen = false
		return Result{Kind: KindProcessStart, Start: start}
	}

	if rec, ok := parseLogLine(line); ok {
		if rec.Tag == "ActivityManager" {
			if death := parseDeath(rec.Message[0]); death != nil {
				p.recordOpen = false
				return Result{Kind: KindProcessDeath, Death: death}
			}
		}
		p.recordOpen = true
		return Result{Kind: KindRecord, Record: rec}
	}

	if p.recordOpen {
		return Result{Kind: KindContinuation, Text: line}
	}
	return Result{Kind: KindUnrecognized}
}

func parseLogLine(line string) (*types.Record, bool) {
	if m := threadtimeLine.FindStringSubmatch(line); m != nil {
		level, err := types.ParseLevel(m[4])
		if err != nil {
			return nil, false
		}
		pid, _ := strconv.Atoi(m[2])
		return &types.Record{
			Timestamp: m[1],
			Level:     level,
			PID:       pid,
			Tag:       strings.TrimSpace(m[5]),
			Message:   []string{m[6]},
		}, true
	}
	if m := briefLine.FindStringSubmatch(line); m != nil {
		level, err := types.ParseLevel(m[1])
		if err != nil {
			return nil, false
		}
		pid, _ := strconv.Atoi(m[3])
		return &types.Record{
			Level:   level,
			PID:     pid,
			Tag:     strings.TrimSpace(m[2]),
			Message: []string{m[4]},
		}, true
	}
	return nil, false
}

func parseStart(line string) *ProcessStart {
	if m := pidStart51.FindStringSubmatch(line); m != nil {
		pid, _ := strconv.Atoi(m[1])
		return &ProcessStart{PID: pid, Package: m[2], Target: m[3]}
	}
	if m := pidStart.FindStringSubmatch(line); m != nil {
		pid, _ := strconv.Atoi(m[3])
		return &ProcessStart{PID: pid, Package: m[1], Target: m[2], UID: m[4], GIDs: m[5]}
	}
	if m := pidStartDalvik.FindStringSubmatch(line); m != nil {
		pid, _ := strconv.Atoi(m[1])
		return &ProcessStart{PID: pid, Package: m[2], UID: m[3]}
	}
	return nil
}

func parseDeath(message string) *ProcessDeath {
	if m := pidKill.FindStringSubmatch(message); m != nil {
		pid, _ := strconv.Atoi(m[1])
		return &ProcessDeath{PID: pid, Package: m[2]}
	}
	if m := pidLeave.FindStringSubmatch(message); m != nil {
		pid, _ := strconv.Atoi(m[2])
		return &ProcessDeath{PID: pid, Package: m[1]}
	}
	if m := pidDeath.FindStringSubmatch(message); m != nil {
		pid, _ := strconv.Atoi(m[2])
		return &ProcessDeath{PID: pid, Package: m[1]}
	}
	return nil
}
