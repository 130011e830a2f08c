// Package adb spawns and queries the device logger. It is the boundary to
// the external log source; everything downstream only sees raw lines.
package adb

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/pidcat-go/pidcat/common"
	"github.com/pidcat-go/pidcat/filter"
	"github.com/pidcat-go/pidcat/types"

	log "github.com/sirupsen/logrus"
)

var (
	// psLine matches one `adb shell ps` row: pid in the second column,
	// process name in the last
	psLine = regexp.MustCompile(`^\w+\s+(\w+)\s+\w+\s+\w+\s+\w+\s+\w+\s+\w+\s+\w\s([\w|\.|\/]+)$`)
	// taskRecord pulls the foreground package out of a dumpsys dump
	taskRecord = regexp.MustCompile(`.*TaskRecord.*A[= ]([^ ^}]*)`)
)

// BaseArgs builds the device-selection argv prefix.
func BaseArgs(config *types.AdbConfig) []string {
	args := []string{}
	if config.Serial != "" {
		args = append(args, "-s", config.Serial)
	}
	if config.UseDevice {
		args = append(args, "-d")
	}
	if config.UseEmulator {
		args = append(args, "-e")
	}
	return args
}

// LogcatArgs builds the argv for the long-running logcat stream. The extra
// regex is forwarded as a device-side pre-filter; the core applies it
// again, so a logcat too old for -e only over-delivers.
func LogcatArgs(config *types.Config) []string {
	args := append(BaseArgs(&config.Adb), "logcat", "-v", common.LogcatFormat)
	if config.ExtraRegex != "" {
		args = append(args, "-e", config.ExtraRegex)
	}
	return args
}

// Source is a running logcat subprocess.
type Source struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Open starts the logcat stream. The subprocess dies with ctx, which
// closes the pipe and ends the read loop.
func Open(ctx context.Context, config *types.Config) (*Source, error) {
	if _, err := exec.LookPath("adb"); err != nil {
		return nil, common.ErrNoAdb
	}
	cmd := exec.CommandContext(ctx, "adb", LogcatArgs(config)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	log.Debugf("[adb] started %s", strings.Join(cmd.Args, " "))
	return &Source{cmd: cmd, stdout: stdout}, nil
}

// Reader exposes the raw line stream.
func (s *Source) Reader() io.Reader {
	return s.stdout
}

// Close reaps the subprocess.
func (s *Source) Close() error {
	s.stdout.Close()
	return s.cmd.Wait()
}

// ClearBacklog drops the device-side log buffer so the stream starts
// fresh. Failure only means some backlog shows up, so it is logged and
// ignored.
func ClearBacklog(ctx context.Context, config *types.Config) {
	args := append(BaseArgs(&config.Adb), "logcat", "-c")
	if err := exec.CommandContext(ctx, "adb", args...).Run(); err != nil {
		log.Warnf("[adb] clearing backlog failed: %v", err)
	}
}

// InitialPids seeds the registry with the processes already running when
// the stream starts, via `adb shell ps`. Without the all flag only
// processes matching the package filter are kept; with it everything but
// /system binaries is.
func InitialPids(ctx context.Context, config *types.Config, spec *filter.Spec) (map[int]string, error) {
	args := append(BaseArgs(&config.Adb), "shell", "ps")
	out, err := exec.CommandContext(ctx, "adb", args...).Output()
	if err != nil {
		return nil, err
	}
	return ParsePs(strings.NewReader(string(out)), config.AllLogs, spec), nil
}

// ParsePs extracts pid to process bindings from ps output.
func ParsePs(r io.Reader, all bool, spec *filter.Spec) map[int]string {
	pids := map[int]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := psLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		pid, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		proc := m[2]
		if !all && !spec.MatchPackage(proc) {
			continue
		}
		if all && strings.HasPrefix(proc, "/system") {
			continue
		}
		pids[pid] = proc
	}
	return pids
}

// CurrentPackage asks the device which app owns the foreground task.
func CurrentPackage(ctx context.Context, config *types.Config) (string, error) {
	args := append(BaseArgs(&config.Adb), "shell", "dumpsys", "activity", "activities")
	out, err := exec.CommandContext(ctx, "adb", args...).Output()
	if err != nil {
		return "", err
	}
	if m := taskRecord.FindStringSubmatch(string(out)); m != nil {
		return m[1], nil
	}
	return "", nil
}
