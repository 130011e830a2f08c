// Package stream runs the driving loop: read one line, classify it, update
// the registry or filter the record, render, write, repeat.
package stream

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pidcat-go/pidcat/filter"
	"github.com/pidcat-go/pidcat/logs"
	"github.com/pidcat-go/pidcat/parser"
	"github.com/pidcat-go/pidcat/registry"
	"github.com/pidcat-go/pidcat/render"
	"github.com/pidcat-go/pidcat/types"

	log "github.com/sirupsen/logrus"
)

// Driver owns the per-run state. Everything runs on the calling goroutine;
// a write completes before the next line is read, so a slow sink
// backpressures the source instead of buffering.
type Driver struct {
	spec     *filter.Spec
	parser   *parser.Parser
	registry *registry.Registry
	renderer *render.Renderer
	writer   *logs.Writer

	open     *types.Record
	openKept bool
}

// NewDriver assembles a driver around an already-validated filter spec.
func NewDriver(spec *filter.Spec, reg *registry.Registry, renderer *render.Renderer, writer *logs.Writer) *Driver {
	return &Driver{
		spec:     spec,
		parser:   parser.New(),
		registry: reg,
		renderer: renderer,
		writer:   writer,
	}
}

// Run consumes the source until end-of-stream or cancellation. A sink
// write failure aborts the run and is returned; parse noise never does.
func (d *Driver) Run(ctx context.Context, source io.Reader) error {
	buf := bufio.NewReader(source)
	for {
		select {
		case <-ctx.Done():
			log.Info("[stream] context canceled, stop reading")
			return nil
		default:
		}

		line, err := buf.ReadString('\n')
		if line != "" {
			if werr := d.handle(line); werr != nil {
				return werr
			}
		}
		if err != nil {
			if err != io.EOF {
				return err
			}
			log.Debug("[stream] source closed")
			return nil
		}
	}
}

func (d *Driver) handle(raw string) error {
	res := d.parser.Parse(raw)
	switch res.Kind {
	case parser.KindRecord:
		return d.handleRecord(res.Record)
	case parser.KindContinuation:
		return d.handleContinuation(res.Text)
	case parser.KindProcessStart:
		return d.handleStart(res.Start)
	case parser.KindProcessDeath:
		return d.handleDeath(res.Death)
	default:
		return nil
	}
}

func (d *Driver) handleRecord(rec *types.Record) error {
	d.open = rec
	d.openKept = d.spec.ShouldKeep(rec, d.registry)
	if !d.openKept {
		return nil
	}

	// native crash frames arrive under DEBUG owned by the crash daemon;
	// show them against the app that just started
	if rec.Tag == "DEBUG" {
		if trimmed := strings.TrimLeft(rec.Message[0], " "); parser.BacktraceLine.MatchString(trimmed) {
			rec.Message[0] = trimmed
			if last := d.registry.LastStarted(); last != 0 {
				rec.PID = last
			}
		}
	}

	pkg := d.registry.DisplayPackageOf(rec.PID)
	return d.writer.WriteLine(d.renderer.Primary(rec, pkg))
}

func (d *Driver) handleContinuation(text string) error {
	if d.open == nil {
		return nil
	}
	d.open.Append(text)
	if !d.openKept {
		return nil
	}
	return d.writer.WriteLine(d.renderer.Continuation(text))
}

// Lifecycle banners obey the package filter: a start or death of a package
// nobody asked for prints nothing.
func (d *Driver) handleStart(start *parser.ProcessStart) error {
	d.closeRecord()
	d.registry.OnStart(start.PID, start.Package)
	if !d.spec.MatchPackage(start.Package) {
		return nil
	}
	for _, line := range d.renderer.StartBanner(start) {
		if err := d.writer.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) handleDeath(death *parser.ProcessDeath) error {
	d.closeRecord()
	_, known := d.registry.PackageOf(death.PID)
	d.registry.OnDeath(death.PID)
	if !known || !d.spec.MatchPackage(death.Package) {
		return nil
	}
	for _, line := range d.renderer.DeathBanner(death) {
		if err := d.writer.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// closeRecord transitions back to the no-open-record state. Every message
// line was already written on arrival, so there is nothing left to flush.
func (d *Driver) closeRecord() {
	d.open = nil
	d.openKept = false
}
