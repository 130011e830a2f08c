package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pidcat-go/pidcat/adb"
	"github.com/pidcat-go/pidcat/filter"
	"github.com/pidcat-go/pidcat/logs"
	"github.com/pidcat-go/pidcat/registry"
	"github.com/pidcat-go/pidcat/render"
	"github.com/pidcat-go/pidcat/stream"
	"github.com/pidcat-go/pidcat/types"
	"github.com/pidcat-go/pidcat/utils"
	"github.com/pidcat-go/pidcat/version"

	"github.com/jinzhu/configor"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func setupLogLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	// stdout carries the filtered stream, diagnostics stay on stderr
	log.SetOutput(os.Stderr)
	return nil
}

func initConfig(c *cli.Context) *types.Config {
	config := &types.Config{}

	var err error
	if path := c.String("config"); path != "" {
		err = configor.Load(config, path)
	} else {
		err = configor.Load(config)
	}
	if err != nil {
		log.Fatalf("[main] load config failed %v", err)
	}

	config.Prepare(c)
	if err := config.Validate(); err != nil {
		log.Fatalf("[main] invalid config: %v", err)
	}
	return config
}

func serve(c *cli.Context) error {
	if err := setupLogLevel(c.String("log-level")); err != nil {
		log.Fatal(err)
	}

	config := initConfig(c)

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	stdinIsPipe := !isatty.IsTerminal(os.Stdin.Fd())

	if config.Adb.CurrentApp && !stdinIsPipe {
		pkg, err := adb.CurrentPackage(ctx, config)
		if err != nil {
			log.Warnf("[main] current app lookup failed: %v", err)
		} else if pkg != "" {
			config.Packages = append(config.Packages, pkg)
		}
	}

	// compiles every pattern; a bad regex must stop us before the
	// stream starts
	spec, err := filter.NewSpec(config)
	if err != nil {
		log.Fatalf("[main] invalid filter: %v", err)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		config.NoColor = true
	}

	writer, err := logs.NewWriter(os.Stdout, config.OutputFile)
	if err != nil {
		return err
	}
	defer writer.Close()

	reg := registry.New()
	renderer := render.New(config, spec.HasTagFilters(), utils.TermWidth)
	driver := stream.NewDriver(spec, reg, renderer, writer)

	var source io.Reader
	if stdinIsPipe {
		source = os.Stdin
		log.Info("[main] reading from stdin")
	} else {
		if !config.Adb.KeepBacklog {
			adb.ClearBacklog(ctx, config)
		}
		pids, err := adb.InitialPids(ctx, config, spec)
		if err != nil {
			log.Warnf("[main] initial pid scan failed: %v", err)
		}
		for pid, pkg := range pids {
			reg.OnStart(pid, pkg)
		}
		adbSource, err := adb.Open(ctx, config)
		if err != nil {
			return err
		}
		defer adbSource.Close()
		source = adbSource.Reader()
	}

	if len(config.Packages) > 0 {
		log.Infof("[main] listening for logcat messages from packages: %s", strings.Join(config.Packages, ", "))
	} else {
		log.Info("[main] listening for logcat messages")
	}

	if err := driver.Run(ctx, source); err != nil {
		return err
	}
	return writer.Close()
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Print(version.String())
	}

	app := &cli.App{
		Name:      version.NAME,
		Usage:     "Filter logcat by package name and colorize output",
		ArgsUsage: "[package ...]",
		Version:   version.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "config file path, in yaml",
				EnvVars: []string{"PIDCAT_CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "WARNING",
				Usage:   "set diagnostic log level",
				EnvVars: []string{"PIDCAT_LOG_LEVEL"},
			},
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "filter output by specified tag(s), comma-separated entries allowed",
			},
			&cli.StringSliceFlag{
				Name:    "ignore-tag",
				Aliases: []string{"i"},
				Usage:   "filter output by ignoring specified tag(s)",
			},
			&cli.StringFlag{
				Name:    "min-level",
				Aliases: []string{"l"},
				Usage:   "minimum level to be displayed, one of V D I W E F",
			},
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "print all log messages, disables the package filter",
			},
			&cli.StringFlag{
				Name:    "regex",
				Aliases: []string{"r"},
				Usage:   "print only lines matching this regex",
			},
			&cli.IntFlag{
				Name:    "tag-width",
				Aliases: []string{"m"},
				Usage:   "width of log tag",
			},
			&cli.IntFlag{
				Name:    "package-width",
				Aliases: []string{"n"},
				Usage:   "width of the package/process name column",
			},
			&cli.BoolFlag{
				Name:    "show-package",
				Aliases: []string{"p"},
				Usage:   "show the package/process name of each log message",
			},
			&cli.BoolFlag{
				Name:  "always-display-tags",
				Usage: "always display the tag name",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colors",
			},
			&cli.BoolFlag{
				Name:  "color-gc",
				Usage: "color garbage collection messages",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "also write plain output to this file",
			},
			&cli.StringFlag{
				Name:    "serial",
				Aliases: []string{"s"},
				Usage:   "device serial number (adb -s option)",
			},
			&cli.BoolFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "use first USB device for log input (adb -d option)",
			},
			&cli.BoolFlag{
				Name:    "emulator",
				Aliases: []string{"e"},
				Usage:   "use first emulator for log input (adb -e option)",
			},
			&cli.BoolFlag{
				Name:    "keep",
				Aliases: []string{"k"},
				Usage:   "keep the entire device log backlog before running",
			},
			&cli.BoolFlag{
				Name:  "current",
				Usage: "filter by the currently running app",
			},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		log.Errorf("Error running %s: %v", version.NAME, err)
		os.Exit(1)
	}
}
