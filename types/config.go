package types

import (
	"strings"

	"github.com/pidcat-go/pidcat/common"

	cli "github.com/urfave/cli/v2"
)

// AdbConfig selects the device the log source attaches to.
type AdbConfig struct {
	Serial      string `yaml:"serial"`
	UseDevice   bool   `yaml:"device"`
	UseEmulator bool   `yaml:"emulator"`
	KeepBacklog bool   `yaml:"keep"`
	CurrentApp  bool   `yaml:"current"`
}

// Config contain all configs
type Config struct {
	Packages   []string `yaml:"packages"`
	AllLogs    bool     `yaml:"all"`
	Tags       []string `yaml:"tags"`
	IgnoreTags []string `yaml:"ignore_tags"`
	MinLevel   string   `yaml:"min_level" default:"V"`
	ExtraRegex string   `yaml:"regex"`

	TagWidth     int    `yaml:"tag_width" default:"20"`
	PackageWidth int    `yaml:"package_width" default:"20"`
	ShowPackage  bool   `yaml:"show_package"`
	AlwaysTags   bool   `yaml:"always_display_tags"`
	NoColor      bool   `yaml:"no_color"`
	ColorGC      bool   `yaml:"color_gc"`
	OutputFile   string `yaml:"output"`

	Adb AdbConfig `yaml:"adb"`
}

// Prepare overwrites config from cli flags.
func (config *Config) Prepare(c *cli.Context) {
	if c.Args().Len() > 0 {
		config.Packages = append(config.Packages, c.Args().Slice()...)
	}
	if len(c.StringSlice("tag")) > 0 {
		config.Tags = append(config.Tags, c.StringSlice("tag")...)
	}
	if len(c.StringSlice("ignore-tag")) > 0 {
		config.IgnoreTags = append(config.IgnoreTags, c.StringSlice("ignore-tag")...)
	}
	if c.String("min-level") != "" {
		config.MinLevel = c.String("min-level")
	}
	if c.Bool("all") {
		config.AllLogs = true
	}
	if c.String("regex") != "" {
		config.ExtraRegex = c.String("regex")
	}
	if c.IsSet("tag-width") {
		config.TagWidth = c.Int("tag-width")
	}
	if c.IsSet("package-width") {
		config.PackageWidth = c.Int("package-width")
	}
	if c.Bool("show-package") {
		config.ShowPackage = true
	}
	if c.Bool("always-display-tags") {
		config.AlwaysTags = true
	}
	if c.Bool("no-color") {
		config.NoColor = true
	}
	if c.Bool("color-gc") {
		config.ColorGC = true
	}
	if c.String("output") != "" {
		config.OutputFile = c.String("output")
	}
	if c.String("serial") != "" {
		config.Adb.Serial = c.String("serial")
	}
	if c.Bool("device") {
		config.Adb.UseDevice = true
	}
	if c.Bool("emulator") {
		config.Adb.UseEmulator = true
	}
	if c.Bool("keep") {
		config.Adb.KeepBacklog = true
	}
	if c.Bool("current") {
		config.Adb.CurrentApp = true
	}

	// comma-separated entries inside one flag are separate patterns
	config.Tags = splitPatterns(config.Tags)
	config.IgnoreTags = splitPatterns(config.IgnoreTags)

	// no package at all means show everything
	if len(config.Packages) == 0 && !config.Adb.CurrentApp {
		config.AllLogs = true
	}
}

// Validate rejects a config the stream must never start with.
func (config *Config) Validate() error {
	if config.TagWidth <= 0 || config.PackageWidth <= 0 {
		return common.ErrInvalidWidth
	}
	if _, err := ParseLevel(config.MinLevel); err != nil {
		return err
	}
	return nil
}

func splitPatterns(raw []string) []string {
	patterns := []string{}
	for _, entry := range raw {
		for _, p := range strings.Split(entry, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}
