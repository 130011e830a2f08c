package types

import (
	"flag"
	"testing"

	"github.com/jinzhu/configor"
	"github.com/stretchr/testify/assert"

	cli "github.com/urfave/cli/v2"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	config := &Config{}
	err := configor.Load(config, "../pidcat.yaml.sample")
	assert.NoError(err)
	assert.Equal(config.Packages, []string{"com.example.app"})
	assert.Equal(config.Tags, []string{"Timeout"})
	assert.Equal(config.IgnoreTags, []string{"Spam"})
	assert.Equal(config.MinLevel, "W")
	assert.Equal(config.TagWidth, 25)
	assert.Equal(config.PackageWidth, 20)
	assert.True(config.ShowPackage)
	assert.Equal(config.Adb.Serial, "emulator-5554")
	assert.True(config.Adb.KeepBacklog)
	assert.NoError(config.Validate())
}

func TestDefaults(t *testing.T) {
	assert := assert.New(t)

	config := &Config{}
	assert.NoError(configor.Load(config))
	assert.Equal(config.MinLevel, "V")
	assert.Equal(config.TagWidth, 20)
	assert.Equal(config.PackageWidth, 20)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	config := &Config{MinLevel: "V", TagWidth: 20, PackageWidth: 20}
	assert.NoError(config.Validate())

	config.TagWidth = 0
	assert.Error(config.Validate())

	config.TagWidth = 20
	config.MinLevel = "X"
	assert.Error(config.Validate())
}

func prepareWith(t *testing.T, config *Config, args []string) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	tags := cli.StringSlice{}
	set.Var(&tags, "tag", "")
	set.String("min-level", "", "")
	set.Int("tag-width", 0, "")
	assert.NoError(t, set.Parse(args))
	config.Prepare(cli.NewContext(nil, set, nil))
}

func TestPrepareSplitsPatterns(t *testing.T) {
	assert := assert.New(t)

	config := &Config{MinLevel: "V", TagWidth: 20, PackageWidth: 20}
	prepareWith(t, config, []string{"-tag", "Timeout, GC", "-tag", "^Net$", "com.example.app"})
	assert.Equal([]string{"Timeout", "GC", "^Net$"}, config.Tags)
	assert.Equal([]string{"com.example.app"}, config.Packages)
	assert.False(config.AllLogs)
}

func TestPrepareNoPackagesMeansAll(t *testing.T) {
	assert := assert.New(t)

	config := &Config{MinLevel: "V", TagWidth: 20, PackageWidth: 20}
	prepareWith(t, config, []string{})
	assert.True(config.AllLogs)
}
