package adb

import (
	"strings"
	"testing"

	"github.com/pidcat-go/pidcat/filter"
	"github.com/pidcat-go/pidcat/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseArgs(t *testing.T) {
	assert := assert.New(t)

	assert.Empty(BaseArgs(&types.AdbConfig{}))
	assert.Equal([]string{"-s", "emulator-5554"}, BaseArgs(&types.AdbConfig{Serial: "emulator-5554"}))
	assert.Equal([]string{"-d"}, BaseArgs(&types.AdbConfig{UseDevice: true}))
	assert.Equal([]string{"-e"}, BaseArgs(&types.AdbConfig{UseEmulator: true}))
}

func TestLogcatArgs(t *testing.T) {
	assert := assert.New(t)

	config := &types.Config{}
	assert.Equal([]string{"logcat", "-v", "threadtime"}, LogcatArgs(config))

	config = &types.Config{ExtraRegex: "Timeout", Adb: types.AdbConfig{Serial: "x"}}
	assert.Equal([]string{"-s", "x", "logcat", "-v", "threadtime", "-e", "Timeout"}, LogcatArgs(config))
}

const psOutput = `USER      PID   PPID  VSIZE  RSS   WCHAN    PC         NAME
root      1     0     8908   800   SyS_epol 0000000000 S /init
system    600   1     191000 4000  SyS_epol 0000000000 S system_server
u0_a12    123   600   98000  3000  SyS_epol 0000000000 S com.example.app
u0_a13    200   600   91000  2500  SyS_epol 0000000000 S com.other
root      50    1     12000  900   SyS_epol 0000000000 S /system/bin/sh
`

func TestParsePsFiltered(t *testing.T) {
	spec, err := filter.NewSpec(&types.Config{MinLevel: "V", Packages: []string{"com.example.app"}})
	require.NoError(t, err)

	pids := ParsePs(strings.NewReader(psOutput), false, spec)
	assert.Equal(t, map[int]string{123: "com.example.app"}, pids)
}

func TestParsePsAll(t *testing.T) {
	assert := assert.New(t)

	spec, err := filter.NewSpec(&types.Config{MinLevel: "V", AllLogs: true})
	require.NoError(t, err)

	pids := ParsePs(strings.NewReader(psOutput), true, spec)
	assert.Equal("com.example.app", pids[123])
	assert.Equal("com.other", pids[200])
	assert.NotContains(pids, 50, "/system binaries are skipped in all mode")
}
