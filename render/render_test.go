package render

import (
	"strings"
	"testing"

	"github.com/pidcat-go/pidcat/logs"
	"github.com/pidcat-go/pidcat/parser"
	"github.com/pidcat-go/pidcat/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainConfig() *types.Config {
	return &types.Config{TagWidth: 20, PackageWidth: 20, MinLevel: "V", NoColor: true}
}

func record(tag, message string) *types.Record {
	return &types.Record{Level: types.Debug, PID: 123, Tag: tag, Message: []string{message}}
}

func TestPlainLayout(t *testing.T) {
	r := New(plainConfig(), false, nil)
	line := r.Primary(record("TimeoutJob", "started"), "com.example.app")
	assert.Equal(t, "TimeoutJob            D  started", line)
	assert.NotContains(t, line, "\x1b")
}

func TestColoredMatchesPlainByteForByte(t *testing.T) {
	colored := New(&types.Config{TagWidth: 20, PackageWidth: 20, ShowPackage: true}, false, nil)
	plain := New(&types.Config{TagWidth: 20, PackageWidth: 20, ShowPackage: true, NoColor: true}, false, nil)

	rec := record("TimeoutJob", "started")
	colorLine := colored.Primary(rec, "com.example.app")
	plainLine := plain.Primary(rec, "com.example.app")

	assert.Contains(t, colorLine, "\x1b[")
	assert.Equal(t, plainLine, logs.Strip(colorLine))
}

func TestTagTruncation(t *testing.T) {
	r := New(plainConfig(), false, nil)
	line := r.Primary(record("AVeryLongTagNameThatExceedsTheColumn", "m"), "")
	assert.Equal(t, "AVeryLongTagNameT...  D  m", line)
}

func TestTagElision(t *testing.T) {
	assert := assert.New(t)

	r := New(plainConfig(), false, nil)
	first := r.Primary(record("TimeoutJob", "one"), "")
	second := r.Primary(record("TimeoutJob", "two"), "")
	assert.True(strings.HasPrefix(first, "TimeoutJob"))
	assert.True(strings.HasPrefix(second, strings.Repeat(" ", 20)+"  D "), "repeated tag is elided")

	third := r.Primary(record("Other", "three"), "")
	assert.True(strings.HasPrefix(third, "Other"))
}

func TestForcedTagsDisableElision(t *testing.T) {
	r := New(plainConfig(), true, nil)
	r.Primary(record("TimeoutJob", "one"), "")
	second := r.Primary(record("TimeoutJob", "two"), "")
	assert.True(t, strings.HasPrefix(second, "TimeoutJob"))
}

func TestPackageColumn(t *testing.T) {
	assert := assert.New(t)

	cfg := plainConfig()
	cfg.ShowPackage = true
	r := New(cfg, false, nil)

	line := r.Primary(record("Tag", "m"), "com.example.app")
	// package left-justified, two spaces, tag right-justified
	assert.True(strings.HasPrefix(line, "com.example.app     "))
	assert.Contains(line, "                 Tag  D  m")

	long := r.Primary(record("Tag", "m"), "com.example.application.background")
	assert.True(strings.HasPrefix(long, "com.example.appli..."))
}

func TestHeaderSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(25, New(plainConfig(), false, nil).HeaderSize())

	cfg := plainConfig()
	cfg.ShowPackage = true
	assert.Equal(47, New(cfg, false, nil).HeaderSize())
}

func TestRenderMultiLineRecord(t *testing.T) {
	assert := assert.New(t)

	r := New(plainConfig(), false, nil)
	rec := record("AndroidRuntime", "FATAL EXCEPTION: main")
	rec.Append("    at com.example.Main.onCreate(Main.java:10)")

	lines := r.Render(rec, "")
	require.Len(t, lines, 2)
	assert.True(strings.HasPrefix(lines[0], "AndroidRuntime"))
	assert.Equal(strings.Repeat(" ", 25)+"    at com.example.Main.onCreate(Main.java:10)", lines[1])
}

func TestIndentWrap(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("abcdef", indentWrap("abcdef", -1, 25))
	assert.Equal("ab", indentWrap("ab", 40, 40), "no wrap area left disables wrapping")

	wrapped := indentWrap("0123456789", 30, 25)
	assert.Equal("01234\n"+strings.Repeat(" ", 25)+"56789", wrapped)

	assert.Equal("a    b", indentWrap("a\tb", 80, 10))
}

func TestWrappedPrimary(t *testing.T) {
	cfg := plainConfig()
	r := New(cfg, false, func() int { return 30 })
	line := r.Primary(record("Tag", "0123456789"), "")
	assert.Contains(t, line, "01234\n"+strings.Repeat(" ", 25)+"56789")
}

func TestStartBanner(t *testing.T) {
	assert := assert.New(t)

	r := New(plainConfig(), false, nil)
	lines := r.StartBanner(&parser.ProcessStart{
		PID:     123,
		Package: "com.example.app",
		Target:  "activity com.example.app/.MainActivity",
		UID:     "10012",
		GIDs:    "{50012}",
	})
	require.Len(t, lines, 4)
	assert.Equal("", lines[0])
	assert.Contains(lines[1], " Process com.example.app created for activity com.example.app/.MainActivity")
	assert.Contains(lines[2], " PID: 123   UID: 10012   GIDs: {50012}")
	assert.Equal("", lines[3])
}

func TestDeathBanner(t *testing.T) {
	r := New(plainConfig(), false, nil)
	lines := r.DeathBanner(&parser.ProcessDeath{PID: 123, Package: "com.example.app"})
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], " Process com.example.app (PID: 123) ended")
}

func TestBannerResetsTagElision(t *testing.T) {
	r := New(plainConfig(), false, nil)
	r.Primary(record("TimeoutJob", "one"), "")
	r.DeathBanner(&parser.ProcessDeath{PID: 1, Package: "p"})
	line := r.Primary(record("TimeoutJob", "two"), "")
	assert.True(t, strings.HasPrefix(line, "TimeoutJob"))
}

func TestStrictModeRule(t *testing.T) {
	assert := assert.New(t)

	msg := "StrictMode policy violation; ~duration=319 ms: blocked"

	colored := New(&types.Config{TagWidth: 20, PackageWidth: 20}, false, nil)
	line := colored.Primary(record("StrictMode", msg), "")
	assert.Contains(line, "\x1b[33m319 ms")

	plain := New(plainConfig(), false, nil)
	assert.Contains(plain.Primary(record("StrictMode", msg), ""), msg)
}

func TestGCRuleGated(t *testing.T) {
	assert := assert.New(t)

	msg := "GC_CONCURRENT freed 1012K, 53% free 3213K/6151K, paused 2ms+2ms"

	off := New(&types.Config{TagWidth: 20, PackageWidth: 20}, false, nil)
	assert.NotContains(off.Primary(record("dalvikvm", msg), ""), "\x1b[32m")

	cfg := &types.Config{TagWidth: 20, PackageWidth: 20, ColorGC: true}
	on := New(cfg, false, nil)
	assert.Contains(on.Primary(record("dalvikvm", msg), ""), "\x1b[32mfreed 1012K")
}
