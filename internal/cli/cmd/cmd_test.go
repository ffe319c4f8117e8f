package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/longan/pkg/clipboard"
)

var testNow = time.Date(2021, time.December, 15, 10, 0, 0, 0, time.UTC)

// setupCLI points config and data at temp dirs and swaps the system
// clipboard for an in-memory one.
func setupCLI(t *testing.T) *clipboard.MemoryBackend {
	t.Helper()
	t.Setenv("LONGAN_CONFIG_DIR", t.TempDir())
	t.Setenv("LONGAN_DATA_DIR", t.TempDir())
	t.Setenv("LONGAN_HISTORY_DB", "")
	t.Setenv("LONGAN_TIMEZONE", "UTC")
	t.Setenv("LONGAN_POLL_INTERVAL", "10ms")
	t.Setenv("LONGAN_LOG_LEVEL", "error")
	t.Setenv("LONGAN_WATCH_ZONE", "false")
	t.Setenv("NO_COLOR", "")

	backend := clipboard.NewMemoryBackend()
	prevBackend, prevClock := newBackend, newClock
	newBackend = func() clipboard.Backend { return backend }
	newClock = func() clockwork.Clock { return clockwork.NewFakeClockAt(testNow) }
	t.Cleanup(func() {
		newBackend, newClock = prevBackend, prevClock
	})
	return backend
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(context.Background(), stdin, args...)
}

func runCLIContext(ctx context.Context, stdin string, args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	require.NoError(t, err, "longan %s", strings.Join(args, " "))
	return out
}

func TestClipCopyAndPaste(t *testing.T) {
	backend := setupCLI(t)

	assert.Equal(t, "✓ Copied text to clipboard\n", mustRun(t, "clip", "copy", "hello", "world"))
	assert.Equal(t, "hello world", mustRun(t, "clip", "paste", "--raw"))

	text, _ := backend.ReadAll()
	assert.Equal(t, "hello world", text)

	out, err := runCLI(t, "piped\n", "clip", "copy")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied text")
	assert.Equal(t, "piped", mustRun(t, "clip", "paste", "--raw"))
}

func TestClipCopyURIAndIntent(t *testing.T) {
	backend := setupCLI(t)

	assert.Contains(t, mustRun(t, "clip", "copy", "--uri", "https://example.com/a"), "Copied uri")
	text, _ := backend.ReadAll()
	assert.Equal(t, "https://example.com/a", text)

	out := mustRun(t, "clip", "copy", "--intent-action", "view", "--intent-data", "geo:0,0", "--extra", "zoom=3")
	assert.Contains(t, out, "Copied intent")

	want := (&clipboard.Intent{Action: "view", Data: "geo:0,0", Extras: map[string]string{"zoom": "3"}}).URI()
	text, _ = backend.ReadAll()
	assert.Equal(t, want, text)
}

func TestClipPasteJSONAndClear(t *testing.T) {
	setupCLI(t)
	mustRun(t, "clip", "copy", "hello")

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "clip", "paste", "--json")), &view))
	assert.Equal(t, "text", view["type"])
	assert.Equal(t, "hello", view["text"])

	assert.Equal(t, "✓ Clipboard cleared\n", mustRun(t, "clip", "clear"))
	assert.Equal(t, "Clipboard is empty\n", mustRun(t, "clip", "paste"))
	assert.Equal(t, "null\n", mustRun(t, "clip", "paste", "--json"))
}

func TestClipHistoryAndFlush(t *testing.T) {
	setupCLI(t)

	mustRun(t, "clip", "copy", "--record", "first")
	mustRun(t, "clip", "copy", "--record", "second")
	mustRun(t, "clip", "copy", "--record", "first")

	var views []map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "clip", "history", "--json")), &views))
	require.Len(t, views, 2)
	counts := map[string]float64{}
	for _, v := range views {
		counts[v["text"].(string)] = v["occurrences"].(float64)
	}
	assert.Equal(t, map[string]float64{"first": 2, "second": 1}, counts)

	out := mustRun(t, "clip", "history")
	assert.Contains(t, out, "Clipboard History (2 entries)")

	assert.Equal(t, "✓ Removed 1 clips, 1 left\n", mustRun(t, "clip", "flush", "--keep", "1"))
	assert.Empty(t, mustRun(t, "clip", "flush", "-q"))
}

func TestClipWatch(t *testing.T) {
	backend := setupCLI(t)
	newClock = func() clockwork.Clock { return clockwork.NewRealClock() }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = backend.WriteAll(fmt.Sprintf("external-%d", i))
			}
		}
	}()

	out, err := runCLIContext(ctx, "", "clip", "watch", "--count", "1", "--timeout", "5s", "--record")
	cancel()
	require.NoError(t, err)
	assert.Contains(t, out, "text external-")

	history := mustRun(t, "clip", "history", "--compact")
	assert.Contains(t, history, "external-")
}

func TestDateFormatAndParse(t *testing.T) {
	setupCLI(t)

	assert.Equal(t, "2021-12-15\n", mustRun(t, "date", "format", "-p", "yyyy-MM-dd"))
	assert.Equal(t, "2021-12-15 10:00:00\n", mustRun(t, "date", "format"))
	assert.Equal(t, "2021-01-01 09:00\n",
		mustRun(t, "date", "format", "-p", "yyyy-MM-dd HH:mm", "-z", "Asia/Tokyo", "1609459200000"))

	assert.Equal(t, "2021-01-01T00:00:00Z\n", mustRun(t, "date", "parse", "-p", "yyyy-MM-dd", "2021-01-01"))
	assert.Equal(t, "1609459200000\n", mustRun(t, "date", "parse", "-p", "yyyy-MM-dd", "2021-01-01", "--epoch"))
	assert.Equal(t, "1609459200\n", mustRun(t, "date", "parse", "2021-01-01 00:00:00", "--seconds"))

	_, err := runCLI(t, "", "date", "parse", "-p", "yyyy-MM-dd", "01/01/2021")
	assert.Error(t, err)
}

func TestDateAdjustAndWith(t *testing.T) {
	setupCLI(t)

	assert.Equal(t, "2022-01-01\n", mustRun(t, "date", "adjust", "2021-12-15", "first-day-of-next-month"))
	assert.Equal(t, "2021-12-31\n", mustRun(t, "date", "adjust", "today", "last-day-of-month"))
	assert.Equal(t, "2021-12-20\n", mustRun(t, "date", "adjust", "today", "next", "--weekday", "monday"))
	assert.Equal(t, "2024-05-09\n",
		mustRun(t, "date", "adjust", "2024-05-01", "day-of-week-in-month", "-w", "thu", "-o", "2"))

	_, err := runCLI(t, "", "date", "adjust", "today", "next")
	assert.Error(t, err)

	assert.Equal(t, "2021-02-28T10:00:00\n", mustRun(t, "date", "with", "2021-01-31T10:00:00", "month", "2"))
	assert.Equal(t, "2024-02-29T00:00:00\n", mustRun(t, "date", "with", "2024-01-01", "day-of-year", "60"))
	_, err = runCLI(t, "", "date", "with", "2021-01-01T00:00:00", "hour", "24")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	setupCLI(t)

	assert.Equal(t, "2021-02-28T10:00:00Z\n", mustRun(t, "date", "plus", "2021-01-31T10:00:00Z", "1", "month"))
	assert.Equal(t, "2021-12-14T10:00:00Z\n", mustRun(t, "date", "minus", "now", "1", "day"))
	assert.Equal(t, "2021-12-15 13:00\n", mustRun(t, "date", "plus", "now", "3", "hours", "-p", "yyyy-MM-dd HH:mm"))

	from, to := "2021-01-01T00:00:00Z", "2021-03-01T00:00:00Z"
	assert.Equal(t, "59\n", mustRun(t, "date", "until", from, to))
	assert.Equal(t, "2\n", mustRun(t, "date", "until", from, to, "--unit", "months"))
	assert.Equal(t, "-2\n", mustRun(t, "date", "until", to, from, "-u", "month"))
	assert.Equal(t, "P2M\n", mustRun(t, "date", "until", from, to, "--period"))
}

func TestDateToday(t *testing.T) {
	setupCLI(t)

	assert.Equal(t, "2021-12-15\n", mustRun(t, "date", "today"))
	assert.Equal(t, "today\n", mustRun(t, "date", "today", "2021-12-15"))
	assert.Equal(t, "yesterday\n", mustRun(t, "date", "today", "yesterday"))
	assert.Equal(t, "5 days from today\n", mustRun(t, "date", "today", "2021-12-20"))
}

func TestConfigCommands(t *testing.T) {
	setupCLI(t)

	path := strings.TrimSpace(mustRun(t, "config", "path"))
	assert.True(t, strings.HasSuffix(path, "config.yaml"))

	assert.Contains(t, mustRun(t, "config", "init"), "Configuration initialized at: "+path)
	_, err := runCLI(t, "", "config", "init")
	assert.Error(t, err)
	mustRun(t, "config", "init", "--force")

	assert.Equal(t, "Configuration is valid\n", mustRun(t, "config", "validate"))
	assert.Contains(t, mustRun(t, "config", "show"), "device_id:")
	assert.Contains(t, mustRun(t, "config", "show", "--format", "json"), `"DeviceID"`)
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "today", "abc")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "none") })

	out := mustRun(t, "version")
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Commit:     abc")
}
