package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriglow/nutriglow-go/pkg/log"
)

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.glog")
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	for i, cmd := range []string{"OFF", "WATER", "GREAT_FINISH"} {
		fl.Log(log.Event{
			Timestamp:    ts.Add(time.Duration(i) * time.Second),
			ConnectionID: "c0ffee01-6789",
			Direction:    log.DirectionOut,
			Layer:        log.LayerCommand,
			Category:     log.CategoryCommand,
			Write:        &log.WriteEvent{Data: []byte{byte(i)}, Command: cmd},
		})
	}
	require.NoError(t, fl.Close())
	return path
}

func runArgs(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunUsage(t *testing.T) {
	_, errOut, err := runArgs()
	assert.Error(t, err)
	assert.Contains(t, errOut, "glowlog <command>")

	out, _, err := runArgs("help")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")

	_, _, err = runArgs("frob")
	assert.ErrorContains(t, err, "unknown command: frob")
}

func TestRunView(t *testing.T) {
	path := writeLog(t)

	out, _, err := runArgs("view", "--command", "water", path)
	require.NoError(t, err)
	assert.Contains(t, out, "COMMAND WATER")
	assert.NotContains(t, out, "GREAT_FINISH")

	_, _, err = runArgs("view", "--direction", "sideways", path)
	assert.ErrorContains(t, err, "invalid direction")

	_, _, err = runArgs("view")
	assert.ErrorContains(t, err, "log file path required")
}

func TestRunExportAndStats(t *testing.T) {
	path := writeLog(t)

	out, _, err := runArgs("export", "-f", "jsonl", path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	out, _, err = runArgs("stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Events: 3")
	assert.Contains(t, out, "GREAT_FINISH:")
}

func TestRunFilter(t *testing.T) {
	path := writeLog(t)
	dst := filepath.Join(t.TempDir(), "water.glog")

	_, _, err := runArgs("filter", path)
	assert.ErrorContains(t, err, "output file (-o) required")

	out, _, err := runArgs("filter", "--command", "1", "-o", dst, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Filtered 1 events to "+dst)

	events, err := log.ReadAll(dst, log.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "WATER", events[0].Write.Command)
}
