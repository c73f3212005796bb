package crashnotify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeReportInline(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 10, 30, 5, 0, time.UTC)
	rep := makeReport("trace line 1\ntrace line 2", "doWork", "", false, now)

	assert.Nil(t, rep.Attachment)
	assert.True(t, strings.HasPrefix(rep.Body, DefaultHeader+"\n\n"))
	assert.Contains(t, rep.Body, "Function: doWork\n")
	assert.Contains(t, rep.Body, "Time: 2026-08-28T10:30:05Z\n")
	assert.Contains(t, rep.Body, "trace line 1\ntrace line 2")
}

func TestMakeReportAttached(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 10, 30, 5, 0, time.UTC)
	trace := "trace line 1\ntrace line 2"
	rep := makeReport(trace, "doWork", "", true, now)

	assert.Equal(t, []byte(trace), rep.Attachment)
	assert.True(t, strings.HasPrefix(rep.Body, DefaultHeader+"\n\n"))
	assert.Contains(t, rep.Body, "Function: doWork\n")
	assert.NotContains(t, rep.Body, "trace line 1")
}

func TestMakeReportCustomHeader(t *testing.T) {
	t.Parallel()

	rep := makeReport("trace", "doWork", "the worker blew up", false, time.Now())

	assert.True(t, strings.HasPrefix(rep.Body, "the worker blew up\n\n"))
	assert.NotContains(t, rep.Body, DefaultHeader)
}

func TestMakeReportNoFuncName(t *testing.T) {
	t.Parallel()

	rep := makeReport("trace", "", "", false, time.Now())
	assert.NotContains(t, rep.Body, "Function:")
}

func TestReportFilenameExplicit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "crash.txt", reportFilename("crash.txt", ""))
}

func TestReportFilenameGenerated(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 10, 30, 5, 123456789, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	name := reportFilename("", "")
	assert.Equal(t, "2026-08-28 10_30_05.txt", name)

	ts, err := time.Parse(DefaultTimeFormat, strings.TrimSuffix(name, ".txt"))
	require.NoError(t, err)
	assert.Zero(t, ts.Nanosecond())
}

func TestReportFilenameCustomLayout(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 10, 30, 5, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	assert.Equal(t, "20260828.txt", reportFilename("", "20060102"))
}

func TestReportFilenameLayoutFromEnv(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 10, 30, 5, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	t.Setenv(EnvTimeFormat, "2006-01-02")
	assert.Equal(t, "2026-08-28.txt", reportFilename("", ""))
}
