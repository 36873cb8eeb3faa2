package builtin_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnosis23/tsh/internal/builtin"
	"github.com/gnosis23/tsh/internal/jobctl"
	"github.com/gnosis23/tsh/internal/jobwait"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher() (*builtin.Dispatcher, *bytes.Buffer, *jobctl.Table) {
	jobs := jobctl.New()
	out := &bytes.Buffer{}
	return &builtin.Dispatcher{
		Out:    out,
		Jobs:   jobs,
		Notify: jobwait.NewNotifier(),
	}, out, jobs
}

func TestDispatchUnknownName(t *testing.T) {
	d, _, _ := newDispatcher()
	ok := d.Dispatch([]string{"frobnicate"})
	assert.False(t, ok)
}

func TestJobsLists(t *testing.T) {
	d, out, jobs := newDispatcher()
	_, err := jobs.Add(42, jobctl.BG, "sleep 5")
	require.NoError(t, err)

	ok := d.Dispatch([]string{"jobs"})
	assert.True(t, ok)
	assert.Equal(t, "[1] (42) Running sleep 5\n", out.String())
}

func TestBgfgMissingArgument(t *testing.T) {
	d, out, _ := newDispatcher()
	d.Dispatch([]string{"bg"})
	assert.Equal(t, "bg command requires PID or %jobid argument\n", out.String())
}

func TestBgfgBadArgument(t *testing.T) {
	d, out, _ := newDispatcher()
	d.Dispatch([]string{"fg", "notanumber"})
	assert.Equal(t, "fg: argument must be a PID or %jobid\n", out.String())
}

func TestBgfgUnknownJob(t *testing.T) {
	d, out, _ := newDispatcher()
	d.Dispatch([]string{"fg", "%3"})
	assert.Equal(t, "%3: No such job\n", out.String())
}

func TestBgfgUnknownPID(t *testing.T) {
	d, out, _ := newDispatcher()
	d.Dispatch([]string{"bg", "999"})
	assert.Equal(t, "(999): No such process\n", out.String())
}

func TestCdMissingArgument(t *testing.T) {
	d, out, _ := newDispatcher()
	d.Dispatch([]string{"cd"})
	assert.Contains(t, out.String(), "cd: ")
	assert.Contains(t, out.String(), "path argument")
}

func TestQuitCallsHook(t *testing.T) {
	jobs := jobctl.New()
	out := &bytes.Buffer{}
	called := false
	d := &builtin.Dispatcher{
		Out:    out,
		Jobs:   jobs,
		Notify: jobwait.NewNotifier(),
		Quit:   func() { called = true },
	}
	d.Dispatch([]string{"quit"})
	assert.True(t, called)
}

func TestPwdAndCd(t *testing.T) {
	d, out, _ := newDispatcher()
	d.Dispatch([]string{"pwd"})
	assert.NotEmpty(t, out.String())

	out.Reset()
	dir := t.TempDir()
	d.Dispatch([]string{"cd", dir})

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, resolved, gotResolved)
	assert.Equal(t, resolved, mustEvalSymlinks(t, os.Getenv("PWD")))
}

func TestEnvironTruncatesLongEntries(t *testing.T) {
	longKey := "TSH_TEST_LONG_VALUE_FOR_TRUNCATION_CHECK"
	longVal := strings.Repeat("x", 81)
	require.NoError(t, os.Setenv(longKey, longVal))
	defer os.Unsetenv(longKey)

	d, out, _ := newDispatcher()
	d.Dispatch([]string{"environ"})

	found := false
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, longKey+"=") {
			found = true
			assert.True(t, strings.HasSuffix(line, "..."))
			assert.LessOrEqual(t, len(line), 50+3)
		}
	}
	assert.True(t, found)
}

func mustEvalSymlinks(t *testing.T, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return resolved
}
