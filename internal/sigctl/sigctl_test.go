package sigctl

import (
	"bytes"
	"os/exec"
	"testing"
	"time"

	"github.com/gnosis23/tsh/internal/jobctl"
	"github.com/gnosis23/tsh/internal/jobwait"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController() (*Controller, *jobctl.Table, *bytes.Buffer) {
	jobs := jobctl.New()
	notify := jobwait.NewNotifier()
	out := &bytes.Buffer{}
	return New(out, jobs, notify), jobs, out
}

func TestHandleChldNormalExit(t *testing.T) {
	c, jobs, out := newTestController()

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	_, err := jobs.Add(cmd.Process.Pid, jobctl.FG, "true")
	require.NoError(t, err)

	// Give the child a moment to exit before reaping; real delivery
	// would instead wake this goroutine via SIGCHLD.
	time.Sleep(50 * time.Millisecond)
	c.handleChld()

	_, ok := jobs.GetByPID(cmd.Process.Pid)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestHandleChldSignaled(t *testing.T) {
	c, jobs, out := newTestController()

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	jid, err := jobs.Add(cmd.Process.Pid, jobctl.FG, "sleep 30")
	require.NoError(t, err)

	require.NoError(t, cmd.Process.Kill())
	time.Sleep(50 * time.Millisecond)
	c.handleChld()

	_, ok := jobs.GetByPID(cmd.Process.Pid)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "terminated by signal")
	_ = jid
}

func TestHandleIntNoForegroundJob(t *testing.T) {
	c, _, out := newTestController()
	c.handleInt()
	assert.Empty(t, out.String())
}
