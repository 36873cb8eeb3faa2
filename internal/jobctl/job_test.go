package jobctl_test

import (
	"testing"

	"github.com/gnosis23/tsh/internal/jobctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDelete(t *testing.T) {
	table := jobctl.New()

	jid, err := table.Add(100, jobctl.FG, "sleep 5")
	require.NoError(t, err)
	assert.Equal(t, 1, jid)
	assert.Equal(t, 100, table.FGPID())

	j, ok := table.GetByJID(1)
	require.True(t, ok)
	assert.Equal(t, 100, j.PID)
	assert.Equal(t, jobctl.FG, j.State)

	assert.True(t, table.Delete(100))
	assert.Equal(t, 0, table.FGPID())
	_, ok = table.GetByPID(100)
	assert.False(t, ok)
}

func TestAddAssignsJIDsInSlotOrder(t *testing.T) {
	table := jobctl.New()

	jid1, err := table.Add(10, jobctl.BG, "a")
	require.NoError(t, err)
	jid2, err := table.Add(11, jobctl.BG, "b")
	require.NoError(t, err)

	assert.Equal(t, 1, jid1)
	assert.Equal(t, 2, jid2)
}

func TestAddTableFull(t *testing.T) {
	table := jobctl.New()
	for i := 0; i < jobctl.MaxJobs; i++ {
		_, err := table.Add(i+1, jobctl.BG, "x")
		require.NoError(t, err)
	}

	_, err := table.Add(1000, jobctl.BG, "overflow")
	require.ErrorIs(t, err, jobctl.ErrTableFull)
}

func TestFGPIDReturnsFirstForegroundJobInSlotOrder(t *testing.T) {
	table := jobctl.New()
	_, err := table.Add(1, jobctl.FG, "a")
	require.NoError(t, err)

	jid2, err := table.Add(2, jobctl.BG, "b")
	require.NoError(t, err)

	table.SetState(2, jobctl.FG)
	// Setting a second job FG does not clear the first: callers are
	// responsible for moving the prior FG job out of the slot first,
	// exactly as the original never enforced this invariant inside
	// addjob/setState either. FGPID simply returns the first FG row it
	// finds in slot order.
	assert.Equal(t, 1, table.FGPID())
	_ = jid2
}

func TestDeleteRecomputesNextJID(t *testing.T) {
	table := jobctl.New()
	_, err := table.Add(1, jobctl.BG, "a")
	require.NoError(t, err)
	jid2, err := table.Add(2, jobctl.BG, "b")
	require.NoError(t, err)
	require.True(t, table.Delete(1))

	jid3, err := table.Add(3, jobctl.BG, "c")
	require.NoError(t, err)
	assert.Equal(t, jid2+1, jid3)
}

func TestList(t *testing.T) {
	table := jobctl.New()
	_, err := table.Add(42, jobctl.BG, "sleep 5")
	require.NoError(t, err)

	lines := table.List()
	require.Len(t, lines, 1)
	assert.Equal(t, "[1] (42) Running sleep 5", lines[0])
}

func TestCmdlineTruncated(t *testing.T) {
	table := jobctl.New()
	long := make([]byte, jobctl.MaxCmdlineLen+100)
	for i := range long {
		long[i] = 'x'
	}
	_, err := table.Add(1, jobctl.BG, string(long))
	require.NoError(t, err)

	j, ok := table.GetByPID(1)
	require.True(t, ok)
	assert.Len(t, j.Cmdline, jobctl.MaxCmdlineLen)
}
