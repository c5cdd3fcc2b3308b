package executor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcessExecutorStartRunsAndExits(t *testing.T) {
	e := &ProcessExecutor{Binary: "echo"}

	proc, err := e.Start(context.Background(), "hello-fab", nil)
	require.NoError(t, err)

	out, err := io.ReadAll(proc.Stdout())
	require.NoError(t, err)
	require.Equal(t, "hello-fab\n", string(out))

	require.NoError(t, proc.Wait())

	exited, err := proc.Poll()
	require.NoError(t, err)
	require.True(t, exited)
}

func TestProcessExecutorKillStopsLongRunningProcess(t *testing.T) {
	e := &ProcessExecutor{Binary: "sleep"}

	proc, err := e.Start(context.Background(), "30", nil)
	require.NoError(t, err)

	exited, err := proc.Poll()
	require.NoError(t, err)
	require.False(t, exited)

	require.NoError(t, proc.Kill())

	select {
	case <-waitDone(proc):
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit after Kill")
	}
}

func waitDone(p Process) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		_ = p.Wait()
		close(done)
	}()
	return done
}

func TestNewProcessExecutorDefaultsBinary(t *testing.T) {
	e := NewProcessExecutor()
	require.Equal(t, "superexec-run", e.Binary)
}
