package exec

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"fleetml/internal/rpc/exec/executor"
	"fleetml/internal/rpc/pb"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

type fakeProcess struct {
	stdout io.Reader
	stderr io.Reader
	done   chan struct{}
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }
func (p *fakeProcess) Stderr() io.Reader { return p.stderr }
func (p *fakeProcess) Wait() error       { <-p.done; return nil }
func (p *fakeProcess) Poll() (bool, error) {
	select {
	case <-p.done:
		return true, nil
	default:
		return false, nil
	}
}
func (p *fakeProcess) Kill() error { return nil }

type fakeExecutor struct {
	proc *fakeProcess
}

func (e *fakeExecutor) Start(_ context.Context, _ string, _ []string) (executor.Process, error) {
	return e.proc, nil
}

var _ executor.Executor = (*fakeExecutor)(nil)
var _ executor.Process = (*fakeProcess)(nil)

type fakeStream struct {
	ctx context.Context

	mu   sync.Mutex
	sent []string
}

func (s *fakeStream) SetHeader(metadata.MD) error  { return nil }
func (s *fakeStream) SendHeader(metadata.MD) error { return nil }
func (s *fakeStream) SetTrailer(metadata.MD)       {}
func (s *fakeStream) Context() context.Context     { return s.ctx }
func (s *fakeStream) SendMsg(m any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m.(*pb.StreamLogsResponse).LogOutput)
	return nil
}
func (s *fakeStream) RecvMsg(any) error { return errors.New("not implemented") }

func (s *fakeStream) Send(m *pb.StreamLogsResponse) error { return s.SendMsg(m) }

func (s *fakeStream) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func TestStartRunThenStreamLogsDeliversOutput(t *testing.T) {
	proc := &fakeProcess{
		stdout: strings.NewReader("line one\nline two\n"),
		stderr: strings.NewReader(""),
		done:   make(chan struct{}),
	}
	close(proc.done)

	svc := New(&fakeExecutor{proc: proc})

	startResp, err := svc.StartRun(context.Background(), &pb.StartRunRequest{FabFile: []byte("fab bytes")})
	require.NoError(t, err)
	require.NotZero(t, startResp.RunID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	stream := &fakeStream{ctx: ctx}

	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	err = svc.StreamLogs(&pb.StreamLogsRequest{RunID: startResp.RunID}, stream)
	require.NoError(t, err)
	require.Contains(t, stream.lines(), "line one")
	require.Contains(t, stream.lines(), "line two")
}

func TestStreamLogsUnknownRunReturnsNotFound(t *testing.T) {
	svc := New(&fakeExecutor{})

	err := svc.StreamLogs(&pb.StreamLogsRequest{RunID: 999}, &fakeStream{ctx: context.Background()})
	require.Error(t, err)
}
