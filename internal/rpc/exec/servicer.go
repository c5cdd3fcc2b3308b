// Package exec implements ExecServicer: launches a FAB as a child
// process/container and streams its combined stdout/stderr back to any
// number of independent subscribers.
package exec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"fleetml/internal/idcodec"
	"fleetml/internal/rpc/exec/executor"
	"fleetml/internal/rpc/pb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	selectTimeout  = time.Second
	streamPollRate = 100 * time.Millisecond
)

type runState uint8

const (
	stateStarted runState = iota
	stateRunning
	stateExited
)

type run struct {
	mu      sync.Mutex
	process executor.Process
	state   runState
	logs    []string
}

// Servicer implements pb.ExecServer over a configurable Executor.
type Servicer struct {
	pb.UnimplementedExecServer

	executor executor.Executor

	mu   sync.Mutex
	runs map[uint64]*run
}

func New(exe executor.Executor) *Servicer {
	return &Servicer{executor: exe, runs: make(map[uint64]*run)}
}

func (s *Servicer) StartRun(ctx context.Context, req *pb.StartRunRequest) (*pb.StartRunResponse, error) {
	fabFile, err := writeTempFab(req.FabFile)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "stage fab file: %v", err)
	}

	proc, err := s.executor.Start(context.Background(), fabFile, nil)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "start run: %v", err)
	}

	runID, err := idcodec.GenerateID()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "mint run id: %v", err)
	}

	r := &run{process: proc, state: stateStarted}

	s.mu.Lock()
	s.runs[runID] = r
	s.mu.Unlock()

	go s.capture(runID, r)

	return &pb.StartRunResponse{RunID: runID}, nil
}

// capture cooperatively multiplexes stdout and stderr into r.logs until
// the process exits, then drains whatever is left before stopping.
func (s *Servicer) capture(runID uint64, r *run) {
	r.mu.Lock()
	r.state = stateRunning
	r.mu.Unlock()

	lines := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanInto(r.process.Stdout(), lines, &wg)
	go scanInto(r.process.Stderr(), lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for {
		exited, _ := r.process.Poll()
		select {
		case line, ok := <-lines:
			if !ok {
				r.mu.Lock()
				r.state = stateExited
				r.mu.Unlock()
				return
			}
			r.mu.Lock()
			r.logs = append(r.logs, line)
			r.mu.Unlock()
		case <-time.After(selectTimeout):
			if exited {
				drainRemaining(r, lines)
				r.mu.Lock()
				r.state = stateExited
				r.mu.Unlock()
				return
			}
		}
	}
}

func drainRemaining(r *run, lines <-chan string) {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			r.mu.Lock()
			r.logs = append(r.logs, line)
			r.mu.Unlock()
		case <-time.After(selectTimeout):
			return
		}
	}
}

func scanInto(rd io.Reader, out chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()
	if rd == nil {
		return
	}
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			out <- line
		}
	}
}

// StreamLogs yields logs[last_sent_index:] on a poll loop until the
// subscriber's context is canceled. New subscribers always start at
// index 0, so each sees full history independent of other subscribers.
func (s *Servicer) StreamLogs(req *pb.StreamLogsRequest, stream pb.ExecStreamLogsServer) error {
	s.mu.Lock()
	r, ok := s.runs[req.RunID]
	s.mu.Unlock()
	if !ok {
		return status.Errorf(codes.NotFound, "run %d not found", req.RunID)
	}

	ctx := stream.Context()
	lastSent := 0
	ticker := time.NewTicker(streamPollRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.mu.Lock()
			pending := append([]string(nil), r.logs[lastSent:]...)
			lastSent = len(r.logs)
			r.mu.Unlock()

			for _, line := range pending {
				if err := stream.Send(&pb.StreamLogsResponse{LogOutput: line}); err != nil {
					return err
				}
			}
		}
	}
}

func writeTempFab(content []byte) (string, error) {
	f, err := tempFile("fleetml-fab-*.bin")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return "", fmt.Errorf("write fab file: %w", err)
	}
	return f.Name(), nil
}
