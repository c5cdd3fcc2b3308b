// Package clientappio implements ClientAppIoServicer: the node-local
// handoff between SuperNode and the workload process it launches.
// Per the single-session-per-instance resolution of the open question
// one Servicer holds exactly one outstanding exchange.
package clientappio

import (
	"context"
	"log/slog"
	"sync"

	"fleetml/internal/rpc/pb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type session struct {
	token   string
	message []byte
	ctxData []byte
	run     pb.RunMsg

	outMessage []byte
	outCtx     []byte
	delivered  bool
}

type Servicer struct {
	pb.UnimplementedClientAppIoServer

	mu      sync.Mutex
	current *session
}

func New() *Servicer {
	return &Servicer{}
}

// SetInputs stages the next exchange. A second call while one is
// already outstanding replaces it — this is a single-process handoff,
// not a queue.
func (s *Servicer) SetInputs(token string, message, ctxData []byte, run pb.RunMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && !s.current.delivered {
		slog.Warn("clientappio: replacing outstanding session before it was consumed",
			"old_token", s.current.token, "new_token", token)
	}
	s.current = &session{token: token, message: message, ctxData: ctxData, run: run}
}

// Outputs returns the most recently pushed outputs for token, if any.
func (s *Servicer) Outputs(token string) (message, ctxData []byte, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.token != token || !s.current.delivered {
		return nil, nil, false
	}
	return s.current.outMessage, s.current.outCtx, true
}

func (s *Servicer) PullClientAppInputs(_ context.Context, req *pb.PullClientAppInputsRequest) (*pb.PullClientAppInputsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.token != req.Token {
		return nil, status.Errorf(codes.NotFound, "no session for token %q", req.Token)
	}
	return &pb.PullClientAppInputsResponse{
		Message: s.current.message,
		Context: s.current.ctxData,
		Run:     s.current.run,
	}, nil
}

func (s *Servicer) PushClientAppOutputs(_ context.Context, req *pb.PushClientAppOutputsRequest) (*pb.PushClientAppOutputsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.token != req.Token {
		return nil, status.Errorf(codes.NotFound, "no session for token %q", req.Token)
	}
	s.current.outMessage = req.Message
	s.current.outCtx = req.Context
	s.current.delivered = true
	return &pb.PushClientAppOutputsResponse{Status: "ok"}, nil
}
