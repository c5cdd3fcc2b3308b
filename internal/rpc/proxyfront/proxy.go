// Package proxyfront implements the byte-envelope front door for
// SuperNode's connection.GRPCAdapterClient: a grpc-proxy frontend that
// forwards frames to a single SuperLink backend without decoding them.
// Grounded on ployz's internal/daemon/proxy package (director.go,
// remote.go, local.go) which does the same thing over a set of
// machines; this one only ever runs One2One against one upstream, so
// the multi-reply metadata stitching those files do under One2Many
// (One2ManyResponder.AppendInfo/BuildError) has no work to do here and
// is not implemented.
package proxyfront

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/siderolabs/grpc-proxy/proxy"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Server is a transparent gRPC proxy in front of one SuperLink address.
// It never unmarshals request or response bodies: proxy.Codec() frames
// them as opaque byte slices, so the JSON payloads produced by
// internal/rpc/wire pass through untouched.
type Server struct {
	upstream string
	grpcOpts []grpc.DialOption

	mu   sync.RWMutex
	conn *grpc.ClientConn
}

// NewServer returns a *Server that forwards every call to upstreamAddr.
func NewServer(upstreamAddr string, dialOpts ...grpc.DialOption) *Server {
	return &Server{upstream: upstreamAddr, grpcOpts: dialOpts}
}

// NewGRPCServer builds a *grpc.Server whose unknown-service handler
// routes every call through s to the configured upstream.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.UnknownServiceHandler(proxy.TransparentHandler(s.director)))
	return grpc.NewServer(opts...)
}

func (s *Server) director(ctx context.Context, fullMethodName string) (proxy.Mode, []proxy.Backend, error) {
	return proxy.One2One, []proxy.Backend{s}, nil
}

// String implements proxy.Backend.
func (s *Server) String() string { return s.upstream }

// GetConnection implements proxy.Backend, lazily dialing the upstream
// the first time it's needed and reusing the connection after that.
func (s *Server) GetConnection(ctx context.Context, _ string) (context.Context, *grpc.ClientConn, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	outCtx := metadata.NewOutgoingContext(ctx, md)

	s.mu.RLock()
	if s.conn != nil {
		defer s.mu.RUnlock()
		return outCtx, s.conn, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return outCtx, s.conn, nil
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodecV2(proxy.Codec())),
	}, s.grpcOpts...)

	conn, err := grpc.NewClient(s.upstream, dialOpts...)
	if err != nil {
		return outCtx, nil, fmt.Errorf("dial upstream %s: %w", s.upstream, err)
	}
	s.conn = conn
	slog.Debug("proxyfront connected to upstream", "upstream", s.upstream)
	return outCtx, s.conn, nil
}

// AppendInfo implements proxy.Backend. A One2One-only proxy never fans
// a single request out to multiple replies, so there is nothing to
// stitch metadata into; the response is forwarded byte-for-byte.
func (s *Server) AppendInfo(_ bool, resp []byte) ([]byte, error) {
	return resp, nil
}

// BuildError implements proxy.Backend, passing the upstream error
// through unchanged rather than encoding it into a merged reply.
func (s *Server) BuildError(_ bool, err error) ([]byte, error) {
	return nil, err
}

// Close releases the upstream connection, if one was established.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
