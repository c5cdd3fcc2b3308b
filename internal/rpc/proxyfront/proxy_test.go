package proxyfront

import (
	"testing"

	"github.com/siderolabs/grpc-proxy/proxy"
	"github.com/stretchr/testify/require"
)

var _ proxy.Backend = (*Server)(nil)

func TestServerStringReportsUpstream(t *testing.T) {
	s := NewServer("localhost:9999")
	require.Equal(t, "localhost:9999", s.String())
}

func TestServerCloseWithoutConnectionIsNoop(t *testing.T) {
	s := NewServer("localhost:9999")
	require.NoError(t, s.Close())
}

func TestServerAppendInfoPassesThrough(t *testing.T) {
	s := NewServer("localhost:9999")
	payload := []byte("frame")
	out, err := s.AppendInfo(false, payload)
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestServerBuildErrorReturnsUnderlyingError(t *testing.T) {
	s := NewServer("localhost:9999")
	_, err := s.BuildError(false, errTest)
	require.ErrorIs(t, err, errTest)
}

var errTest = testErr{}

type testErr struct{}

func (testErr) Error() string { return "boom" }
