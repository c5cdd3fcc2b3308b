package clientappio

import (
	"context"
	"testing"

	"fleetml/internal/rpc/pb"

	"github.com/stretchr/testify/require"
)

func TestPullThenPushRoundTrip(t *testing.T) {
	s := New()
	s.SetInputs("token-1", []byte("in-message"), []byte("in-ctx"), pb.RunMsg{RunID: 7})

	pullResp, err := s.PullClientAppInputs(context.Background(), &pb.PullClientAppInputsRequest{Token: "token-1"})
	require.NoError(t, err)
	require.Equal(t, []byte("in-message"), pullResp.Message)
	require.Equal(t, uint64(7), pullResp.Run.RunID)

	message, _, ok := s.Outputs("token-1")
	require.False(t, ok)
	require.Nil(t, message)

	pushResp, err := s.PushClientAppOutputs(context.Background(), &pb.PushClientAppOutputsRequest{
		Token:   "token-1",
		Message: []byte("out-message"),
		Context: []byte("out-ctx"),
	})
	require.NoError(t, err)
	require.Equal(t, "ok", pushResp.Status)

	outMessage, outCtx, ok := s.Outputs("token-1")
	require.True(t, ok)
	require.Equal(t, []byte("out-message"), outMessage)
	require.Equal(t, []byte("out-ctx"), outCtx)
}

func TestPullUnknownTokenReturnsNotFound(t *testing.T) {
	s := New()
	_, err := s.PullClientAppInputs(context.Background(), &pb.PullClientAppInputsRequest{Token: "missing"})
	require.Error(t, err)
}

func TestSetInputsReplacesUndeliveredSession(t *testing.T) {
	s := New()
	s.SetInputs("token-a", []byte("a"), nil, pb.RunMsg{})
	s.SetInputs("token-b", []byte("b"), nil, pb.RunMsg{})

	_, err := s.PullClientAppInputs(context.Background(), &pb.PullClientAppInputsRequest{Token: "token-a"})
	require.Error(t, err)

	resp, err := s.PullClientAppInputs(context.Background(), &pb.PullClientAppInputsRequest{Token: "token-b"})
	require.NoError(t, err)
	require.Equal(t, []byte("b"), resp.Message)
}
