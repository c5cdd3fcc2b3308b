package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetml"
	"fleetml/internal/rpc/pb"

	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2,
		MaxTries:        3,
		MaxTime:         time.Second,
	}
}

func TestRESTClientCreateNodeBindsNodeID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fleet/create_node", r.URL.Path)
		_ = json.NewEncoder(w).Encode(pb.CreateNodeResponse{NodeID: 42})
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)

	err = c.CreateNode(context.Background(), 30)
	require.NoError(t, err)

	nodeID, bound := c.node.get()
	require.True(t, bound)
	require.Equal(t, uint64(42), nodeID)
}

func TestRESTClientReceiveNoTaskReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(pb.PullTaskInsResponse{})
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)
	c.node.set(7)

	task, err := c.Receive(context.Background())
	require.NoError(t, err)
	require.Nil(t, task)
}

func TestRESTClientReceiveReturnsTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(pb.PullTaskInsResponse{
			TaskInsList: []pb.TaskMsg{{TaskID: "abc", RunID: 1, TaskType: "train"}},
		})
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)
	c.node.set(7)

	task, err := c.Receive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Equal(t, "abc", task.TaskID)
}

func TestRESTClientSendRejectedSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(pb.PushTaskResResponse{
			Results: []pb.ReliabilityStatus{{TaskID: "abc", Code: "rejected"}},
		})
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)

	err = c.Send(context.Background(), fleetml.TaskRes{TaskID: "abc"})
	require.Error(t, err)
}

func TestRESTClientGetRunNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(pb.GetRunResponse{Found: false})
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)

	_, err = c.GetRun(context.Background(), 9)
	require.Error(t, err)
}

func TestRESTClientDeleteNodeWithoutBindingFails(t *testing.T) {
	c, err := NewRESTClient("http://example.invalid", fastPolicy(), nil)
	require.NoError(t, err)

	err = c.DeleteNode(context.Background())
	require.Error(t, err)
}

func TestRESTClient4xxIsPermanentNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)

	err = c.CreateNode(context.Background(), 30)
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestRESTClient5xxIsRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(pb.CreateNodeResponse{NodeID: 1})
	}))
	defer srv.Close()

	c, err := NewRESTClient(srv.URL, fastPolicy(), nil)
	require.NoError(t, err)

	err = c.CreateNode(context.Background(), 30)
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}
