package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"fleetml"
	"fleetml/internal/rpc/pb"
)

// RESTClient is the plain HTTP/JSON variant: each RPC becomes a POST to
// a path under baseURL, body and response encoded with the same
// encoding/json rules as the gRPC wire codec (internal/rpc/wire) — no
// gRPC framing, just request/response JSON bodies over http.Client, in
// the style of ployz's Corrosion HTTP client.
type RESTClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	policy     RetryPolicy
	node       nodeCell
}

func NewRESTClient(baseURL string, policy RetryPolicy, httpClient *http.Client) (*RESTClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{baseURL: u, httpClient: httpClient, policy: policy}, nil
}

func (c *RESTClient) post(ctx context.Context, path string, in, out any) error {
	return retryInvoke(ctx, c.policy, func(ctx context.Context) error {
		body, err := json.Marshal(in)
		if err != nil {
			return Permanent(fmt.Errorf("encode request: %w", err))
		}

		endpoint := c.baseURL.JoinPath(path).String()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s: read response: %w", path, err)
		}

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return Permanent(fmt.Errorf("%s: %s: %s", path, resp.Status, string(respBody)))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: %s: %s", path, resp.Status, string(respBody))
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return Permanent(fmt.Errorf("%s: decode response: %w", path, err))
		}
		return nil
	})
}

func (c *RESTClient) CreateNode(ctx context.Context, pingInterval int64) error {
	var resp pb.CreateNodeResponse
	if err := c.post(ctx, "/fleet/create_node", &pb.CreateNodeRequest{PingInterval: pingInterval}, &resp); err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	c.node.set(resp.NodeID)
	return nil
}

func (c *RESTClient) DeleteNode(ctx context.Context) error {
	nodeID, bound := c.node.get()
	if !bound {
		return fmt.Errorf("delete node: no node bound on this connection")
	}
	if err := c.post(ctx, "/fleet/delete_node", &pb.DeleteNodeRequest{NodeID: nodeID}, &pb.DeleteNodeResponse{}); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	c.node.clear()
	return nil
}

func (c *RESTClient) Receive(ctx context.Context) (*fleetml.TaskIns, error) {
	nodeID, bound := c.node.get()
	if !bound {
		return nil, fmt.Errorf("receive: no node bound on this connection")
	}
	var resp pb.PullTaskInsResponse
	if err := c.post(ctx, "/fleet/pull_task_ins", &pb.PullTaskInsRequest{NodeID: nodeID}, &resp); err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	if len(resp.TaskInsList) == 0 {
		return nil, nil
	}
	task := taskFromMsg(resp.TaskInsList[0])
	return &task, nil
}

func (c *RESTClient) Send(ctx context.Context, res fleetml.TaskRes) error {
	var resp pb.PushTaskResResponse
	req := &pb.PushTaskResRequest{TaskResList: []pb.TaskMsg{taskToMsg(res)}}
	if err := c.post(ctx, "/fleet/push_task_res", req, &resp); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if len(resp.Results) > 0 && resp.Results[0].Code != "ok" {
		return fmt.Errorf("send: task %s rejected: %s", resp.Results[0].TaskID, resp.Results[0].Code)
	}
	return nil
}

func (c *RESTClient) GetRun(ctx context.Context, runID uint64) (fleetml.Run, error) {
	var resp pb.GetRunResponse
	if err := c.post(ctx, "/fleet/get_run", &pb.GetRunRequest{RunID: runID}, &resp); err != nil {
		return fleetml.Run{}, fmt.Errorf("get run: %w", err)
	}
	if !resp.Found {
		return fleetml.Run{}, fmt.Errorf("get run: run %d not found", runID)
	}
	return runFromMsg(resp.Run), nil
}

func (c *RESTClient) GetFab(ctx context.Context, hash string) (fleetml.Fab, error) {
	var resp pb.GetFabResponse
	if err := c.post(ctx, "/fleet/get_fab", &pb.GetFabRequest{Hash: hash}, &resp); err != nil {
		return fleetml.Fab{}, fmt.Errorf("get fab: %w", err)
	}
	return fleetml.Fab{Hash: resp.Hash, Content: resp.Content}, nil
}

func (c *RESTClient) Close() error {
	return nil
}
