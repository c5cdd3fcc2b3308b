// Command supernode runs the per-machine agent: it dials SuperLink
// through a connection.Client variant, hands each TaskIns it receives
// to a local superexec process, and relays the TaskRes it gets back.
// Structured as a cobra root command (
// signal.NotifyContext, a single long-running RunE).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetml"
	"fleetml/internal/connection"
	"fleetml/internal/rpc/clientappio"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/rpc/wire"
	"fleetml/internal/support/buildinfo"
	"fleetml/internal/support/config"
	"fleetml/internal/support/logging"
	"fleetml/internal/telemetry"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	shutdown := telemetry.Setup()
	defer func() { _ = shutdown(context.Background()) }()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var superexecAddr string
	var appioListen string
	var debug bool

	cmd := &cobra.Command{
		Use:     "supernode",
		Short:   "fleetml node agent",
		Version: buildinfo.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath, superexecAddr, appioListen)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&configPath, "config", "/etc/fleetml/supernode.yaml", "Config file path")
	cmd.Flags().StringVar(&superexecAddr, "superexec-address", "127.0.0.1:9094", "Local superexec address")
	cmd.Flags().StringVar(&appioListen, "clientappio-listen", "127.0.0.1:9095", "ClientAppIo listen address")
	return cmd
}

func run(ctx context.Context, configPath, superexecAddr, appioListen string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	nc := cfg.SuperNode

	client, err := dialConnection(nc)
	if err != nil {
		return fmt.Errorf("connect to superlink: %w", err)
	}
	defer client.Close()

	if err := client.CreateNode(ctx, nc.PingInterval); err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	defer func() {
		if err := client.DeleteNode(context.Background()); err != nil {
			slog.Warn("delete node failed on shutdown", "error", err)
		}
	}()

	appio := clientappio.New()
	appioServer, err := serveClientAppIo(appioListen, appio)
	if err != nil {
		return fmt.Errorf("serve clientappio: %w", err)
	}
	defer appioServer.GracefulStop()

	execConn, err := grpc.NewClient(superexecAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(wire.CallOption()),
		telemetry.ClientDialOption(),
	)
	if err != nil {
		return fmt.Errorf("dial superexec %s: %w", superexecAddr, err)
	}
	defer execConn.Close()
	execClient := pb.NewExecClient(execConn)

	pollInterval := time.Duration(nc.PingInterval) * time.Second / 5
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	fabs := map[string][]byte{}
	runs := map[uint64]fleetml.Run{}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		task, err := client.Receive(ctx)
		if err != nil {
			slog.Error("receive failed", "error", err)
			time.Sleep(pollInterval)
			continue
		}
		if task == nil {
			time.Sleep(pollInterval)
			continue
		}

		if err := handleTask(ctx, client, execClient, appio, *task, runs, fabs); err != nil {
			slog.Error("task handling failed", "task_id", task.TaskID, "error", err)
		}
	}
}

func handleTask(
	ctx context.Context,
	client connection.Client,
	execClient pb.ExecClient,
	appio *clientappio.Servicer,
	task fleetml.TaskIns,
	runs map[uint64]fleetml.Run,
	fabs map[string][]byte,
) error {
	run, ok := runs[task.RunID]
	if !ok {
		r, err := client.GetRun(ctx, task.RunID)
		if err != nil {
			return fmt.Errorf("get run %d: %w", task.RunID, err)
		}
		runs[task.RunID] = r
		run = r
	}

	content, ok := fabs[run.FabHash]
	if !ok {
		f, err := client.GetFab(ctx, run.FabHash)
		if err != nil {
			return fmt.Errorf("get fab %s: %w", run.FabHash, err)
		}
		fabs[run.FabHash] = f.Content
		content = f.Content
	}

	startResp, err := execClient.StartRun(ctx, &pb.StartRunRequest{FabFile: content})
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	slog.Info("started superexec run", "exec_run_id", startResp.RunID, "task_id", task.TaskID)

	appio.SetInputs(task.TaskID, task.RecordSet, nil, pb.RunMsg{
		RunID:      run.RunID,
		FabID:      run.FabID,
		FabVersion: run.FabVersion,
		FabHash:    run.FabHash,
	})

	deadline := time.Now().Add(taskTimeout(task))
	var message []byte
	for {
		if m, _, ok := appio.Outputs(task.TaskID); ok {
			message = m
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("task %s: client app output timed out", task.TaskID)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	res := fleetml.TaskRes{
		GroupID:   task.GroupID,
		RunID:     task.RunID,
		Producer:  task.Consumer,
		Consumer:  task.Producer,
		Ancestry:  []string{task.TaskID},
		TaskType:  task.TaskType,
		RecordSet: fleetml.RecordSet(message),
	}
	return client.Send(ctx, res)
}

func taskTimeout(task fleetml.TaskIns) time.Duration {
	if task.TTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(task.TTL * float64(time.Second))
}

func dialConnection(nc config.SuperNode) (connection.Client, error) {
	policy := connection.RetryPolicy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
		MaxTries:        nc.RetryMaxTries,
		MaxTime:         nc.RetryMaxTime,
	}

	switch nc.Transport {
	case config.TransportGRPCAdapter:
		return connection.DialGRPCAdapter(nc.ServerAddress, nc.MachineID, policy)
	case config.TransportREST:
		return connection.NewRESTClient(nc.ServerAddress, policy, nil)
	default:
		return connection.DialGRPC(nc.ServerAddress, policy)
	}
}

func serveClientAppIo(addr string, srv *clientappio.Servicer) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	s := grpc.NewServer(wire.ServerOption(), telemetry.ServerOption())
	pb.RegisterClientAppIoServer(s, srv)
	go func() {
		if err := s.Serve(lis); err != nil {
			slog.Error("clientappio server stopped", "error", err)
		}
	}()
	return s, nil
}
