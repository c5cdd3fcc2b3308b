// Command superexec hosts ExecServicer: it launches a FAB as either a
// host subprocess or a container and streams its combined output to
// StreamLogs subscribers. Structured as a cobra root command, same shape as
// cmd/ployzd/main.go (cobra root, PersistentPreRunE logging setup).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	execsvc "fleetml/internal/rpc/exec"
	"fleetml/internal/rpc/exec/executor"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/rpc/wire"
	"fleetml/internal/support/buildinfo"
	"fleetml/internal/support/config"
	"fleetml/internal/support/logging"
	"fleetml/internal/telemetry"

	"github.com/docker/docker/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
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
	var listenAddress string
	var runtime string
	var dockerImage string
	var debug bool

	cmd := &cobra.Command{
		Use:     "superexec",
		Short:   "fleetml run executor",
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
			return run(ctx, configPath, cmd.Flags(), listenAddress, runtime, dockerImage)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&configPath, "config", "/etc/fleetml/superexec.yaml", "Config file path")
	cmd.Flags().StringVar(&listenAddress, "listen-address", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&runtime, "runtime", "", "Executor runtime: process or docker (overrides config)")
	cmd.Flags().StringVar(&dockerImage, "docker-image", "", "Image used by the docker runtime (overrides config)")
	return cmd
}

func run(ctx context.Context, configPath string, flags *pflag.FlagSet, listenAddress, runtime, dockerImage string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ec := cfg.SuperExec

	if flags.Changed("listen-address") {
		ec.ListenAddress = listenAddress
	}
	if flags.Changed("runtime") {
		ec.Executor = config.ExecutorKind(runtime)
	}
	if flags.Changed("docker-image") {
		ec.DockerImage = dockerImage
	}

	exe, err := buildExecutor(ec)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", ec.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ec.ListenAddress, err)
	}

	srv := grpc.NewServer(wire.ServerOption(), telemetry.ServerOption())
	pb.RegisterExecServer(srv, execsvc.New(exe))

	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(lis) }()

	select {
	case <-ctx.Done():
		srv.GracefulStop()
		return nil
	case err := <-errs:
		return err
	}
}

func buildExecutor(ec config.SuperExec) (executor.Executor, error) {
	switch ec.Executor {
	case config.ExecutorDocker:
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, fmt.Errorf("create docker client: %w", err)
		}
		return executor.NewDockerExecutor(cli, ec.DockerImage), nil
	case config.ExecutorProcess, "":
		return executor.NewProcessExecutor(), nil
	default:
		return nil, fmt.Errorf("unknown executor %q", ec.Executor)
	}
}
