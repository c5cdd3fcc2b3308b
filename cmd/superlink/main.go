// Command superlink runs the coordination fabric's server process:
// the Fleet service nodes poll, the Driver service applications push
// tasks through, and the NTP diagnostic checker. Structured like the
// teacher's cmd/ployzd/main.go (TracerProvider setup, logging.Configure
// in PersistentPreRunE, signal.NotifyContext for graceful shutdown).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"fleetml/internal/fab"
	"fleetml/internal/rpc/driver"
	"fleetml/internal/rpc/fleet"
	"fleetml/internal/rpc/pb"
	"fleetml/internal/rpc/wire"
	"fleetml/internal/store"
	"fleetml/internal/store/clock"
	"fleetml/internal/support/buildinfo"
	"fleetml/internal/support/config"
	"fleetml/internal/support/logging"
	"fleetml/internal/telemetry"

	"github.com/spf13/cobra"
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
	var debug bool

	cmd := &cobra.Command{
		Use:     "superlink",
		Short:   "fleetml coordination fabric server",
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
			return run(ctx, configPath)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&configPath, "config", "/etc/fleetml/superlink.yaml", "Config file path")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lc := cfg.SuperLink

	st, err := openStore(lc.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	checker := clock.NewChecker(
		clock.WithPool(lc.NTPPool),
		clock.WithInterval(lc.NTPInterval),
		clock.WithThreshold(lc.NTPThreshold),
	)
	go checker.Run(ctx)

	fabs, err := fab.NewDirStore(lc.FabDir)
	if err != nil {
		return fmt.Errorf("open fab store: %w", err)
	}

	lis, err := net.Listen("tcp", lc.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", lc.ListenAddress, err)
	}

	srv := grpc.NewServer(wire.ServerOption(), telemetry.ServerOption())
	pb.RegisterFleetServer(srv, fleet.New(st, fabs))
	pb.RegisterDriverServer(srv, driver.New(st, checker))

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

func openStore(path string) (store.Store, error) {
	if path == "" || path == ":memory:" {
		return store.NewMemory(), nil
	}
	return store.Open(path, false)
}
