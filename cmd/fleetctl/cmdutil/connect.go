// Package cmdutil holds the connection-resolution helpers fleetctl's
// subcommands share. Adapted from ployz's cmd/ployz/cmdutil
// package; here the target resolves through flag/env/default
// precedence before dialing.
package cmdutil

import (
	"context"
	"fmt"
	"os"

	"fleetml/internal/rpc/pb"
	"fleetml/internal/rpc/wire"
	"fleetml/internal/telemetry"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const defaultServerAddress = "127.0.0.1:9092"

// ServerAddress resolves the SuperLink address to dial: flag > env >
// default, in that order.
func ServerAddress(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("FLEETML_SERVER"); env != "" {
		return env
	}
	return defaultServerAddress
}

// Dial opens a gRPC connection to SuperLink and returns both Driver and
// Fleet clients over it, since fleetctl needs both surfaces (pushing
// tasks and inspecting run/node state plus fetching FAB content).
func Dial(ctx context.Context, addr string) (*grpc.ClientConn, pb.DriverClient, pb.FleetClient, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(wire.CallOption()),
		telemetry.ClientDialOption(),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, pb.NewDriverClient(conn), pb.NewFleetClient(conn), nil
}
