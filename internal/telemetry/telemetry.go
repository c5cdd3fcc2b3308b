// Package telemetry wires up the OpenTelemetry TracerProvider and the
// otelgrpc stats handlers every fleetml gRPC client/server attaches.
// Grounded in ployz's cmd/ployzd/main.go (TracerProvider setup)
// and internal_legacy_do_not_read/daemon/proxy/local.go (otelgrpc
// client stats handler on a dialed connection).
package telemetry

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/stats"
)

// Setup installs a process-wide TracerProvider and returns a shutdown
// func the caller should defer.
func Setup() func(context.Context) error {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// ServerStatsHandler returns the otelgrpc handler every fleetml gRPC
// server (SuperLink's Fleet/Driver services, SuperExec's Exec service,
// SuperNode's ClientAppIo service) registers via grpc.StatsHandler.
func ServerStatsHandler() stats.Handler {
	return otelgrpc.NewServerHandler()
}

// ClientStatsHandler returns the otelgrpc handler every fleetml gRPC
// client dial attaches via grpc.WithStatsHandler.
func ClientStatsHandler() stats.Handler {
	return otelgrpc.NewClientHandler()
}

// ServerOption bundles ServerStatsHandler into a grpc.ServerOption.
func ServerOption() grpc.ServerOption {
	return grpc.StatsHandler(ServerStatsHandler())
}

// ClientDialOption bundles ClientStatsHandler into a grpc.DialOption.
func ClientDialOption() grpc.DialOption {
	return grpc.WithStatsHandler(ClientStatsHandler())
}
