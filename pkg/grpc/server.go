// Package grpc runs the gRPC side of stockpile: the standard
// grpc.health.v1.Health service, driven by a periodic store probe, plus
// reflection so grpcurl works without proto files.
//
//	srv, err := grpc.Start(ctx, config.GRPCPort(), func(ctx context.Context) error {
//	    return database.Ping(ctx, db)
//	})
//	// ...run until signal...
//	srv.Stop()
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/stockpile/pkg/logger"
	"github.com/shashiranjanraj/stockpile/pkg/metrics"
)

// ServiceName is the health-check name reported next to the overall "" entry.
const ServiceName = "stockpile.Inventory"

const probeInterval = 10 * time.Second

var (
	handledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpile",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "Total number of gRPC calls completed by method and code.",
	}, []string{"method", "code"})

	handlingSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stockpile",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "gRPC response latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method"})
)

func init() {
	metrics.MustRegister(handledTotal, handlingSeconds)
}

// Probe reports whether the backing store is reachable.
type Probe func(ctx context.Context) error

// Server is a running gRPC server.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
	probe  Probe
	cancel context.CancelFunc
}

// Start listens on port, serves in the background and keeps the health
// status in step with probe until ctx ends or Stop is called.
func Start(ctx context.Context, port string, probe Probe) (*Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
	)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	ctx, cancel := context.WithCancel(ctx)
	s := &Server{srv: srv, health: hs, lis: lis, probe: probe, cancel: cancel}
	s.Refresh(ctx)

	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve error", "error", err)
		}
	}()
	go s.watch(ctx)

	logger.Info("gRPC server started", "addr", lis.Addr().String())
	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string { return s.lis.Addr().String() }

// Refresh runs the probe once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	if s.probe != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.probe(pctx)
		cancel()
		if err != nil {
			logger.Warn("grpc: store probe failed", "error", err)
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) watch(ctx context.Context) {
	t := time.NewTicker(probeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}

// Stop marks the server as not serving and waits for in-flight RPCs.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	s.cancel()
	s.health.Shutdown()
	s.srv.GracefulStop()
	logger.Info("gRPC server stopped")
}

func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	handledTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	handlingSeconds.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	logger.WithCtx(ctx).Debug("grpc: request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", code.String(),
	)
	return resp, err
}
