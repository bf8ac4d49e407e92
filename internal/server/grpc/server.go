package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskerid/internal/logging"
	"github.com/dmitrijs2005/taskerid/internal/server/metrics"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"github.com/dmitrijs2005/taskerid/internal/server/throttle"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const transport = "grpc"

// IdentityService is the part of services.IdentityService served over gRPC.
type IdentityService interface {
	RegisterMember(ctx context.Context, fullName, email, userName, password string) (string, error)
	RegisterTasker(ctx context.Context, r services.TaskerRegistration) (string, error)
	Login(ctx context.Context, identifier, password string) (string, error)
	WhoAmI(ctx context.Context, token string) (*services.Identity, error)
}

type Options struct {
	// Limiter throttles credential attempts. Nil means unlimited.
	Limiter throttle.Limiter
	Metrics *metrics.Metrics
}

type GRPCServer struct {
	address string
	service IdentityService
	limiter throttle.Limiter
	metrics *metrics.Metrics
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(address string, svc IdentityService, opts Options, l logging.Logger) *GRPCServer {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = throttle.Unlimited{}
	}
	return &GRPCServer{
		address: address,
		service: svc,
		limiter: limiter,
		metrics: opts.Metrics,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.recoveryInterceptor,
		s.loggingInterceptor,
		s.throttleInterceptor,
		s.accessTokenInterceptor,
	))

	srv.RegisterService(&serviceDesc, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
