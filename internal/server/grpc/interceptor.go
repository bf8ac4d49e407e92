package grpc

import (
	"context"
	"fmt"
	"math"
	"net"
	"path"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accessTokenKey ctxKey = "accessToken"

// throttledOps names the methods that accept credentials.
var throttledOps = map[string]string{
	RegisterMemberMethod: "register",
	RegisterTaskerMethod: "register_tasker",
	LoginMethod:          "login",
}

func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "panic", "method", info.FullMethod, "error", fmt.Sprint(p), "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	s.logger.Info(ctx, "grpc request",
		"method", path.Base(info.FullMethod),
		"code", status.Code(err).String(),
		"duration", elapsed,
	)
	return resp, err
}

// throttleInterceptor counts credential attempts per peer IP and method.
// Limiter failures let the call through.
func (s *GRPCServer) throttleInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	op, ok := throttledOps[info.FullMethod]
	if !ok {
		return handler(ctx, req)
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, op+":"+peerIP(ctx))
	if err != nil {
		s.logger.Warn(ctx, "throttle unavailable", "operation", op, "error", err)
		return handler(ctx, req)
	}
	if !allowed {
		s.metrics.Throttled(transport, op)
		_ = grpc.SetHeader(ctx, metadata.Pairs("retry-after", strconv.Itoa(int(math.Ceil(retryAfter.Seconds())))))
		return nil, status.Error(codes.ResourceExhausted, common.ErrTooManyAttempts.Error())
	}

	return handler(ctx, req)
}

// accessTokenInterceptor requires "authorization: Bearer <token>" metadata
// on WhoAmI and passes the raw token on in the context.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != WhoAmIMethod {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			token, _ = auth.BearerToken(values[0])
		}
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	return handler(context.WithValue(ctx, accessTokenKey, token), req)
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
