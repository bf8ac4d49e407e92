package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) RegisterMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := newFieldReader(req)
	fullName, email, userName, password := r.String("fullName"), r.String("email"), r.String("userName"), r.String("password")
	if r.err != nil {
		return nil, status.Error(codes.InvalidArgument, r.err.Error())
	}

	start := time.Now()
	token, err := s.service.RegisterMember(ctx, fullName, email, userName, password)
	s.metrics.Observe(transport, "register", err, time.Since(start))
	if err != nil {
		return nil, s.statusError(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "username", userName)
	return structpb.NewStruct(map[string]any{"token": token})
}

func (s *GRPCServer) RegisterTasker(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := newFieldReader(req)
	reg := services.TaskerRegistration{
		UserName:         r.String("userName"),
		Email:            r.String("email"),
		FullName:         r.String("fullName"),
		Password:         r.String("password"),
		Skills:           r.Strings("skills"),
		ExperienceLevel:  r.String("experienceLevel"),
		HourlyRate:       r.Number("hourlyRate"),
		SelectedCategory: r.String("selectedCategory"),
		CategoryID:       r.Int("categoryId"),
	}
	if r.err != nil {
		return nil, status.Error(codes.InvalidArgument, r.err.Error())
	}

	start := time.Now()
	msg, err := s.service.RegisterTasker(ctx, reg)
	s.metrics.Observe(transport, "register_tasker", err, time.Since(start))
	if err != nil {
		return nil, s.statusError(ctx, "register_tasker", err)
	}

	s.logger.Info(ctx, "Registered tasker", "username", reg.UserName)
	return structpb.NewStruct(map[string]any{"message": msg})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := newFieldReader(req)
	userName, password := r.String("userName"), r.String("password")
	if r.err != nil {
		return nil, status.Error(codes.InvalidArgument, r.err.Error())
	}

	start := time.Now()
	token, err := s.service.Login(ctx, userName, password)
	s.metrics.Observe(transport, "login", err, time.Since(start))
	if err != nil {
		return nil, s.statusError(ctx, "login", err)
	}

	return structpb.NewStruct(map[string]any{"token": token})
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	token, ok := ctx.Value(accessTokenKey).(string)
	if !ok || token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing bearer token")
	}

	start := time.Now()
	id, err := s.service.WhoAmI(ctx, token)
	s.metrics.Observe(transport, "whoami", err, time.Since(start))
	if err != nil {
		return nil, s.statusError(ctx, "whoami", err)
	}

	out := map[string]any{
		"id":        id.UserID,
		"userName":  id.UserName,
		"email":     id.Email,
		"tokenId":   id.TokenID,
		"expiresAt": id.ExpiresAt.UTC().Format(time.RFC3339),
		"roles":     stringList(id.Roles),
	}
	if p := id.Profile; p != nil {
		out["profile"] = map[string]any{
			"skills":           stringList(p.Skills),
			"experienceLevel":  p.ExperienceLevel,
			"hourlyRate":       p.HourlyRate,
			"selectedCategory": p.SelectedCategory,
			"categoryId":       float64(p.CategoryID),
		}
	}

	return structpb.NewStruct(out)
}

// statusError maps service errors onto gRPC codes. Unclassified errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) statusError(ctx context.Context, op string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, common.ErrDuplicateUser):
		code = codes.AlreadyExists
	case errors.Is(err, common.ErrRegistrationFailed):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrAuthenticationFailed),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		code = codes.Unauthenticated
	case errors.Is(err, common.ErrTooManyAttempts):
		code = codes.ResourceExhausted
	default:
		s.logger.Error(ctx, "request failed", "operation", op, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
