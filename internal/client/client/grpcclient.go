package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/taskerid/internal/client/models"
	gs "github.com/dmitrijs2005/taskerid/internal/server/grpc"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *gs.Client
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn, client: gs.NewClient(conn)}, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) RegisterMember(ctx context.Context, fullName, email, userName, password string) (string, error) {
	token, err := s.client.RegisterMember(ctx, fullName, email, userName, password)
	if err != nil {
		return "", mapError(err)
	}
	return token, nil
}

func (s *GRPCClient) RegisterTasker(ctx context.Context, r models.TaskerRegistration) (string, error) {
	msg, err := s.client.RegisterTasker(ctx, services.TaskerRegistration{
		UserName:         r.UserName,
		Email:            r.Email,
		FullName:         r.FullName,
		Password:         r.Password,
		Skills:           r.Skills,
		ExperienceLevel:  r.ExperienceLevel,
		HourlyRate:       r.HourlyRate,
		SelectedCategory: r.SelectedCategory,
		CategoryID:       r.CategoryID,
	})
	if err != nil {
		return "", mapError(err)
	}
	return msg, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) (string, error) {
	token, err := s.client.Login(ctx, userName, password)
	if err != nil {
		return "", mapError(err)
	}
	return token, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context, token string) (*models.Identity, error) {
	doc, err := s.client.WhoAmI(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}

	// The document uses the same field names as the JSON API.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	var out models.Identity
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &out, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrThrottled, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
