package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls IdentityService over an established connection.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) RegisterMember(ctx context.Context, fullName, email, userName, password string) (string, error) {
	out, err := c.call(ctx, RegisterMemberMethod, map[string]any{
		"fullName": fullName,
		"email":    email,
		"userName": userName,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return newFieldReader(out).String("token"), nil
}

func (c *Client) RegisterTasker(ctx context.Context, r services.TaskerRegistration) (string, error) {
	out, err := c.call(ctx, RegisterTaskerMethod, map[string]any{
		"userName":         r.UserName,
		"email":            r.Email,
		"fullName":         r.FullName,
		"password":         r.Password,
		"skills":           stringList(r.Skills),
		"experienceLevel":  r.ExperienceLevel,
		"hourlyRate":       r.HourlyRate,
		"selectedCategory": r.SelectedCategory,
		"categoryId":       float64(r.CategoryID),
	})
	if err != nil {
		return "", err
	}
	return newFieldReader(out).String("message"), nil
}

func (c *Client) Login(ctx context.Context, userName, password string) (string, error) {
	out, err := c.call(ctx, LoginMethod, map[string]any{
		"userName": userName,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return newFieldReader(out).String("token"), nil
}

// WhoAmI returns the identity document as a plain map.
func (c *Client) WhoAmI(ctx context.Context, token string) (map[string]any, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	out, err := c.call(ctx, WhoAmIMethod, map[string]any{})
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) call(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
