package client

import (
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/logging"
	gs "github.com/dmitrijs2005/taskerid/internal/server/grpc"
	"github.com/dmitrijs2005/taskerid/internal/server/rest"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	token     string
	message   string
	identity  *services.Identity
	err       error
	gotTasker services.TaskerRegistration
	gotLogin  [2]string
	gotToken  string
}

func (f *fakeService) RegisterMember(context.Context, string, string, string, string) (string, error) {
	return f.token, f.err
}

func (f *fakeService) RegisterTasker(_ context.Context, r services.TaskerRegistration) (string, error) {
	f.gotTasker = r
	return f.message, f.err
}

func (f *fakeService) Login(_ context.Context, identifier, password string) (string, error) {
	f.gotLogin = [2]string{identifier, password}
	return f.token, f.err
}

func (f *fakeService) WhoAmI(_ context.Context, token string) (*services.Identity, error) {
	f.gotToken = token
	return f.identity, f.err
}

func startHTTP(t *testing.T, svc *fakeService) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(rest.NewServer("", svc, rest.Options{}, logging.Nop{}).Handler())
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 5*time.Second)
}

func startGRPC(t *testing.T, svc *fakeService) *GRPCClient {
	t.Helper()

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gs.NewGRPCServer("", svc, gs.Options{}, logging.Nop{}).Serve(ctx, listen)
	}()

	c, err := NewGRPCClient(listen.Addr().String())
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		cancel()
		<-done
	})
	return c
}
