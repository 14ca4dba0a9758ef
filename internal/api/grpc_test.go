package api

import (
	"context"
	"net"
	"testing"

	"skynest/internal/config"
	"skynest/internal/domain"
	"skynest/internal/models"
	"skynest/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubDashboards struct {
	got models.User
	err error
}

func (s *stubDashboards) For(_ context.Context, user models.User) (*service.Dashboard, error) {
	s.got = user
	if s.err != nil {
		return nil, s.err
	}
	return &service.Dashboard{
		Role:      user.Role,
		Reception: &service.ReceptionDashboard{BranchID: user.BranchID, InHouse: 4},
	}, nil
}

func startGRPC(t *testing.T, cfg config.PortalConfig, dashboards DashboardProvider) *grpc.ClientConn {
	t.Helper()
	logger := zerolog.Nop()
	lis := bufconn.Listen(1 << 20)

	srv, err := newGRPCServer(cfg, lis, dashboards, &logger)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func securedConfig() config.PortalConfig {
	return config.PortalConfig{
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "ops-key", Extra: "ops-extra", Name: "grafana", Permissions: []string{"read:dashboard"}},
			},
		},
	}
}

func withKey(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "x-api-key", "ops-key", "x-api-extra", "ops-extra")
}

func TestGRPCGetDashboard(t *testing.T) {
	stub := &stubDashboards{}
	client := NewDashboardClient(startGRPC(t, securedConfig(), stub))

	req, err := structpb.NewStruct(map[string]any{"role": "receptionist", "user_id": 2, "branch_id": 10})
	require.NoError(t, err)

	resp, err := client.GetDashboard(withKey(context.Background()), req)
	require.NoError(t, err)
	assert.Equal(t, "receptionist", resp.GetFields()["role"].GetStringValue())
	reception := resp.GetFields()["reception"].GetStructValue()
	require.NotNil(t, reception)
	assert.Equal(t, float64(4), reception.GetFields()["in_house"].GetNumberValue())
	assert.Equal(t, int64(10), stub.got.BranchID)
}

func TestGRPCGetDashboardRequiresKey(t *testing.T) {
	client := NewDashboardClient(startGRPC(t, securedConfig(), &stubDashboards{}))
	req, _ := structpb.NewStruct(map[string]any{"role": "admin"})

	_, err := client.GetDashboard(context.Background(), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPCGetDashboardBadPrincipal(t *testing.T) {
	client := NewDashboardClient(startGRPC(t, securedConfig(), &stubDashboards{}))

	for _, fields := range []map[string]any{
		{"role": "janitor"},
		{"role": "receptionist"},
		{"role": "guest", "user_id": 3},
	} {
		req, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		_, err = client.GetDashboard(withKey(context.Background()), req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "fields %v", fields)
	}
}

func TestGRPCGetDashboardMapsErrors(t *testing.T) {
	stub := &stubDashboards{err: domain.ErrForbidden}
	client := NewDashboardClient(startGRPC(t, securedConfig(), stub))
	req, _ := structpb.NewStruct(map[string]any{"role": "admin", "user_id": 1})

	_, err := client.GetDashboard(withKey(context.Background()), req)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestGRPCHealthWithoutKey(t *testing.T) {
	conn := startGRPC(t, securedConfig(), &stubDashboards{})
	health := healthpb.NewHealthClient(conn)

	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: DashboardServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestBuildTLSConfigErrors(t *testing.T) {
	_, err := buildTLSConfig(config.APITLSConfig{Enabled: true})
	assert.Error(t, err)

	_, err = buildTLSConfig(config.APITLSConfig{Enabled: true, CertFile: "missing.pem", KeyFile: "missing.key"})
	assert.ErrorContains(t, err, "load keypair")

	_, err = loadCertPool("")
	assert.Error(t, err)
}
