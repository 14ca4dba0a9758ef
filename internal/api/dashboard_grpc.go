package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skynest/internal/backend"
	"skynest/internal/domain"
	"skynest/internal/models"
	"skynest/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	DashboardServiceName = "skynest.dashboard.v1.DashboardService"
	GetDashboardMethod   = "/" + DashboardServiceName + "/GetDashboard"
)

// DashboardServer answers GetDashboard. The request names the principal the
// dashboard is built for: {"role", "user_id", "branch_id", "guest_id"}.
type DashboardServer interface {
	GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var dashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDashboard", Handler: getDashboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "skynest/dashboard/v1/dashboard.proto",
}

func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&dashboardServiceDesc, srv)
}

func getDashboardHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetDashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetDashboardMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetDashboard(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DashboardClient calls the dashboard service over a client connection.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func (c *DashboardClient) GetDashboard(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetDashboardMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardProvider builds the dashboard for a user.
type DashboardProvider interface {
	For(ctx context.Context, user models.User) (*service.Dashboard, error)
}

type dashboardService struct {
	dashboards DashboardProvider
}

func NewDashboardService(dashboards DashboardProvider) DashboardServer {
	return &dashboardService{dashboards: dashboards}
}

func (s *dashboardService) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := principalFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	d, err := s.dashboards.For(ctx, user)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(d)
}

func principalFromStruct(req *structpb.Struct) (models.User, error) {
	fields := req.GetFields()
	role, ok := models.ParseRole(fields["role"].GetStringValue())
	if !ok {
		return models.User{}, errors.New("role must be admin, receptionist or guest")
	}
	user := models.User{
		ID:       int64(fields["user_id"].GetNumberValue()),
		Role:     role,
		BranchID: int64(fields["branch_id"].GetNumberValue()),
		GuestID:  int64(fields["guest_id"].GetNumberValue()),
	}
	switch {
	case role == models.RoleReceptionist && user.BranchID <= 0:
		return user, errors.New("branch_id is required for receptionist")
	case role == models.RoleGuest && user.GuestID <= 0:
		return user, errors.New("guest_id is required for guest")
	}
	return user, nil
}

// toStruct goes through JSON so the struct mirrors the HTTP view-model.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode dashboard")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode dashboard")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode dashboard: %v", err))
	}
	return out, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	}
	switch st := backend.StatusOf(err); {
	case st == 401:
		return status.Error(codes.Unauthenticated, err.Error())
	case st == 403:
		return status.Error(codes.PermissionDenied, err.Error())
	case st == 404:
		return status.Error(codes.NotFound, err.Error())
	case st >= 500:
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
