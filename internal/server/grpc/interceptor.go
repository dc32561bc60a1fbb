package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/common"
	"github.com/dmitrijs2005/gophcrm/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

const (
	RoleAdmin   = common.RoleAdmin
	RoleManager = common.RoleManager
)

var publicMethods = map[string]bool{
	FullMethod("Login"): true,
	FullMethod("Ping"):  true,
}

// restricted lists the roles allowed to call a method. Methods not listed
// are open to any signed-in user.
var restricted = map[string][]string{
	FullMethod("CreateRole"): {RoleAdmin},
	FullMethod("DeleteRole"): {RoleAdmin},
	FullMethod("ListUsers"):  {RoleAdmin},
	FullMethod("CreateUser"): {RoleAdmin},
	FullMethod("DeleteUser"): {RoleAdmin},

	FullMethod("DeleteCustomer"):    {RoleAdmin, RoleManager},
	FullMethod("SendBatch"):         {RoleAdmin, RoleManager},
	FullMethod("UpdateEmailStatus"): {RoleAdmin, RoleManager},
	FullMethod("EmailStats"):        {RoleAdmin, RoleManager},
	FullMethod("ExportEmailLogs"):   {RoleAdmin, RoleManager},
	FullMethod("SaveTemplate"):      {RoleAdmin, RoleManager},
	FullMethod("DeleteTemplate"):    {RoleAdmin, RoleManager},
}

// WithIdentity returns ctx carrying the caller's identity.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller set by the access token interceptor.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

func allowed(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.deps.Tokens.Parse(accessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	id, err := claims.Identity()
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if roles, ok := restricted[info.FullMethod]; ok && !allowed(id.Role, roles) {
		s.logger.Warn(ctx, "forbidden", "method", info.FullMethod, "user_id", id.UserID, "role", id.Role)
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	return handler(WithIdentity(ctx, id), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
