// Package grpc exposes the CRM over gRPC. Messages are google.protobuf.Struct
// values carrying JSON-shaped payloads, so no generated stubs are needed.
package grpc

import (
	"context"
	"net"
	"sort"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gophcrm.v1.CRMService"

// FullMethod returns the gRPC path of a service method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

type GRPCServer struct {
	address string
	logger  logging.Logger
	deps    Deps
}

func NewGRPCServer(address string, l logging.Logger, deps Deps) *GRPCServer {
	return &GRPCServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		deps:    deps,
	}
}

// crmService is the handler type of the service descriptor.
type crmService interface {
	invoke(ctx context.Context, m method, req *structpb.Struct) (*structpb.Struct, error)
}

func (s *GRPCServer) invoke(ctx context.Context, m method, req *structpb.Struct) (*structpb.Struct, error) {
	return m(s, ctx, req)
}

func methodHandler(name string, m method) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(crmService)
		if interceptor == nil {
			return svc.invoke(ctx, m, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return svc.invoke(ctx, m, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes every method in the methods table.
func ServiceDesc() *grpc.ServiceDesc {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)

	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*crmService)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "gophcrm/v1/crm.proto",
	}
	for _, name := range names {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{MethodName: name, Handler: methodHandler(name, methods[name])})
	}
	return desc
}

// Register adds the service to srv.
func (s *GRPCServer) Register(srv *grpc.Server) {
	srv.RegisterService(ServiceDesc(), s)
}

func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	s.Register(srv)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
