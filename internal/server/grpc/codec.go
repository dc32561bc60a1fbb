package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// method is one RPC: it takes and returns a Struct.
type method func(s *GRPCServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// unary adapts a typed handler to a method. The request Struct is decoded
// into Req through its JSON form and the response is encoded the same way.
func unary[Req any, Resp any](fn func(s *GRPCServer, ctx context.Context, req *Req) (Resp, error)) method {
	return func(s *GRPCServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		var req Req
		if err := Decode(in, &req); err != nil {
			return nil, status.Error(codes.InvalidArgument, "malformed request")
		}
		resp, err := fn(s, ctx, &req)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		out, err := Encode(resp)
		if err != nil {
			s.logger.Error(ctx, "encode response", "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
		return out, nil
	}
}

// Decode unmarshals a Struct into v using v's JSON tags.
func Decode(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// Encode marshals v into a Struct using v's JSON tags.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
