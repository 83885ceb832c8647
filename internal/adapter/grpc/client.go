package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// UserServiceClient is the client side of fixture.v1.UserService.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient returns a client that issues calls over cc.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) AddUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, AddUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) FetchUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FetchUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) ValidateEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ValidateEmailMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) FormatName(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, FormatNameMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) LoadConfig(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LoadConfigMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
