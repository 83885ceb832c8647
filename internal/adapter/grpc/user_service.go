package grpc

import (
	"context"
	"math"
	"strconv"

	"user-fixture-service/internal/usecase/user"
	apperrors "user-fixture-service/pkg/errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fixture.v1.UserService"

// Full method names, as seen by interceptors and clients.
const (
	AddUserMethod       = "/" + ServiceName + "/AddUser"
	FetchUserMethod     = "/" + ServiceName + "/FetchUser"
	ValidateEmailMethod = "/" + ServiceName + "/ValidateEmail"
	FormatNameMethod    = "/" + ServiceName + "/FormatName"
	LoadConfigMethod    = "/" + ServiceName + "/LoadConfig"
)

// UserServiceAPI is the server side of fixture.v1.UserService.
type UserServiceAPI interface {
	AddUser(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int64Value, error)
	FetchUser(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error)
	ValidateEmail(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	FormatName(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error)
	LoadConfig(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// UserServiceServer implements the gRPC user service
type UserServiceServer struct {
	uc  user.Usecase
	log *zap.Logger
}

var _ UserServiceAPI = (*UserServiceServer)(nil)

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.Usecase, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{uc: uc, log: log}
}

// Register attaches the service to s.
func Register(s grpc.ServiceRegistrar, srv UserServiceAPI) {
	s.RegisterService(&ServiceDesc, srv)
}

// AddUser handles the AddUser RPC. The request struct carries id, name and
// an optional email.
func (s *UserServiceServer) AddUser(ctx context.Context, in *structpb.Struct) (*wrapperspb.Int64Value, error) {
	fields := in.GetFields()

	id, err := int64Field(fields, "id")
	if err != nil {
		return nil, apperrors.ToStatus(err).Err()
	}

	resp, err := s.uc.AddUser(ctx, user.AddUserRequest{
		ID:    id,
		Name:  fields["name"].GetStringValue(),
		Email: fields["email"].GetStringValue(),
	})
	if err != nil {
		return nil, apperrors.ToStatus(err).Err()
	}

	return wrapperspb.Int64(resp.ID), nil
}

// FetchUser handles the FetchUser RPC. Absence is codes.NotFound.
func (s *UserServiceServer) FetchUser(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	resp, err := s.uc.FetchUser(ctx, user.FetchUserRequest{ID: in.GetValue()})
	if err != nil {
		return nil, apperrors.ToStatus(err).Err()
	}

	fields := map[string]*structpb.Value{
		"id":           idValue(resp.ID),
		"name":         structpb.NewStringValue(resp.Name),
		"display_name": structpb.NewStringValue(resp.DisplayName),
	}
	if resp.Email != "" {
		fields["email"] = structpb.NewStringValue(resp.Email)
	}
	return &structpb.Struct{Fields: fields}, nil
}

// ValidateEmail handles the ValidateEmail RPC.
func (s *UserServiceServer) ValidateEmail(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	resp, err := s.uc.ValidateEmail(ctx, user.ValidateEmailRequest{Address: in.GetValue()})
	if err != nil {
		return nil, apperrors.ToStatus(err).Err()
	}
	return wrapperspb.Bool(resp.Valid), nil
}

// FormatName handles the FormatName RPC. The request struct carries first
// and last.
func (s *UserServiceServer) FormatName(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := in.GetFields()
	resp, err := s.uc.FormatName(ctx, user.FormatNameRequest{
		First: fields["first"].GetStringValue(),
		Last:  fields["last"].GetStringValue(),
	})
	if err != nil {
		return nil, apperrors.ToStatus(err).Err()
	}
	return wrapperspb.String(resp.FullName), nil
}

// LoadConfig handles the LoadConfig RPC.
func (s *UserServiceServer) LoadConfig(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	resp, err := s.uc.LoadConfig(ctx)
	if err != nil {
		return nil, apperrors.ToStatus(err).Err()
	}

	out, err := structpb.NewStruct(resp.Settings)
	if err != nil {
		s.log.Error("settings are not representable as a struct", zap.Error(err))
		return nil, apperrors.ToStatus(apperrors.NewInternalError("failed to encode config", err)).Err()
	}
	return out, nil
}

// maxExactID is the largest magnitude a float64 number value carries without
// rounding. Larger ids travel as decimal strings.
const maxExactID = 1<<53 - 1

// int64Field reads an integral id sent either as a number within
// ±maxExactID or as a decimal string. A missing field reads as 0.
func int64Field(fields map[string]*structpb.Value, name string) (int64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f != math.Trunc(f) {
			return 0, apperrors.NewValidationError(name, "must be an integer")
		}
		if math.Abs(f) > maxExactID {
			return 0, apperrors.NewValidationError(name, "exceeds 2^53-1; send it as a decimal string")
		}
		return int64(f), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, apperrors.NewValidationError(name, "must be an integer")
		}
		return n, nil
	default:
		return 0, apperrors.NewValidationError(name, "must be a number")
	}
}

// idValue encodes id as a number when it is exact as a float64 and as a
// decimal string otherwise.
func idValue(id int64) *structpb.Value {
	if id > maxExactID || id < -maxExactID {
		return structpb.NewStringValue(strconv.FormatInt(id, 10))
	}
	return structpb.NewNumberValue(float64(id))
}

// ServiceDesc describes fixture.v1.UserService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceAPI)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("AddUser", func() *structpb.Struct { return new(structpb.Struct) }, UserServiceAPI.AddUser),
		unaryMethod("FetchUser", func() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) }, UserServiceAPI.FetchUser),
		unaryMethod("ValidateEmail", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, UserServiceAPI.ValidateEmail),
		unaryMethod("FormatName", func() *structpb.Struct { return new(structpb.Struct) }, UserServiceAPI.FormatName),
		unaryMethod("LoadConfig", func() *emptypb.Empty { return new(emptypb.Empty) }, UserServiceAPI.LoadConfig),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fixture/v1/user.proto",
}

func unaryMethod[Req, Resp proto.Message](
	name string,
	newReq func() Req,
	call func(UserServiceAPI, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			api := srv.(UserServiceAPI)
			if interceptor == nil {
				return call(api, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(api, ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
