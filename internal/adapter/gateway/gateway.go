package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	grpcadapter "user-fixture-service/internal/adapter/grpc"
	"user-fixture-service/pkg/logger"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NewMux returns a grpc-gateway mux translating REST calls under /gw/v1 into
// UserService RPCs issued through client.
func NewMux(client *grpcadapter.UserServiceClient, log *zap.Logger) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(
		runtime.WithIncomingHeaderMatcher(headerMatcher),
		runtime.WithOutgoingHeaderMatcher(func(key string) (string, bool) {
			if key == logger.RequestIDHeader {
				return key, true
			}
			return runtime.MetadataHeaderPrefix + key, true
		}),
	)

	g := &gateway{mux: mux, client: client, log: log}

	routes := []struct {
		method, pattern string
		h               runtime.HandlerFunc
	}{
		{http.MethodPost, "/gw/v1/users", g.addUser},
		{http.MethodGet, "/gw/v1/users/{id}", g.fetchUser},
		{http.MethodGet, "/gw/v1/emails/validate", g.validateEmail},
		{http.MethodPost, "/gw/v1/names/format", g.formatName},
		{http.MethodGet, "/gw/v1/config", g.loadConfig},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.h); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", r.method, r.pattern, err)
		}
	}

	return mux, nil
}

// headerMatcher forwards the request ID header as plain metadata and
// everything else the way the gateway does by default.
func headerMatcher(key string) (string, bool) {
	if strings.EqualFold(key, logger.RequestIDHeader) {
		return logger.RequestIDHeader, true
	}
	return runtime.DefaultHeaderMatcher(key)
}

type gateway struct {
	mux    *runtime.ServeMux
	client *grpcadapter.UserServiceClient
	log    *zap.Logger
}

// call annotates the request context, runs rpc and writes its response or
// error with the mux's marshaler. Response metadata is forwarded as headers.
func (g *gateway) call(w http.ResponseWriter, r *http.Request, method string, rpc func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error)) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)

	ctx, err := runtime.AnnotateContext(r.Context(), g.mux, r, method)
	if err != nil {
		runtime.HTTPError(r.Context(), g.mux, outbound, w, r, err)
		return
	}

	var md runtime.ServerMetadata
	resp, err := rpc(ctx, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
	ctx = runtime.NewServerMetadataContext(ctx, md)
	if err != nil {
		if code := status.Code(err); code == codes.Internal || code == codes.Unavailable {
			g.log.Error("gateway call failed", zap.String("method", method), zap.Error(err))
		}
		runtime.HTTPError(ctx, g.mux, outbound, w, r, err)
		return
	}

	runtime.ForwardResponseMessage(ctx, g.mux, outbound, w, r, resp)
}

func (g *gateway) addUser(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, grpcadapter.AddUserMethod, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		in, err := decodeStruct(g.mux, r)
		if err != nil {
			return nil, err
		}
		return g.client.AddUser(ctx, in, opts...)
	})
}

func (g *gateway) fetchUser(w http.ResponseWriter, r *http.Request, params map[string]string) {
	g.call(w, r, grpcadapter.FetchUserMethod, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		id, err := strconv.ParseInt(params["id"], 10, 64)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "id must be a valid number: %q", params["id"])
		}
		return g.client.FetchUser(ctx, wrapperspb.Int64(id), opts...)
	})
}

func (g *gateway) validateEmail(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, grpcadapter.ValidateEmailMethod, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		return g.client.ValidateEmail(ctx, wrapperspb.String(r.URL.Query().Get("address")), opts...)
	})
}

func (g *gateway) formatName(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, grpcadapter.FormatNameMethod, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		in, err := decodeStruct(g.mux, r)
		if err != nil {
			return nil, err
		}
		return g.client.FormatName(ctx, in, opts...)
	})
}

func (g *gateway) loadConfig(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, grpcadapter.LoadConfigMethod, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		return g.client.LoadConfig(ctx, &emptypb.Empty{}, opts...)
	})
}

// decodeStruct reads a JSON object body with the mux's inbound marshaler.
func decodeStruct(mux *runtime.ServeMux, r *http.Request) (*structpb.Struct, error) {
	inbound, _ := runtime.MarshalerForRequest(mux, r)
	in := new(structpb.Struct)
	if err := inbound.NewDecoder(r.Body).Decode(in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	return in, nil
}
