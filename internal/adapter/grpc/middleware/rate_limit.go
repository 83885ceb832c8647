package middleware

import (
	"context"
	"net"
	"strings"

	"user-fixture-service/pkg/ratelimit"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// RateLimiter applies a token bucket per gRPC method and client.
type RateLimiter struct {
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

// NewRateLimiter creates a new rate limiter interceptor.
func NewRateLimiter(limiter *ratelimit.Limiter, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		log:     log,
	}
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		clientIP := getClientIP(ctx)

		// Key: {method}:{ip}
		if rl.limiter.Allow(ctx, info.FullMethod+":"+clientIP) {
			return handler(ctx, req)
		}

		cfg := rl.limiter.Config()
		rl.log.Warn("rate limit exceeded",
			zap.String("client_ip", clientIP),
			zap.String("method", info.FullMethod),
			zap.Float64("limit", cfg.RequestsPerSecond),
		)
		return nil, status.Errorf(codes.ResourceExhausted,
			"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
			cfg.RequestsPerSecond, cfg.BurstCapacity)
	}
}

// getClientIP extracts the client address from the gRPC context.
func getClientIP(ctx context.Context) string {
	// Requests relayed by the gateway carry the original client here
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			first, _, _ := strings.Cut(xff[0], ",")
			return strings.TrimSpace(first)
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	// The port changes per connection and must not split a client's bucket
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}
