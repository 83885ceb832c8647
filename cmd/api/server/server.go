package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	ginhandler "user-fixture-service/internal/adapter/gin/handler"
	"user-fixture-service/internal/adapter/grpc/middleware"
	"user-fixture-service/internal/config"
	"user-fixture-service/internal/usecase/user"
	"user-fixture-service/pkg/ratelimit"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	HTTP   *http.Server
	Gin    *http.Server

	ginHandler  *ginhandler.UserHandler
	limiter     *ratelimit.Limiter
	gatewayConn *grpc.ClientConn

	grpcLis, httpLis, ginLis net.Listener

	shutdownOnce sync.Once
	shutdownErr  error
}

// defaultShutdownTimeout bounds the shutdown Serve starts on its own.
const defaultShutdownTimeout = 10 * time.Second

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	userUC user.Usecase,
	grpcRateLimiter *middleware.RateLimiter,
	ginHandler *ginhandler.UserHandler,
	limiter *ratelimit.Limiter,
) *Server {
	return &Server{
		Config:     cfg,
		Logger:     l,
		GRPC:       SetupGRPC(userUC, l, grpcRateLimiter),
		ginHandler: ginHandler,
		limiter:    limiter,
	}
}

// Start listens on all ports and serves until every server stops.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the gRPC, gateway and Gin ports and builds the HTTP servers.
// Binding happens before serving so port conflicts surface at startup.
func (s *Server) Listen(ctx context.Context) error {
	var lc net.ListenConfig
	var err error

	if s.grpcLis, err = lc.Listen(ctx, "tcp", s.grpcAddress()); err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	if s.httpLis, err = lc.Listen(ctx, "tcp", s.httpAddress()); err != nil {
		s.closeListeners()
		return fmt.Errorf("failed to listen for HTTP gateway: %w", err)
	}
	if s.ginLis, err = lc.Listen(ctx, "tcp", s.ginAddress()); err != nil {
		s.closeListeners()
		return fmt.Errorf("failed to listen for Gin: %w", err)
	}

	// The gateway dials the gRPC port actually bound
	grpcTarget := "127.0.0.1:" + strconv.Itoa(s.grpcLis.Addr().(*net.TCPAddr).Port)
	s.HTTP, s.gatewayConn, err = SetupHTTPGateway(grpcTarget, s.httpLis.Addr().String(), s.Config.App.SwaggerFile, s.Logger)
	if err != nil {
		s.closeListeners()
		return err
	}

	s.Gin = SetupGinServer(s.ginHandler, s.limiter, s.Config.Logger.ServiceName, s.ginLis.Addr().String(), s.Logger)
	return nil
}

// Serve runs the three servers until they stop. Listen must have succeeded.
// When one server fails or ctx ends, the others are shut down too. A graceful
// shutdown makes Serve return nil.
func (s *Server) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", s.grpcLis.Addr().String()))
		if err := s.GRPC.Serve(s.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("REST gateway running", zap.String("address", s.httpLis.Addr().String()))
		if err := s.HTTP.Serve(s.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP gateway: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("Gin REST API running", zap.String("address", s.ginLis.Addr().String()))
		if err := s.Gin.Serve(s.ginLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		select {
		case <-gctx.Done():
			s.Logger.Info("stopping remaining servers", zap.Error(context.Cause(gctx)))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
			defer cancel()
			if err := s.Shutdown(shutdownCtx); err != nil {
				s.Logger.Error("failed to stop servers", zap.Error(err))
			}
		case <-done:
		}
	}()

	err := g.Wait()
	close(done)
	return err
}

// Shutdown stops the HTTP servers within ctx, then drains gRPC. Only the
// first call does the work; later calls wait for it and return its result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.shutdown(ctx)
	})
	return s.shutdownErr
}

func (s *Server) shutdown(ctx context.Context) error {
	var errs []error

	if s.HTTP != nil {
		s.Logger.Info("shutting down HTTP server...")
		if err := s.HTTP.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.gatewayConn != nil {
		if err := s.gatewayConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("gateway client close: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC graceful stop: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

func (s *Server) shutdownTimeout() time.Duration {
	if secs := s.Config.App.ShutdownTimeoutSeconds; secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultShutdownTimeout
}

// Addrs returns the bound gRPC, gateway and Gin addresses after Listen.
func (s *Server) Addrs() (grpcAddr, httpAddr, ginAddr string) {
	if s.grpcLis == nil || s.httpLis == nil || s.ginLis == nil {
		return "", "", ""
	}
	return s.grpcLis.Addr().String(), s.httpLis.Addr().String(), s.ginLis.Addr().String()
}

func (s *Server) closeListeners() {
	for _, l := range []net.Listener{s.grpcLis, s.httpLis, s.ginLis} {
		if l != nil {
			_ = l.Close()
		}
	}
}

func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

func (s *Server) httpAddress() string {
	return ":" + s.Config.App.HTTPPort
}

func (s *Server) ginAddress() string {
	return ":" + s.Config.App.GinPort
}
