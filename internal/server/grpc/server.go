// Package grpc exposes the task service over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/rpc"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/realtime"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
}

type taskService interface {
	Insert(ctx context.Context, caller auth.Identity, t *models.Task) (*models.Task, error)
	List(ctx context.Context, caller auth.Identity, email string) ([]*models.Task, error)
	Get(ctx context.Context, caller auth.Identity, id string) (*models.Task, error)
	UpdateDescription(ctx context.Context, caller auth.Identity, id string, description string) (*models.Task, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
	Subscribe(ctx context.Context, caller auth.Identity, email string) (<-chan realtime.Event, func(), error)
}

type storageService interface {
	PrepareUpload(ctx context.Context, caller auth.Identity, path string, contentType string) (*services.UploadTicket, error)
	Remove(ctx context.Context, caller auth.Identity, paths []string) error
}

// shutdownTimeout bounds GracefulStop while subscription streams are still open.
const shutdownTimeout = 5 * time.Second

type GRPCServer struct {
	rpc.UnimplementedTaskServiceServer
	address        string
	users          userService
	tasks          taskService
	storage        storageService
	logger         logging.Logger
	jwtSecret      []byte
	maxMessageSize int
}

func NewGRPCServer(a string, l logging.Logger, us userService, ts taskService, ss storageService, secretKey string, maxMessageSize int) *GRPCServer {
	return &GRPCServer{
		address:        a,
		logger:         l.With("module", "grpc_server"),
		users:          us,
		tasks:          ts,
		storage:        ss,
		jwtSecret:      []byte(secretKey),
		maxMessageSize: maxMessageSize,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.requestIDInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamRequestIDInterceptor, s.streamAccessTokenInterceptor),
	}
	if s.maxMessageSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(s.maxMessageSize), grpc.MaxSendMsgSize(s.maxMessageSize))
	}

	srv := grpc.NewServer(opts...)
	rpc.RegisterTaskServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			s.logger.Warn(ctx, "Graceful stop timed out, closing open streams")
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
