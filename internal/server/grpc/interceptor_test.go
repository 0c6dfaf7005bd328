package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/rpc"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// helper to build server
func newTestServer(secret string) *GRPCServer {
	return &GRPCServer{
		logger:    nopLogger{},
		jwtSecret: []byte(secret),
	}
}

func incoming(kv ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(kv...))
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newTestServer("secret")

	for _, m := range []string{rpc.MethodPing, rpc.MethodSignUp, rpc.MethodSignIn, rpc.MethodRefreshToken, rpc.MethodSignOut} {
		called := false
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			called = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: m}, h)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		if !called || resp != "ok" {
			t.Fatalf("%s: handler not called", m)
		}
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: rpc.MethodListTasks}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: rpc.MethodListTasks}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called with invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(incoming(common.AccessTokenHeaderName, "not-a-valid-jwt"), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "invalid token" {
		t.Fatalf("expected 'invalid token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: rpc.MethodListTasks}

	tok, err := auth.GenerateToken(auth.Identity{UserID: "u1", Email: "a@x.com"}, []byte("secret"), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called with expired token")
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(incoming(common.AccessTokenHeaderName, tok), nil, info, h)
	if status.Convert(err).Message() != "token expired" {
		t.Fatalf("expected 'token expired', got %v", err)
	}
}

func TestInterceptor_ValidToken_PutsIdentity(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: rpc.MethodListTasks}

	tok, err := auth.GenerateToken(auth.Identity{UserID: "u1", Email: "a@x.com"}, []byte("secret"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got auth.Identity
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = auth.IdentityFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(incoming(common.AccessTokenHeaderName, tok), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: rpc.MethodPing}

	var got string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got = logging.RequestIDFromContext(ctx)
		return nil, nil
	}

	_, _ = s.requestIDInterceptor(incoming(common.RequestIDHeaderName, "req-42"), nil, info, h)
	if got != "req-42" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	_, _ = s.requestIDInterceptor(context.Background(), nil, info, h)
	if got == "" {
		t.Fatal("expected a generated request id")
	}
}

type stubServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *stubServerStream) Context() context.Context { return s.ctx }

func TestStreamAccessTokenInterceptor(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.StreamServerInfo{FullMethod: rpc.MethodSubscribe, IsServerStream: true}

	err := s.streamAccessTokenInterceptor(nil, &stubServerStream{ctx: context.Background()}, info, func(srv interface{}, ss grpc.ServerStream) error {
		t.Fatal("handler should not be called without token")
		return nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	tok, _ := auth.GenerateToken(auth.Identity{UserID: "u1", Email: "a@x.com"}, []byte("secret"), time.Minute)
	var got auth.Identity
	err = s.streamAccessTokenInterceptor(nil, &stubServerStream{ctx: incoming(common.AccessTokenHeaderName, tok)}, info, func(srv interface{}, ss grpc.ServerStream) error {
		got, _ = auth.IdentityFromContext(ss.Context())
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != "a@x.com" {
		t.Fatalf("identity not propagated: %+v", got)
	}
}

func TestCaller_MissingIdentity(t *testing.T) {
	if _, err := caller(context.Background()); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}
