package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/rpc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// refreshLeeway is how close to expiry an access token may be before a
// stream is opened with it.
const refreshLeeway = 10 * time.Second

// taskAPI is the subset of rpc.TaskServiceClient used here.
type taskAPI interface {
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	SignUp(ctx context.Context, in *rpc.Credentials, opts ...grpc.CallOption) (*rpc.Session, error)
	SignIn(ctx context.Context, in *rpc.Credentials, opts ...grpc.CallOption) (*rpc.Session, error)
	RefreshToken(ctx context.Context, in *rpc.RefreshTokenRequest, opts ...grpc.CallOption) (*rpc.Session, error)
	SignOut(ctx context.Context, in *rpc.SignOutRequest, opts ...grpc.CallOption) (*rpc.SignOutResponse, error)
	InsertTask(ctx context.Context, in *rpc.InsertTaskRequest, opts ...grpc.CallOption) (*rpc.TaskResponse, error)
	ListTasks(ctx context.Context, in *rpc.ListTasksRequest, opts ...grpc.CallOption) (*rpc.ListTasksResponse, error)
	GetTask(ctx context.Context, in *rpc.GetTaskRequest, opts ...grpc.CallOption) (*rpc.TaskResponse, error)
	UpdateTask(ctx context.Context, in *rpc.UpdateTaskRequest, opts ...grpc.CallOption) (*rpc.TaskResponse, error)
	DeleteTask(ctx context.Context, in *rpc.DeleteTaskRequest, opts ...grpc.CallOption) (*rpc.DeleteTaskResponse, error)
	PrepareUpload(ctx context.Context, in *rpc.PrepareUploadRequest, opts ...grpc.CallOption) (*rpc.PrepareUploadResponse, error)
	RemoveObjects(ctx context.Context, in *rpc.RemoveObjectsRequest, opts ...grpc.CallOption) (*rpc.RemoveObjectsResponse, error)
	Subscribe(ctx context.Context, in *rpc.SubscribeRequest, opts ...grpc.CallOption) (rpc.TaskEventStream, error)
}

type GRPCClient struct {
	endpointURL    string
	maxMessageSize int
	conn           *grpc.ClientConn
	client         taskAPI

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	onRefresh    func(*models.Session)

	// serializes refreshes so a rotated refresh token is used only once
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	if len(md.Get(common.RequestIDHeaderName)) == 0 {
		md.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// expiresWithin reads the exp claim without verifying the signature; the
// server is the one that validates.
func expiresWithin(token string, d time.Duration) bool {
	if token == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < d
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	s.mu.Unlock()
}

// OnTokenRefresh registers fn to be called after every transparent refresh.
func (s *GRPCClient) OnTokenRefresh(fn func(*models.Session)) {
	s.mu.Lock()
	s.onRefresh = fn
	s.mu.Unlock()
}

// refresh exchanges the refresh token for a new pair unless another caller
// already replaced usedAccess.
func (s *GRPCClient) refresh(ctx context.Context, usedAccess string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != usedAccess {
		return nil
	}
	if refresh == "" {
		return ErrNotSignedIn
	}

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return err
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)

	s.mu.RLock()
	cb := s.onRefresh
	s.mu.RUnlock()
	if cb != nil {
		cb(toSession(resp))
	}
	return nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)

	if err == nil || rpc.PublicMethods[method] || !isTokenExpired(err) {
		return err
	}

	if rerr := s.refresh(ctx, access); rerr != nil {
		return err
	}

	// tokens refreshed, retry once with the new access token
	access, _ = s.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

// streamAccessTokenInterceptor refreshes ahead of time: an expired token on a
// server stream only shows up on the first Recv.
func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {

	access, _ := s.tokens()
	if expiresWithin(access, refreshLeeway) {
		if err := s.refresh(ctx, access); err != nil {
			return nil, err
		}
		access, _ = s.tokens()
	}

	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

func NewGRPCClient(endpointURL string, maxMessageSize int) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, maxMessageSize: maxMessageSize}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	}
	if s.maxMessageSize > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(s.maxMessageSize), grpc.MaxCallSendMsgSize(s.maxMessageSize)))
	}

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewTaskServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.client.SignUp(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return toSession(resp), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.client.SignIn(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return toSession(resp), nil
}

// Refresh exchanges refreshToken for a new session and adopts its tokens.
// Used to restore a persisted session on startup.
func (s *GRPCClient) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return toSession(resp), nil
}

// SignOut forgets the local tokens and revokes the refresh token on the
// server. The local state is cleared even when the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.tokens()
	s.setTokens("", "")

	if refresh == "" {
		return nil
	}

	if _, err := s.client.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refresh}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) InsertTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	req := &rpc.InsertTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Email:       t.Email,
		ImageURL:    t.ImageURL,
		ImagePath:   t.ImagePath,
	}

	resp, err := s.client.InsertTask(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return fromRPCTask(&resp.Task), nil
}

func (s *GRPCClient) ListTasks(ctx context.Context, email string) ([]*models.Task, error) {
	resp, err := s.client.ListTasks(ctx, &rpc.ListTasksRequest{Email: email})
	if err != nil {
		return nil, mapError(err)
	}

	list := make([]*models.Task, 0, len(resp.Tasks))
	for i := range resp.Tasks {
		list = append(list, fromRPCTask(&resp.Tasks[i]))
	}
	return list, nil
}

func (s *GRPCClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	resp, err := s.client.GetTask(ctx, &rpc.GetTaskRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return fromRPCTask(&resp.Task), nil
}

func (s *GRPCClient) UpdateTask(ctx context.Context, id, description string) (*models.Task, error) {
	resp, err := s.client.UpdateTask(ctx, &rpc.UpdateTaskRequest{ID: id, Description: description})
	if err != nil {
		return nil, mapError(err)
	}
	return fromRPCTask(&resp.Task), nil
}

func (s *GRPCClient) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.client.DeleteTask(ctx, &rpc.DeleteTaskRequest{ID: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) PrepareUpload(ctx context.Context, path, contentType string) (*models.UploadTicket, error) {
	resp, err := s.client.PrepareUpload(ctx, &rpc.PrepareUploadRequest{Path: path, ContentType: contentType})
	if err != nil {
		return nil, mapError(err)
	}
	return &models.UploadTicket{UploadURL: resp.UploadURL, PublicURL: resp.PublicURL, Path: resp.Path}, nil
}

func (s *GRPCClient) RemoveObjects(ctx context.Context, paths []string) error {
	if _, err := s.client.RemoveObjects(ctx, &rpc.RemoveObjectsRequest{Paths: paths}); err != nil {
		return mapError(err)
	}
	return nil
}
