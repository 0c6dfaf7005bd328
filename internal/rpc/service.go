package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "gophtasks.v1.TaskService"

// Full method names, as seen by interceptors.
const (
	MethodPing          = "/" + ServiceName + "/Ping"
	MethodSignUp        = "/" + ServiceName + "/SignUp"
	MethodSignIn        = "/" + ServiceName + "/SignIn"
	MethodRefreshToken  = "/" + ServiceName + "/RefreshToken"
	MethodSignOut       = "/" + ServiceName + "/SignOut"
	MethodInsertTask    = "/" + ServiceName + "/InsertTask"
	MethodListTasks     = "/" + ServiceName + "/ListTasks"
	MethodGetTask       = "/" + ServiceName + "/GetTask"
	MethodUpdateTask    = "/" + ServiceName + "/UpdateTask"
	MethodDeleteTask    = "/" + ServiceName + "/DeleteTask"
	MethodPrepareUpload = "/" + ServiceName + "/PrepareUpload"
	MethodRemoveObjects = "/" + ServiceName + "/RemoveObjects"
	MethodSubscribe     = "/" + ServiceName + "/Subscribe"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	MethodPing:         true,
	MethodSignUp:       true,
	MethodSignIn:       true,
	MethodRefreshToken: true,
	MethodSignOut:      true,
}

// TaskServiceServer is implemented by the server.
type TaskServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SignUp(context.Context, *Credentials) (*Session, error)
	SignIn(context.Context, *Credentials) (*Session, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*Session, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	InsertTask(context.Context, *InsertTaskRequest) (*TaskResponse, error)
	ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error)
	GetTask(context.Context, *GetTaskRequest) (*TaskResponse, error)
	UpdateTask(context.Context, *UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(context.Context, *DeleteTaskRequest) (*DeleteTaskResponse, error)
	PrepareUpload(context.Context, *PrepareUploadRequest) (*PrepareUploadResponse, error)
	RemoveObjects(context.Context, *RemoveObjectsRequest) (*RemoveObjectsResponse, error)
	Subscribe(*SubscribeRequest, TaskEventSender) error
}

// TaskEventSender is the server side of a Subscribe stream.
type TaskEventSender interface {
	Send(*TaskEvent) error
	Context() context.Context
}

// UnimplementedTaskServiceServer can be embedded to get Unimplemented
// errors for methods a server does not provide.
type UnimplementedTaskServiceServer struct{}

func (UnimplementedTaskServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedTaskServiceServer) SignUp(context.Context, *Credentials) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedTaskServiceServer) SignIn(context.Context, *Credentials) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedTaskServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*Session, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedTaskServiceServer) SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedTaskServiceServer) InsertTask(context.Context, *InsertTaskRequest) (*TaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method InsertTask not implemented")
}
func (UnimplementedTaskServiceServer) ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTasks not implemented")
}
func (UnimplementedTaskServiceServer) GetTask(context.Context, *GetTaskRequest) (*TaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTask not implemented")
}
func (UnimplementedTaskServiceServer) UpdateTask(context.Context, *UpdateTaskRequest) (*TaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateTask not implemented")
}
func (UnimplementedTaskServiceServer) DeleteTask(context.Context, *DeleteTaskRequest) (*DeleteTaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteTask not implemented")
}
func (UnimplementedTaskServiceServer) PrepareUpload(context.Context, *PrepareUploadRequest) (*PrepareUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PrepareUpload not implemented")
}
func (UnimplementedTaskServiceServer) RemoveObjects(context.Context, *RemoveObjectsRequest) (*RemoveObjectsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveObjects not implemented")
}
func (UnimplementedTaskServiceServer) Subscribe(*SubscribeRequest, TaskEventSender) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}

// RegisterTaskServiceServer attaches srv to s.
func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a grpc.MethodDesc handler for a typed unary method.
func unary[Req any, Resp any](name string, call func(TaskServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TaskServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TaskServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type taskEventSender struct {
	grpc.ServerStream
}

func (x *taskEventSender) Send(m *TaskEvent) error {
	return x.ServerStream.SendMsg(m)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TaskServiceServer).Subscribe(in, &taskEventSender{stream})
}

// ServiceDesc describes TaskService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", TaskServiceServer.Ping),
		unary("SignUp", TaskServiceServer.SignUp),
		unary("SignIn", TaskServiceServer.SignIn),
		unary("RefreshToken", TaskServiceServer.RefreshToken),
		unary("SignOut", TaskServiceServer.SignOut),
		unary("InsertTask", TaskServiceServer.InsertTask),
		unary("ListTasks", TaskServiceServer.ListTasks),
		unary("GetTask", TaskServiceServer.GetTask),
		unary("UpdateTask", TaskServiceServer.UpdateTask),
		unary("DeleteTask", TaskServiceServer.DeleteTask),
		unary("PrepareUpload", TaskServiceServer.PrepareUpload),
		unary("RemoveObjects", TaskServiceServer.RemoveObjects),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "gophtasks/v1/tasks",
}
