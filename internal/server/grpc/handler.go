package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/rpc"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.Credentials) (*rpc.Session, error) {
	s.logger.Info(ctx, "Sign-up request", "email", req.Email)

	sess, err := s.users.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "email", sess.Email, "user_id", sess.UserID)
	return toRPCSession(sess), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.Credentials) (*rpc.Session, error) {
	sess, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "Sign-in failed", "email", req.Email)
		return nil, s.toStatus(ctx, err)
	}
	return toRPCSession(sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.Session, error) {
	sess, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toRPCSession(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.SignOutResponse, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.SignOutResponse{}, nil
}

func (s *GRPCServer) InsertTask(ctx context.Context, req *rpc.InsertTaskRequest) (*rpc.TaskResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.Insert(ctx, id, &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Email:       req.Email,
		ImageURL:    req.ImageURL,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TaskResponse{Task: toRPCTask(t)}, nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.tasks.List(ctx, id, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &rpc.ListTasksResponse{Tasks: make([]rpc.Task, 0, len(list))}
	for _, t := range list {
		resp.Tasks = append(resp.Tasks, toRPCTask(t))
	}
	return resp, nil
}

func (s *GRPCServer) GetTask(ctx context.Context, req *rpc.GetTaskRequest) (*rpc.TaskResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.Get(ctx, id, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TaskResponse{Task: toRPCTask(t)}, nil
}

func (s *GRPCServer) UpdateTask(ctx context.Context, req *rpc.UpdateTaskRequest) (*rpc.TaskResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.UpdateDescription(ctx, id, req.ID, req.Description)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.TaskResponse{Task: toRPCTask(t)}, nil
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *rpc.DeleteTaskRequest) (*rpc.DeleteTaskResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Delete(ctx, id, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.DeleteTaskResponse{}, nil
}

func (s *GRPCServer) PrepareUpload(ctx context.Context, req *rpc.PrepareUploadRequest) (*rpc.PrepareUploadResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	ticket, err := s.storage.PrepareUpload(ctx, id, req.Path, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.PrepareUploadResponse{UploadURL: ticket.UploadURL, PublicURL: ticket.PublicURL, Path: ticket.Path}, nil
}

func (s *GRPCServer) RemoveObjects(ctx context.Context, req *rpc.RemoveObjectsRequest) (*rpc.RemoveObjectsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Remove(ctx, id, req.Paths); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.RemoveObjectsResponse{}, nil
}

// Subscribe streams the caller's task changes until the client goes away.
func (s *GRPCServer) Subscribe(req *rpc.SubscribeRequest, stream rpc.TaskEventSender) error {
	ctx := stream.Context()

	id, err := caller(ctx)
	if err != nil {
		return err
	}

	events, release, err := s.tasks.Subscribe(ctx, id, req.Email)
	if err != nil {
		return s.toStatus(ctx, err)
	}
	defer release()

	s.logger.Info(ctx, "subscribed", "email", req.Email)
	defer s.logger.Info(ctx, "subscription closed", "email", req.Email)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(&rpc.TaskEvent{Type: rpc.EventType(ev.Type), Task: toRPCTask(&ev.Task)}); err != nil {
				return err
			}
		}
	}
}
