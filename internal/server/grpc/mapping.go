package grpc

import (
	"github.com/dmitrijs2005/gophtasks/internal/rpc"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
)

func toRPCTask(t *models.Task) rpc.Task {
	return rpc.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Email:       t.Email,
		ImageURL:    t.ImageURL,
		ImagePath:   t.ImagePath,
		CreatedAt:   t.CreatedAt,
	}
}

func toRPCSession(s *services.Session) *rpc.Session {
	return &rpc.Session{
		UserID:       s.UserID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}
