package client

import (
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/rpc"
)

func toSession(s *rpc.Session) *models.Session {
	return &models.Session{
		UserID:       s.UserID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func fromRPCTask(t *rpc.Task) *models.Task {
	return &models.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Email:       t.Email,
		ImageURL:    t.ImageURL,
		ImagePath:   t.ImagePath,
		CreatedAt:   t.CreatedAt,
	}
}
