package services

import (
	"context"

	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// IdentitySource yields the signed-in identity.
type IdentitySource interface {
	CurrentIdentity() *models.Identity
}

// DownloadsService manages the signed-in user's downloads list.
type DownloadsService struct {
	client  client.DownloadsClient
	session IdentitySource
	log     logging.Logger
}

func NewDownloadsService(c client.DownloadsClient, session IdentitySource, log logging.Logger) *DownloadsService {
	if log == nil {
		log = logging.Nop()
	}
	return &DownloadsService{client: c, session: session, log: log.With("component", "downloads")}
}

func (s *DownloadsService) userID() (int64, error) {
	id := s.session.CurrentIdentity()
	if id == nil || id.ID == nil {
		return 0, ErrNotAuthenticated
	}
	return *id.ID, nil
}

func (s *DownloadsService) List(ctx context.Context) ([]models.Download, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	list, err := s.client.ListDownloads(ctx, uid)
	if err != nil {
		return nil, sessionError("list downloads", err)
	}
	return list, nil
}

func (s *DownloadsService) SetInstalled(ctx context.Context, id int64, installed bool) error {
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if err := s.client.SetInstalled(ctx, uid, id, installed); err != nil {
		return sessionError("update download", err)
	}
	return nil
}

func (s *DownloadsService) Delete(ctx context.Context, id int64) error {
	uid, err := s.userID()
	if err != nil {
		return err
	}
	if err := s.client.DeleteDownload(ctx, uid, id); err != nil {
		return sessionError("delete download", err)
	}
	s.log.Info(ctx, "download deleted", "id", id)
	return nil
}
