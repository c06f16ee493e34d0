package services

import (
	"context"
	"fmt"

	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/common"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// TokenSource yields the current session token.
type TokenSource interface {
	Token() (string, bool)
}

// MailService is the nikmail mailbox of the signed-in user.
type MailService struct {
	client  client.MailClient
	session TokenSource
	log     logging.Logger
}

func NewMailService(c client.MailClient, session TokenSource, log logging.Logger) *MailService {
	if log == nil {
		log = logging.Nop()
	}
	return &MailService{client: c, session: session, log: log.With("component", "mail")}
}

func (s *MailService) token() (string, error) {
	token, ok := s.session.Token()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

func (s *MailService) List(ctx context.Context, folder models.MailFolder, limit int) ([]models.Email, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	emails, err := s.client.ListMail(ctx, token, folder, limit)
	if err != nil {
		return nil, sessionError("list mail", err)
	}
	return emails, nil
}

// Send delivers email and returns the id of the stored copy.
func (s *MailService) Send(ctx context.Context, email models.OutgoingEmail) (int64, error) {
	if common.IsBlank(email.ToEmail) {
		return 0, fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	token, err := s.token()
	if err != nil {
		return 0, err
	}
	id, err := s.client.SendMail(ctx, token, email)
	if err != nil {
		return 0, sessionError("send mail", err)
	}
	s.log.Info(ctx, "mail sent", "id", id)
	return id, nil
}

func (s *MailService) MarkRead(ctx context.Context, id int64) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.client.MarkRead(ctx, token, id); err != nil {
		return sessionError("mark read", err)
	}
	return nil
}

// ToggleStar flips the star on an email and returns the new value.
func (s *MailService) ToggleStar(ctx context.Context, id int64) (bool, error) {
	token, err := s.token()
	if err != nil {
		return false, err
	}
	starred, err := s.client.ToggleStar(ctx, token, id)
	if err != nil {
		return false, sessionError("toggle star", err)
	}
	return starred, nil
}

func (s *MailService) Archive(ctx context.Context, id int64) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.client.Archive(ctx, token, id); err != nil {
		return sessionError("archive", err)
	}
	return nil
}
