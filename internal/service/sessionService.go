package service

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/ds124wfegd/rentdesk/internal/database/postgres"
	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/ds124wfegd/rentdesk/internal/store"
	"github.com/sirupsen/logrus"
)

type sessionService struct {
	auth store.AuthStore
}

func NewSessionService(auth store.AuthStore) SessionService {
	return &sessionService{auth: auth}
}

func (s *sessionService) Login(ctx context.Context, creds *entity.Credentials) (*entity.Identity, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", entity.ErrInvalidInput)
	}

	identity, err := s.auth.Login(ctx, creds)
	if err != nil {
		logrus.WithField("email", creds.Email).Infof("login failed: %v", err)
		return nil, err
	}
	return identity, nil
}

type historyService struct {
	journal repository.TransitionRepository
}

// NewHistoryService reads the transition journal. A nil journal answers
// entity.ErrHistoryDisabled.
func NewHistoryService(journal repository.TransitionRepository) HistoryService {
	return &historyService{journal: journal}
}

func (h *historyService) History(ctx context.Context, bookingID string, limit int) ([]*entity.Transition, error) {
	if h.journal == nil {
		return nil, entity.ErrHistoryDisabled
	}
	if strings.TrimSpace(bookingID) == "" {
		return nil, fmt.Errorf("%w: booking id is required", entity.ErrInvalidInput)
	}
	return h.journal.ListByBooking(ctx, bookingID, limit)
}
