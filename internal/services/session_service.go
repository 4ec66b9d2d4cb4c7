package services

import (
	"context"
	"errors"
	"time"

	"restaurant_pos/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type Session struct {
	Token     string               `json:"token"`
	Caller    models.CallerContext `json:"caller"`
	Staff     *models.Staff        `json:"staff"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// SessionService backs the POS PIN login. Sessions live only in the
// session store and expire after the configured timeout.
type SessionService interface {
	Open(ctx context.Context, staffID, pin string) (*Session, error)
	Resolve(ctx context.Context, token string) (*models.CallerContext, error)
	Close(ctx context.Context, token string) error
}

type sessionService struct {
	staff   StaffService
	store   SessionStore
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewSessionService(staff StaffService, store SessionStore, timeout time.Duration, log logrus.FieldLogger) SessionService {
	return &sessionService{staff: staff, store: store, timeout: timeout, log: log}
}

func (s *sessionService) Open(ctx context.Context, staffID, pin string) (*Session, error) {
	if staffID == "" || pin == "" {
		return nil, &ValidationError{Field: "credentials", Message: "staff_id and pin are required"}
	}

	staff, err := s.staff.Authenticate(ctx, staffID, pin)
	if err != nil {
		if errors.Is(err, ErrAuthorization) {
			s.log.WithField("staff_id", staffID).Warn("POS login rejected")
		}
		return nil, err
	}
	caller, err := s.staff.CallerFor(ctx, staff)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.store.SaveSession(ctx, token, caller, s.timeout); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"staff_id": staff.ID, "role": staff.Role}).Info("POS session opened")
	return &Session{
		Token:     token,
		Caller:    caller,
		Staff:     staff,
		ExpiresAt: time.Now().Add(s.timeout),
	}, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*models.CallerContext, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	caller, ok, err := s.store.LoadSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return caller, nil
}

func (s *sessionService) Close(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}
