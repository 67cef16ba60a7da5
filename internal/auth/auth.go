// Package auth resolves dashboard sessions. Credentials are the stored
// users plus one built-in admin pair; there is deliberately no hashing or
// token hardening here.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Built-in fallback so a fresh install can always log in.
const (
	builtinAdminUser     = "admin"
	builtinAdminPassword = "admin"
)

type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

// Login checks credentials and builds the session every core component
// consumes: role, office binding and notification preference, resolved once
// here instead of re-derived piecemeal by each view.
func (s *Service) Login(ctx context.Context, username, password, counterID, notificationPreference string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if notificationPreference != models.NotifyVoice && notificationPreference != models.NotifySound {
		notificationPreference = models.NotifyVoice
	}

	if username == builtinAdminUser && password == builtinAdminPassword {
		return models.Session{
			Role:                   models.RoleAdmin,
			NotificationPreference: notificationPreference,
		}, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return models.Session{}, err
	}
	for _, user := range users {
		if !strings.EqualFold(user.Username, username) || user.Password != password {
			continue
		}
		session := models.Session{
			Role:                   user.Role,
			UserID:                 user.UserID,
			OfficeID:               user.OfficeID,
			CounterID:              counterID,
			NotificationPreference: notificationPreference,
		}
		if user.OfficeID != "" {
			office, ok, err := s.store.GetOffice(ctx, user.OfficeID)
			if err != nil {
				return models.Session{}, err
			}
			if ok {
				session.OfficeName = office.Name
			}
		}
		return session, nil
	}
	return models.Session{}, ErrInvalidCredentials
}
