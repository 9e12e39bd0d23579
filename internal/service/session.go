package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kerhoff/eventboard/internal/models"
)

// SessionKey is the slot holding the signed-in user.
const SessionKey = "current_user"

// SignIn stores the user in the session slot, replacing any previous one.
func (s *Service) SignIn(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = strings.TrimSpace(user.ID)
	user.Username = strings.TrimSpace(user.Username)
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode session user: %w", err)
	}
	if err := s.sessions.Save(ctx, SessionKey, data); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Infof("Signed in %s", user.Name())
	return &user, nil
}

// CurrentUser returns the signed-in user, or models.ErrNotFound when the
// slot is empty.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	data, err := s.sessions.Load(ctx, SessionKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt slot behaves like an empty one.
		s.logger.WithError(err).Warn("Discarding unreadable session")
		if rmErr := s.sessions.Remove(ctx, SessionKey); rmErr != nil {
			return nil, errors.Join(fmt.Errorf("decode session: %w", err), rmErr)
		}
		return nil, fmt.Errorf("load session: %w", models.ErrNotFound)
	}
	return &user, nil
}

// SignOut clears the session slot.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.sessions.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("Signed out")
	return nil
}
