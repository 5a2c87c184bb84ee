// Package users manages dashboard users and email/password login.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

// Service manages the users collection.
type Service struct {
	repo      repository.Repository[models.User]
	passwords auth.Passwords
	log       *slog.Logger
	now       func() time.Time
}

// NewService returns a Service. A nil passwords keeps them as entered.
func NewService(repo repository.Repository[models.User], passwords auth.Passwords, logger *slog.Logger) *Service {
	if passwords == nil {
		passwords = auth.PlainPasswords{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, passwords: passwords, log: logger.With("component", "users"), now: models.Now}
}

// Create stores a new user. Email addresses are unique, compared without case.
func (s *Service) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	if err := in.Validate(true); err != nil {
		return models.User{}, err
	}
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      in.Role,
		Password:  hash,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: s.now(),
	}
	if err := s.repo.InsertIf(ctx, u, emailFree(u.Email)); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update replaces the editable fields of a user. An empty password keeps the
// stored one.
func (s *Service) Update(ctx context.Context, id string, in models.UserInput) (models.User, error) {
	if err := in.Validate(false); err != nil {
		return models.User{}, err
	}
	var hash string
	if in.Password != "" {
		var err error
		if hash, err = s.passwords.Hash(in.Password); err != nil {
			return models.User{}, err
		}
	}
	u, err := s.repo.UpdateIf(ctx, id, emailFree(in.Email), func(u *models.User) error {
		u.Name = strings.TrimSpace(in.Name)
		u.Email = strings.TrimSpace(in.Email)
		u.Phone = strings.TrimSpace(in.Phone)
		u.Role = in.Role
		if hash != "" {
			u.Password = hash
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		return nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// emailFree rejects any other user already holding email.
func emailFree(email string) func(models.User) error {
	email = strings.TrimSpace(email)
	return func(other models.User) error {
		if strings.EqualFold(other.Email, email) {
			return models.Invalid("email", "is already in use")
		}
		return nil
	}
}

// FindByEmail returns the user with email, ignoring case and surrounding
// whitespace.
func (s *Service) FindByEmail(ctx context.Context, email string) (models.User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	email = strings.TrimSpace(email)
	for _, u := range all {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, models.NotFound("user", email)
}

// Authenticate returns the active user matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !s.passwords.Verify(u.Password, password) {
		s.log.WarnContext(ctx, "login rejected", "user_id", u.ID, "reason", "password")
		return models.User{}, models.ErrInvalidCredentials
	}
	if !u.IsActive {
		s.log.WarnContext(ctx, "login rejected", "user_id", u.ID, "reason", "inactive")
		return models.User{}, models.ErrForbidden
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Names maps user ids to display names.
func (s *Service) Names(ctx context.Context) (map[string]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(all))
	for _, u := range all {
		names[u.ID] = u.Name
	}
	return names, nil
}

// Delete removes a user. Leads and proposals keep the dangling id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}
