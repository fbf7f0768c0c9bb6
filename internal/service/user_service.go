package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yafi/support-backend/internal/auth"
	"github.com/yafi/support-backend/internal/config"
	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/repository"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// UserService manages account administration. Clients self-register through
// the auth flow; agent and admin accounts are created here by administrators.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository) *UserService {
	return &UserService{users: users, bcryptCost: cfg.Auth.BcryptCost}
}

// CreateAccount creates an account with an explicit role. Superadmins may
// create any role; admins only agents and clients.
func (s *UserService) CreateAccount(ctx context.Context, actor *domain.User, name, email, phone, password string, role domain.Role) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}
	if !actor.Role.CanManageRole(role) {
		return nil, apperrors.NewForbidden("cannot create accounts with this role")
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetAccount returns an account visible to the actor: self, or any account
// when the actor is an administrator.
func (s *UserService) GetAccount(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.ID != id && !actor.Role.CanViewGlobalStats() {
		return nil, apperrors.NewForbidden("cannot view this account")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListByRole returns active accounts with the given role. Admin only.
func (s *UserService) ListByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.CanViewGlobalStats() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateProfile updates name and phone. Self-service, or admin over a role
// the admin manages.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, id, name, phone string) (*domain.User, error) {
	user, err := s.authorizeMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	user.Phone = phone
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetActive toggles an account. Admin over managed roles only; an account
// cannot deactivate itself.
func (s *UserService) SetActive(ctx context.Context, actor *domain.User, id string, active bool) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.ID == id {
		return nil, apperrors.NewValidationError("cannot change own active state", nil)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.CanManageRole(user.Role) {
		return nil, apperrors.NewForbidden("cannot manage this account")
	}
	user.Active = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteAccount removes an account. Self-deletion is allowed; otherwise the
// actor must manage the target's role.
func (s *UserService) DeleteAccount(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.authorizeMutation(ctx, actor, id); err != nil {
		return err
	}
	return apperrors.MapError(s.users.Delete(ctx, id))
}

func (s *UserService) authorizeMutation(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.ID == id {
		return user, nil
	}
	if !actor.Role.CanManageRole(user.Role) {
		return nil, apperrors.NewForbidden("cannot manage this account")
	}
	return user, nil
}
