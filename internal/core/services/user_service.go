package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrEmailAlreadyExists = fmt.Errorf("%w: email already exists", domain.ErrDuplicateEntry)
	ErrOldPasswordWrong   = fmt.Errorf("%w: old password is incorrect", domain.ErrValidation)
	ErrCannotDeleteSelf   = fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	ErrNotAMember         = fmt.Errorf("%w: only members can be removed", domain.ErrValidation)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, password.MinLength)
)

// UserService handles account management
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	defaultPassword  string
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	defaultPassword string,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		defaultPassword:  defaultPassword,
	}
}

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	Name     string
	Email    string
	Password string
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// ListUsers lists accounts, optionally restricted to one role
func (s *UserService) ListUsers(ctx context.Context, p *domain.Principal, role string, offset, limit int) ([]*models.User, int64, error) {
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return nil, 0, err
	}

	var filter *domain.Role
	if role != "" {
		r := domain.Role(strings.ToUpper(role))
		if !r.IsValid() {
			return nil, 0, invalidf("unknown role %q", role)
		}
		filter = &r
	}

	return s.userRepo.List(ctx, filter, offset, limit)
}

// ResetPassword sets a user's password back to the configured default and
// returns it.
func (s *UserService) ResetPassword(ctx context.Context, p *domain.Principal, userID string) (string, error) {
	if err := domain.Authorize(p, domain.AdminOnly); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", notFound(err, domain.ErrUserNotFound)
	}

	hashed, err := password.Hash(s.defaultPassword)
	if err != nil {
		return "", err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	// Old sessions must not outlive the reset
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		return "", err
	}

	log.Printf("🔑 Password reset for %s by %s", user.Email, p.Name)
	return s.defaultPassword, nil
}

// ListMembers lists every member ordered by name
func (s *UserService) ListMembers(ctx context.Context, p *domain.Principal) ([]*models.User, error) {
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.ListByRole(ctx, domain.RoleAnggota)
}

// CreateMember creates a new member account
func (s *UserService) CreateMember(ctx context.Context, p *domain.Principal, input *CreateMemberInput) (*models.User, error) {
	// 1. Check access
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return nil, err
	}

	// 2. Validate input
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, invalidf("name and email are required")
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	// 3. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	// 4. Hash password
	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 5. Create member
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     domain.RoleAnggota,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	log.Printf("✅ Member created: %s by %s", user.Email, p.Name)
	return user, nil
}

// DeleteMember soft deletes a member. Their bills and payments stay in place.
func (s *UserService) DeleteMember(ctx context.Context, p *domain.Principal, userID string) error {
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return err
	}
	if userID == p.UserID {
		return ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFound(err, domain.ErrUserNotFound)
	}
	if user.Role != domain.RoleAnggota {
		return ErrNotAMember
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		return err
	}

	log.Printf("🗑️ Member removed: %s by %s", user.Email, p.Name)
	return nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, p *domain.Principal) (*models.User, error) {
	if err := domain.Authorize(p, domain.AnyAuthenticated); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

// ChangePassword changes the caller's own password
func (s *UserService) ChangePassword(ctx context.Context, p *domain.Principal, input *ChangePasswordInput) error {
	user, err := s.GetProfile(ctx, p)
	if err != nil {
		return err
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	// Validate new password
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("🔑 Password changed for %s", user.Email)
	return nil
}
