package user

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access methods for users.
type Repository interface {
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	Update(u *User) error
	UpdatePassword(id int64, passwordHash string) error
}

var ErrWrongPassword = errors.New("current password is incorrect")

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, ErrNotFound
	}
	return u, nil
}

// NotificationEmail implements notification.RecipientResolver.
func (s *Service) NotificationEmail(userID int64) (string, bool, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return "", false, err
	}
	return u.Email, u.NotificationsEnabled, nil
}

// UpdateProfile applies the non-nil fields of the DTO to the account.
func (s *Service) UpdateProfile(userID int64, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.Department != nil {
		u.Department = *dto.Department
	}
	if dto.RoleLevel != nil {
		u.RoleLevel = *dto.RoleLevel
	}
	if dto.NotificationsEnabled != nil {
		u.NotificationsEnabled = *dto.NotificationsEnabled
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID)
	return u, nil
}

// ChangePassword verifies the current password before storing the new
// hash. The old hash is never returned to the caller.
func (s *Service) ChangePassword(userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return ErrNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)) != nil {
		s.logger.Warn("password change rejected: wrong current password", "user_id", userID)
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(userID, string(hash)); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}
