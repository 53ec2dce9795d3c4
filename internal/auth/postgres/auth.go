package postgres

import (
	"fmt"
	"time"

	"github.com/incidentops/incident-management/internal/auth"
	sessionDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/session"
	userDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Repository implements the auth user and session stores with GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(username string) (int64, string, error) {
	var row userDatamodel.User
	err := r.db.Select("id", "password_hash").
		Where("username = ? AND is_active = ?", username, true).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, "", fmt.Errorf("user not found")
		}
		return 0, "", err
	}
	return row.ID, row.PasswordHash, nil
}

func (r *Repository) GetAuthUser(userID int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ? AND is_active = ?", userID, true).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	role, err := auth.ParseRole(row.Role)
	if err != nil {
		// Legacy rows may carry unknown role strings; treat them as
		// the least-privileged role instead of locking the user out.
		role = auth.RoleUser
	}

	return &auth.User{
		ID:                   row.ID,
		Username:             row.Username,
		Email:                row.Email,
		Role:                 role,
		NotificationsEnabled: row.NotificationsEnabled,
	}, nil
}

func (r *Repository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(dto auth.RegisterDTO, passwordHash string) (int64, error) {
	row := &userDatamodel.User{
		Username:             dto.Username,
		Email:                dto.Email,
		PasswordHash:         passwordHash,
		FirstName:            dto.FirstName,
		LastName:             dto.LastName,
		Department:           dto.Department,
		RoleLevel:            dto.RoleLevel,
		Role:                 string(auth.RoleUser),
		IsActive:             true,
		NotificationsEnabled: dto.NotificationsEnabled,
		CreatedAt:            time.Now(),
	}
	if err := r.db.Create(row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *Repository) Create(session *auth.Session) error {
	row := &sessionDatamodel.Session{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	session.ID = row.ID
	return nil
}

func (r *Repository) GetByToken(token string) (*auth.Session, error) {
	var row sessionDatamodel.Session
	err := r.db.Where("token = ?", token).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, auth.ErrInvalidSession
		}
		return nil, err
	}
	return &auth.Session{
		ID:        row.ID,
		Token:     row.Token,
		UserID:    row.UserID,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *Repository) Delete(token string) error {
	return r.db.Where("token = ?", token).Delete(&sessionDatamodel.Session{}).Error
}

func (r *Repository) DeleteExpired(now time.Time) error {
	return r.db.Where("expires_at < ?", now).Delete(&sessionDatamodel.Session{}).Error
}
