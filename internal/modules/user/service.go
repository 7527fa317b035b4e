package user

import (
	"context"
	"errors"
	"time"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"github.com/inkpress/core/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 7 * 24 * time.Hour

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Login verifies credentials and issues a JWT carrying the user's role.
func (s *Service) Login(ctx context.Context, username, password, ip string) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperror.Authorization("valid credentials")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, apperror.Authorization("valid credentials")
	}

	token, err := jwt.Sign(u.ID, u.Role, tokenTTL)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	s.db.WithContext(ctx).Model(&u).Updates(map[string]any{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	u.LastLoginTime = &now
	u.LastLoginIP = ip
	return token, &u, nil
}

// GetByID fetches a user. Returns (nil, nil) when absent.
func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create registers a new staff account.
func (s *Service) Create(ctx context.Context, username, password, name string, role models.Role) (*models.UserModel, error) {
	if len(password) < 8 {
		return nil, apperror.Validation("password", "must be at least 8 characters")
	}

	var count int64
	s.db.WithContext(ctx).Model(&models.UserModel{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, apperror.Conflict("username already taken: " + username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := models.UserModel{
		Username: username,
		Name:     name,
		Password: string(hash),
		Role:     role,
	}
	return &u, s.db.WithContext(ctx).Create(&u).Error
}

// SetRole changes a user's permission level.
func (s *Service) SetRole(ctx context.Context, id string, role models.Role) error {
	tx := s.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", id).Update("role", role)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}
