package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	FindOne(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, req models.UpdateUserRequest, actor models.AuthenticatedUser) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, file io.Reader, actor models.AuthenticatedUser) (*models.User, error)
	Remove(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
	UpdateRefreshToken(ctx context.Context, id, refreshToken string) error
}

type userService struct {
	userRepo repositories.UserRepository
	uploader ImageUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader ImageUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// refreshTokenDigest shortens a JWT below bcrypt's 72 byte input limit.
func refreshTokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *userService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	// Check email and username
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, models.NewConflict("User with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, models.NewConflict("Username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roles := models.ParseRoles(req.Roles)
	if len(roles) == 0 {
		roles = models.Roles{models.RoleUser}
	}

	user := &models.User{
		Email:     email,
		Username:  req.Username,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
		Roles:     roles,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflict("User with this email or username already exists")
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) FindAll(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *userService) FindOne(ctx context.Context, id string) (*models.User, error) {
	if !helper.IsValidID(id) {
		return nil, models.NewBadRequest("Invalid user ID")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("User with ID %s not found", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("User with email %s not found", email)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, req models.UpdateUserRequest, actor models.AuthenticatedUser) (*models.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, models.NewForbidden("You can only update your own profile")
	}

	user, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if _, err := s.userRepo.GetByUsername(ctx, *req.Username); err == nil {
			return nil, models.NewConflict("Username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if req.Roles != nil || req.IsActive != nil {
		if !actor.IsAdmin() {
			return nil, models.NewForbidden("Only admins can change roles or account status")
		}
		if req.Roles != nil {
			user.Roles = models.ParseRoles(req.Roles)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflict("Username already taken")
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, id string, file io.Reader, actor models.AuthenticatedUser) (*models.User, error) {
	if actor.ID != id {
		return nil, models.NewForbidden("You can only update your own avatar")
	}

	user, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.uploader.UploadImage(ctx, file, "avatars")
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(ctx, id, map[string]interface{}{"avatar": result.URL}); err != nil {
		return nil, err
	}
	user.Avatar = result.URL

	return user, nil
}

func (s *userService) Remove(ctx context.Context, id string) error {
	if !helper.IsValidID(id) {
		return models.NewBadRequest("Invalid user ID")
	}

	affected, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NewNotFound("User with ID %s not found", id)
	}
	return nil
}

func (s *userService) UpdateLastLogin(ctx context.Context, id string) error {
	return s.updateFields(ctx, id, map[string]interface{}{"last_login": time.Now()})
}

// UpdateRefreshToken stores a hash of the token. An empty token clears it.
func (s *userService) UpdateRefreshToken(ctx context.Context, id, refreshToken string) error {
	var stored *string
	if refreshToken != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(refreshTokenDigest(refreshToken)), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash refresh token: %w", err)
		}
		h := string(hashed)
		stored = &h
	}

	return s.updateFields(ctx, id, map[string]interface{}{"refresh_token": stored})
}

func (s *userService) updateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.userRepo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFound("User with ID %s not found", id)
		}
		return err
	}
	return nil
}
