package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-api/config"
	"blog-api/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenClaims struct {
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	ValidateCredentials(ctx context.Context, email, password string) (*models.User, error)
	IssueSession(ctx context.Context, user *models.User) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error)
	Logout(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	VerifyAccessToken(token string) (*models.AuthenticatedUser, error)
}

type authService struct {
	users UserService
	cfg   config.JWTConfig
}

func NewAuthService(users UserService, cfg config.JWTConfig) AuthService {
	return &authService{users: users, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.users.Create(ctx, models.CreateUserRequest{
		RegisterRequest: req,
		Roles:           []string{string(models.RoleUser)},
	})
	if err != nil {
		return nil, err
	}

	return s.IssueSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, user)
}

func (s *authService) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		var notFound models.ErrorNotFound
		if errors.As(err, &notFound) {
			return nil, models.NewUnauthorized("Invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, models.NewUnauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorized("Invalid credentials")
	}

	return user, nil
}

func (s *authService) IssueSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.signToken(user, s.cfg.Secret, s.cfg.Expiration, "")
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signToken(user, s.cfg.RefreshSecret, s.cfg.RefreshExpiration, uuid.NewString())
	if err != nil {
		return nil, err
	}

	// Replaces any earlier refresh token, ending other sessions
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: models.SessionUser{
			ID:        user.ID,
			Email:     user.Email,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Roles:     user.Roles.Strings(),
		},
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, models.NewUnauthorized("Invalid refresh token")
	}

	user, err := s.users.FindOne(ctx, claims.Subject)
	if err != nil {
		return nil, models.NewUnauthorized("Invalid refresh token")
	}

	if user.RefreshToken == nil {
		return nil, models.NewUnauthorized("Access denied")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.RefreshToken), []byte(refreshTokenDigest(refreshToken))); err != nil {
		return nil, models.NewUnauthorized("Invalid refresh token")
	}

	accessToken, err := s.signToken(user, s.cfg.Secret, s.cfg.Expiration, "")
	if err != nil {
		return nil, err
	}

	return &models.RefreshResponse{AccessToken: accessToken}, nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	return s.users.UpdateRefreshToken(ctx, userID, "")
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindOne(ctx, userID)
}

func (s *authService) VerifyAccessToken(token string) (*models.AuthenticatedUser, error) {
	claims, err := s.parseToken(token, s.cfg.Secret)
	if err != nil {
		return nil, models.NewUnauthorized("Invalid token: %v", err)
	}

	return &models.AuthenticatedUser{
		ID:       claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Roles:    models.ParseRoles(claims.Roles),
	}, nil
}

func (s *authService) signToken(user *models.User, secret []byte, ttl time.Duration, id string) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		Email:    user.Email,
		Username: user.Username,
		Roles:    user.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *authService) parseToken(tokenString string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
