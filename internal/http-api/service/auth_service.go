package service

import (
	"context"
	"errors"
	"time"

	"ratehub/internal/config"
	"ratehub/internal/http-api/models"
	"ratehub/internal/http-api/repository"
	"ratehub/internal/mailer"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSignupConflict          = errors.New("username or email already bound to another account")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrInvalidToken            = errors.New("invalid token")
	ErrExpiredRefreshToken     = errors.New("refresh token expired")
	ErrUserNotFound            = errors.New("user not found")
)

// Claims carried by every access token.
type Claims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup creates or reuses the user bound to (username, email), issues a
	// fresh confirmation code and mails it out. Repeated calls for the same
	// identity invalidate the previous code.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// IssueToken exchanges a confirmation code for an access + refresh token
	// pair. The code is consumed on success.
	IssueToken(ctx context.Context, username, confirmationCode string) (accessToken, refreshToken string, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	// RevokeToken marks a refresh token unusable for future refreshes.
	RevokeToken(ctx context.Context, refreshToken string) error
	// PurgeExpiredRefreshTokens drops tokens past their expiry.
	PurgeExpiredRefreshTokens(ctx context.Context) error
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	codeRepo         repository.ConfirmationCodeRepository
	refreshTokenRepo repository.RefreshTokenRepository
	sender           mailer.Sender
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codeRepo repository.ConfirmationCodeRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	sender mailer.Sender,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		codeRepo:         codeRepo,
		refreshTokenRepo: refreshTokenRepo,
		sender:           sender,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		// Existing identity: the pairing must match exactly, otherwise the
		// email belongs to someone else.
		if user.Email != email {
			return nil, ErrSignupConflict
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// New username: the email must not be taken by another username.
		if _, emailErr := s.userRepo.FindByEmail(ctx, email); emailErr == nil {
			return nil, ErrSignupConflict
		} else if !errors.Is(emailErr, gorm.ErrRecordNotFound) {
			return nil, emailErr
		}
		user = &models.User{Username: username, Email: email, Role: models.RoleUser}
		if createErr := s.userRepo.Create(ctx, user); createErr != nil {
			// a concurrent signup may have taken the pair in the meantime
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return nil, ErrSignupConflict
			}
			return nil, createErr
		}
	default:
		return nil, err
	}

	code, err := s.codeRepo.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sender.SendConfirmationCode(ctx, user.Email, user.Username, code); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) IssueToken(ctx context.Context, username, confirmationCode string) (string, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}

	if err := s.codeRepo.Verify(ctx, user.ID, confirmationCode); err != nil {
		if errors.Is(err, repository.ErrCodeMismatch) || errors.Is(err, repository.ErrCodeExpired) {
			return "", "", ErrInvalidConfirmationCode
		}
		return "", "", err
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

func (s *authService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		return "", ErrInvalidToken
	}

	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken.ID)
		return "", ErrExpiredRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

func (s *authService) RevokeToken(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		return ErrInvalidToken
	}
	return s.refreshTokenRepo.Revoke(ctx, refreshToken.ID)
}

func (s *authService) PurgeExpiredRefreshTokens(ctx context.Context) error {
	return s.refreshTokenRepo.DeleteExpired(ctx)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
