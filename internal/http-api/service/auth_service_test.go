package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ratehub/internal/config"
	"ratehub/internal/http-api/models"
	"ratehub/internal/http-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// MockConfirmationCodeRepository mocks the ConfirmationCodeRepository interface
type MockConfirmationCodeRepository struct {
	mock.Mock
}

func (m *MockConfirmationCodeRepository) Issue(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockConfirmationCodeRepository) Verify(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSender mocks the mailer.Sender interface
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendConfirmationCode(ctx context.Context, email, username, code string) error {
	args := m.Called(ctx, email, username, code)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-test-secret-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func newTestAuthService() (AuthService, *MockUserRepository, *MockConfirmationCodeRepository, *MockRefreshTokenRepository, *MockSender) {
	mockUserRepo := new(MockUserRepository)
	mockCodeRepo := new(MockConfirmationCodeRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)
	mockSender := new(MockSender)
	svc := NewAuthService(mockUserRepo, mockCodeRepo, mockRefreshTokenRepo, mockSender, testConfig())
	return svc, mockUserRepo, mockCodeRepo, mockRefreshTokenRepo, mockSender
}

func TestSignup_NewUser(t *testing.T) {
	svc, mockUserRepo, mockCodeRepo, _, mockSender := newTestAuthService()

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = "user-id"
	}).Return(nil)
	mockCodeRepo.On("Issue", mock.Anything, "user-id").Return("12345678", nil)
	mockSender.On("SendConfirmationCode", mock.Anything, "test@example.com", "testuser", "12345678").Return(nil)

	user, err := svc.Signup(context.Background(), "testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	mockUserRepo.AssertExpectations(t)
	mockCodeRepo.AssertExpectations(t)
	mockSender.AssertExpectations(t)
}

func TestSignup_ExistingPairGetsNewCode(t *testing.T) {
	svc, mockUserRepo, mockCodeRepo, _, mockSender := newTestAuthService()

	existing := &models.User{ID: "user-id", Username: "testuser", Email: "test@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(existing, nil)
	mockCodeRepo.On("Issue", mock.Anything, "user-id").Return("87654321", nil)
	mockSender.On("SendConfirmationCode", mock.Anything, "test@example.com", "testuser", "87654321").Return(nil)

	user, err := svc.Signup(context.Background(), "testuser", "test@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "user-id", user.ID)
	// no Create call for an already registered pair
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockCodeRepo.AssertExpectations(t)
	mockSender.AssertExpectations(t)
}

func TestSignup_UsernameBoundToOtherEmail(t *testing.T) {
	svc, mockUserRepo, _, _, _ := newTestAuthService()

	existing := &models.User{ID: "user-id", Username: "testuser", Email: "other@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(existing, nil)

	user, err := svc.Signup(context.Background(), "testuser", "test@example.com")

	assert.ErrorIs(t, err, ErrSignupConflict)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_EmailBoundToOtherUsername(t *testing.T) {
	svc, mockUserRepo, _, _, _ := newTestAuthService()

	other := &models.User{ID: "other-id", Username: "other", Email: "test@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(other, nil)

	user, err := svc.Signup(context.Background(), "testuser", "test@example.com")

	assert.ErrorIs(t, err, ErrSignupConflict)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_ReservedUsername(t *testing.T) {
	svc, mockUserRepo, _, _, _ := newTestAuthService()

	user, err := svc.Signup(context.Background(), "me", "me@example.com")

	assert.ErrorIs(t, err, models.ErrUsernameReserved)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestSignup_InvalidUsername(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService()

	user, err := svc.Signup(context.Background(), "bad name!", "test@example.com")

	assert.ErrorIs(t, err, models.ErrUsernameInvalid)
	assert.Nil(t, user)
}

func TestSignup_ConcurrentCreateConflict(t *testing.T) {
	svc, mockUserRepo, _, _, _ := newTestAuthService()

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(gorm.ErrDuplicatedKey)

	user, err := svc.Signup(context.Background(), "testuser", "test@example.com")

	assert.ErrorIs(t, err, ErrSignupConflict)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_SendFailure(t *testing.T) {
	svc, mockUserRepo, mockCodeRepo, _, mockSender := newTestAuthService()

	existing := &models.User{ID: "user-id", Username: "testuser", Email: "test@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(existing, nil)
	mockCodeRepo.On("Issue", mock.Anything, "user-id").Return("12345678", nil)
	mockSender.On("SendConfirmationCode", mock.Anything, "test@example.com", "testuser", "12345678").
		Return(errors.New("smtp unreachable"))

	user, err := svc.Signup(context.Background(), "testuser", "test@example.com")

	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestIssueToken_Success(t *testing.T) {
	svc, mockUserRepo, mockCodeRepo, mockRefreshTokenRepo, _ := newTestAuthService()

	user := &models.User{ID: "user-id", Username: "testuser", Email: "test@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockCodeRepo.On("Verify", mock.Anything, "user-id", "12345678").Return(nil)
	mockRefreshTokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	accessToken, refreshToken, err := svc.IssueToken(context.Background(), "testuser", "12345678")

	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	claims, err := svc.ValidateToken(accessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	mockUserRepo.AssertExpectations(t)
	mockCodeRepo.AssertExpectations(t)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestIssueToken_UnknownUser(t *testing.T) {
	svc, mockUserRepo, _, _, _ := newTestAuthService()

	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	accessToken, refreshToken, err := svc.IssueToken(context.Background(), "ghost", "12345678")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, accessToken)
	assert.Empty(t, refreshToken)
}

func TestIssueToken_WrongCode(t *testing.T) {
	svc, mockUserRepo, mockCodeRepo, _, _ := newTestAuthService()

	user := &models.User{ID: "user-id", Username: "testuser"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockCodeRepo.On("Verify", mock.Anything, "user-id", "00000000").Return(repository.ErrCodeMismatch)

	accessToken, refreshToken, err := svc.IssueToken(context.Background(), "testuser", "00000000")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	assert.Empty(t, accessToken)
	assert.Empty(t, refreshToken)
}

func TestIssueToken_ExpiredCode(t *testing.T) {
	svc, mockUserRepo, mockCodeRepo, _, _ := newTestAuthService()

	user := &models.User{ID: "user-id", Username: "testuser"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockCodeRepo.On("Verify", mock.Anything, "user-id", "12345678").Return(repository.ErrCodeExpired)

	_, _, err := svc.IssueToken(context.Background(), "testuser", "12345678")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
}

func TestRefreshAccessToken_Success(t *testing.T) {
	svc, mockUserRepo, _, mockRefreshTokenRepo, _ := newTestAuthService()

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    "user-id",
		Token:     "refresh-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	user := &models.User{ID: "user-id", Username: "testuser", Role: models.RoleUser}

	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "refresh-token").Return(refreshToken, nil)
	mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(user, nil)

	accessToken, err := svc.RefreshAccessToken(context.Background(), "refresh-token")

	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	mockRefreshTokenRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestRefreshAccessToken_Expired(t *testing.T) {
	svc, _, _, mockRefreshTokenRepo, _ := newTestAuthService()

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    "user-id",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}
	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "old-token").Return(refreshToken, nil)
	mockRefreshTokenRepo.On("Delete", mock.Anything, "token-id").Return(nil)

	accessToken, err := svc.RefreshAccessToken(context.Background(), "old-token")

	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
	assert.Empty(t, accessToken)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestRefreshAccessToken_Revoked(t *testing.T) {
	svc, _, _, mockRefreshTokenRepo, _ := newTestAuthService()

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    "user-id",
		Token:     "revoked-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Revoked:   true,
	}
	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "revoked-token").Return(refreshToken, nil)

	accessToken, err := svc.RefreshAccessToken(context.Background(), "revoked-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, accessToken)
}

func TestRevokeToken_Success(t *testing.T) {
	svc, _, _, mockRefreshTokenRepo, _ := newTestAuthService()

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    "user-id",
		Token:     "live-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "live-token").Return(refreshToken, nil)
	mockRefreshTokenRepo.On("Revoke", mock.Anything, "token-id").Return(nil)

	err := svc.RevokeToken(context.Background(), "live-token")

	assert.NoError(t, err)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestRevokeToken_UnknownToken(t *testing.T) {
	svc, _, _, mockRefreshTokenRepo, _ := newTestAuthService()

	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "never-issued").Return(nil, gorm.ErrRecordNotFound)

	err := svc.RevokeToken(context.Background(), "never-issued")

	assert.ErrorIs(t, err, ErrInvalidToken)
	mockRefreshTokenRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestRevokeToken_BlocksFurtherRefreshes(t *testing.T) {
	svc, _, _, mockRefreshTokenRepo, _ := newTestAuthService()

	refreshToken := &models.RefreshToken{
		ID:        "token-id",
		UserID:    "user-id",
		Token:     "live-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "live-token").Return(refreshToken, nil)
	mockRefreshTokenRepo.On("Revoke", mock.Anything, "token-id").Run(func(args mock.Arguments) {
		refreshToken.Revoked = true
	}).Return(nil)

	require.NoError(t, svc.RevokeToken(context.Background(), "live-token"))

	accessToken, err := svc.RefreshAccessToken(context.Background(), "live-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, accessToken)
}

func TestPurgeExpiredRefreshTokens(t *testing.T) {
	svc, _, _, mockRefreshTokenRepo, _ := newTestAuthService()

	mockRefreshTokenRepo.On("DeleteExpired", mock.Anything).Return(nil)

	err := svc.PurgeExpiredRefreshTokens(context.Background())

	assert.NoError(t, err)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestValidateToken_Expired(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService()
	cfg := testConfig()

	claims := Claims{
		UserID:   "user-id",
		Username: "testuser",
		Role:     models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			Subject:   "user-id",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	validated, err := svc.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService()

	validated, err := svc.ValidateToken("not.a.token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService()

	claims := Claims{
		UserID:   "user-id",
		Username: "testuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			Subject:   "user-id",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("some-other-secret-some-other-secret"))

	validated, err := svc.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}
