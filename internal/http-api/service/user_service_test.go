package service

import (
	"context"
	"testing"

	"ratehub/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestUserCreate_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "newbie").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "newbie@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Create(context.Background(), UserInput{
		Username: "newbie",
		Email:    "newbie@example.com",
		Role:     "moderator",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestUserCreate_DefaultRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "newbie").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "newbie@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Create(context.Background(), UserInput{
		Username: "newbie",
		Email:    "newbie@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestUserCreate_UnknownRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	_, err := svc.Create(context.Background(), UserInput{
		Username: "newbie",
		Email:    "newbie@example.com",
		Role:     "superuser",
	})

	assert.ErrorIs(t, err, ErrInvalidRole)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserCreate_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	_, err := svc.Create(context.Background(), UserInput{Username: "me", Email: "me@example.com"})

	assert.ErrorIs(t, err, models.ErrUsernameReserved)
}

func TestUserCreate_NameTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	existing := &models.User{Username: "taken"}
	mockUserRepo.On("FindByUsername", mock.Anything, "taken").Return(existing, nil)

	_, err := svc.Create(context.Background(), UserInput{Username: "taken", Email: "x@example.com"})

	assert.ErrorIs(t, err, ErrNameInUse)
}

func TestUserUpdateByUsername_RoleChange(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	existing := &models.User{ID: "user-id", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil)
	mockUserRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.UpdateByUsername(context.Background(), "alice", UserInput{Role: "admin"})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUserUpdateByUsername_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.UpdateByUsername(context.Background(), "ghost", UserInput{Bio: "boo"})

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserDeleteByUsername_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("Delete", mock.Anything, "ghost").Return(gorm.ErrRecordNotFound)

	err := svc.DeleteByUsername(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_CannotTouchRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	existing := &models.User{ID: "user-id", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(existing, nil)
	mockUserRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	bio := "new bio"
	user, err := svc.UpdateProfile(context.Background(), "user-id", ProfileUpdate{Bio: &bio})

	assert.NoError(t, err)
	assert.Equal(t, "new bio", user.Bio)
	// the profile path has no role field at all
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestUpdateProfile_UsernameCollision(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	existing := &models.User{ID: "user-id", Username: "alice", Email: "alice@example.com"}
	other := &models.User{ID: "other-id", Username: "bob"}
	mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(existing, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(other, nil)

	newName := "bob"
	_, err := svc.UpdateProfile(context.Background(), "user-id", ProfileUpdate{Username: &newName})

	assert.ErrorIs(t, err, ErrNameInUse)
	mockUserRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
