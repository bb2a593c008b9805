package service

import (
	"context"
	"testing"

	"ratehub/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, reviewID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func TestCommentCreate_Success(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	svc := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 5, TitleID: 1, AuthorID: "reviewer"}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5)).Return(review, nil)
	mockCommentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Comment).ID = 9
	}).Return(nil)
	mockCommentRepo.On("GetByID", mock.Anything, int64(9)).Return(&models.Comment{
		ID: 9, ReviewID: 5, AuthorID: "commenter", Text: "agreed",
	}, nil)

	comment, err := svc.Create(context.Background(), Actor{ID: "commenter", Role: models.RoleUser}, 1, 5, "agreed")

	assert.NoError(t, err)
	assert.Equal(t, int64(9), comment.ID)
	mockCommentRepo.AssertExpectations(t)
}

func TestCommentCreate_ReviewUnderWrongTitle(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	svc := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 5, TitleID: 2}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5)).Return(review, nil)

	// review 5 is under title 2, the request claims title 1
	_, err := svc.Create(context.Background(), Actor{ID: "commenter", Role: models.RoleUser}, 1, 5, "lost")

	assert.ErrorIs(t, err, ErrReviewNotFound)
	mockCommentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentUpdate_ForbiddenForStranger(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	svc := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 5, TitleID: 1}
	comment := &models.Comment{ID: 9, ReviewID: 5, AuthorID: "owner"}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5)).Return(review, nil)
	mockCommentRepo.On("GetByID", mock.Anything, int64(9)).Return(comment, nil)

	_, err := svc.Update(context.Background(), Actor{ID: "stranger", Role: models.RoleUser}, 1, 5, 9, "mine now")

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCommentDelete_AdminMayDelete(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	svc := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 5, TitleID: 1}
	comment := &models.Comment{ID: 9, ReviewID: 5, AuthorID: "owner"}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5)).Return(review, nil)
	mockCommentRepo.On("GetByID", mock.Anything, int64(9)).Return(comment, nil)
	mockCommentRepo.On("Delete", mock.Anything, int64(9)).Return(nil)

	err := svc.Delete(context.Background(), Actor{ID: "admin-id", Role: models.RoleAdmin}, 1, 5, 9)

	assert.NoError(t, err)
	mockCommentRepo.AssertExpectations(t)
}

func TestCommentGet_WrongReview(t *testing.T) {
	mockCommentRepo := new(MockCommentRepository)
	mockReviewRepo := new(MockReviewRepository)
	svc := NewCommentService(mockCommentRepo, mockReviewRepo)

	review := &models.Review{ID: 5, TitleID: 1}
	comment := &models.Comment{ID: 9, ReviewID: 6, AuthorID: "owner"}
	mockReviewRepo.On("GetByID", mock.Anything, int64(5)).Return(review, nil)
	mockCommentRepo.On("GetByID", mock.Anything, int64(9)).Return(comment, nil)

	_, err := svc.Get(context.Background(), 1, 5, 9)

	assert.ErrorIs(t, err, ErrCommentNotFound)
}
