package service

import (
	"context"
	"errors"

	"ratehub/internal/http-api/models"
	"ratehub/internal/http-api/repository"

	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentService interface {
	Create(ctx context.Context, actor Actor, titleID, reviewID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, actor Actor, titleID, reviewID, commentID int64, text string) (*models.Comment, error)
	Delete(ctx context.Context, actor Actor, titleID, reviewID, commentID int64) error
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *commentService) Create(ctx context.Context, actor Actor, titleID, reviewID int64, text string) (*models.Comment, error) {
	if _, err := s.reviewForTitle(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Reload with author data
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) Update(ctx context.Context, actor Actor, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	comment, err := s.getForReview(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != actor.ID && !actor.CanModerate() {
		return nil, ErrForbidden
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) Delete(ctx context.Context, actor Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.getForReview(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != actor.ID && !actor.CanModerate() {
		return ErrForbidden
	}

	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	return s.getForReview(ctx, titleID, reviewID, commentID)
}

func (s *commentService) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if _, err := s.reviewForTitle(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}

	return s.commentRepo.GetByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) reviewForTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *commentService) getForReview(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.reviewForTitle(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
