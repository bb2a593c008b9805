package service

import (
	"context"
	"errors"
	"fmt"

	"ratehub/internal/http-api/models"
	"ratehub/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrTitleNotFound  = errors.New("title not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("you have already reviewed this title")
	ErrScoreOutOfRange = fmt.Errorf("score must be between %d and %d", models.MinScore, models.MaxScore)
)

type ReviewService interface {
	Create(ctx context.Context, actor Actor, titleID int64, text string, score int) (*models.Review, error)
	Update(ctx context.Context, actor Actor, titleID, reviewID int64, text string, score int) (*models.Review, error)
	Delete(ctx context.Context, actor Actor, titleID, reviewID int64) error
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// Create adds the actor's review for a title. The exists pre-check gives a
// friendly error for the common case; the unique index on (title, author)
// remains the guard concurrent double-submits cannot get past.
func (s *reviewService) Create(ctx context.Context, actor Actor, titleID int64, text string, score int) (*models.Review, error) {
	if score < models.MinScore || score > models.MaxScore {
		return nil, ErrScoreOutOfRange
	}

	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByAuthorAndTitle(ctx, actor.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	// Reload with author data
	return s.reviewRepo.GetByID(ctx, review.ID)
}

func (s *reviewService) Update(ctx context.Context, actor Actor, titleID, reviewID int64, text string, score int) (*models.Review, error) {
	if score < models.MinScore || score > models.MaxScore {
		return nil, ErrScoreOutOfRange
	}

	review, err := s.getForTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if review.AuthorID != actor.ID && !actor.CanModerate() {
		return nil, ErrForbidden
	}

	review.Text = text
	review.Score = score
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return s.reviewRepo.GetByID(ctx, review.ID)
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, titleID, reviewID int64) error {
	review, err := s.getForTitle(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if review.AuthorID != actor.ID && !actor.CanModerate() {
		return ErrForbidden
	}

	return s.reviewRepo.Delete(ctx, review.ID)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	return s.getForTitle(ctx, titleID, reviewID)
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTitleNotFound
		}
		return nil, 0, err
	}

	return s.reviewRepo.GetByTitle(ctx, titleID, page, pageSize)
}

// getForTitle loads a review and checks it actually belongs to the title in
// the URL, so nested routes cannot reach across titles.
func (s *reviewService) getForTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
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
