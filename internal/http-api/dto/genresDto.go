package dto

import "ratehub/internal/http-api/models"

// Categories and genres share one payload shape: name plus unique slug.

type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type NameSlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type PaginatedNameSlugResponse struct {
	Data       []NameSlugResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

func FromCategories(categories []models.Category, total, page, pageSize int) *PaginatedNameSlugResponse {
	data := make([]NameSlugResponse, 0, len(categories))
	for _, c := range categories {
		data = append(data, NameSlugResponse{Name: c.Name, Slug: c.Slug})
	}
	return &PaginatedNameSlugResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}

func FromGenres(genres []models.Genre, total, page, pageSize int) *PaginatedNameSlugResponse {
	data := make([]NameSlugResponse, 0, len(genres))
	for _, g := range genres {
		data = append(data, NameSlugResponse{Name: g.Name, Slug: g.Slug})
	}
	return &PaginatedNameSlugResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
