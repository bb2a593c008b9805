package dto

import "ratehub/internal/http-api/models"

type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

type UpdateTitleDTO struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type TitleResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Year        int                `json:"year"`
	Description string             `json:"description,omitempty"`
	Rating      *float64           `json:"rating"`
	Category    *NameSlugResponse  `json:"category"`
	Genre       []NameSlugResponse `json:"genre"`
}

// FromModelToTitleResponse converts a Title model to TitleResponse DTO.
// Rating stays a pointer: a title without reviews serializes as null.
func FromModelToTitleResponse(title *models.Title) *TitleResponse {
	resp := &TitleResponse{
		ID:          title.ID,
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Rating:      title.Rating,
		Genre:       make([]NameSlugResponse, 0, len(title.Genres)),
	}
	if title.Category != nil {
		resp.Category = &NameSlugResponse{Name: title.Category.Name, Slug: title.Category.Slug}
	}
	for _, g := range title.Genres {
		resp.Genre = append(resp.Genre, NameSlugResponse{Name: g.Name, Slug: g.Slug})
	}
	return resp
}

type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
