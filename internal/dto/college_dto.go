package dto

import (
	"time"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// CollegeCreateRequest registers one college.
type CollegeCreateRequest struct {
	Name      string `json:"name" validate:"required,max=128"`
	SortOrder int    `json:"sortOrder"`
}

// CollegeResponse is the external projection of a college.
type CollegeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCollegeResponse maps a college row to its DTO.
func NewCollegeResponse(c models.College) CollegeResponse {
	return CollegeResponse{
		ID:        c.ID,
		Name:      c.Name,
		IsActive:  c.IsActive,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
	}
}
