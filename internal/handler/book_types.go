package handler

import (
	"booktrack/internal/model"
)

type CreateBookRequest struct {
	Title       string      `json:"title" binding:"required"`
	Author      *string     `json:"author"`
	Shelf       *string     `json:"shelf"`
	Genres      []string    `json:"genres"`
	ReleaseDate *model.Date `json:"releaseDate"`
	FinishedAt  *model.Date `json:"finishedAt"`
	Rating      *float64    `json:"rating" binding:"omitempty,min=0,max=5"`
	Review      *string     `json:"review"`
}
