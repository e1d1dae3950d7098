package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is the sole persisted entity. Rating and review are only meaningful
// on the READ shelf but are deliberately not cleared when a book moves off
// it; releaseDate only matters on UPCOMING.
type Book struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Author      *string    `json:"author"`
	Shelf       Shelf      `gorm:"type:varchar(16);not null;index" json:"shelf"`
	Genres      GenreList  `gorm:"type:text" json:"genres"`
	CoverURL    *string    `json:"coverUrl"`
	ReleaseDate *time.Time `json:"releaseDate"`
	FinishedAt  *time.Time `json:"finishedAt"`
	Rating      *float64   `json:"rating"`
	Review      *string    `json:"review"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Shelf == "" {
		b.Shelf = ShelfToRead
	}
	if b.Genres == nil {
		b.Genres = GenreList{}
	}
	return
}
