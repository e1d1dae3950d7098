package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"booktrack/internal/model"
)

type BookRepository interface {
	List(ctx context.Context, shelf *model.Shelf) ([]model.Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Create(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// List promotes released upcoming books first, then returns the shelf
// (or everything when shelf is nil) in its display order.
func (r *GormBookRepository) List(ctx context.Context, shelf *model.Shelf) ([]model.Book, error) {
	if err := r.promoteReleased(ctx); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx)
	if shelf != nil {
		q = q.Where("shelf = ?", *shelf)
	}

	switch {
	case shelf != nil && *shelf == model.ShelfUpcoming:
		q = q.Order("release_date asc").Order("created_at desc")
	case shelf != nil && *shelf == model.ShelfRead:
		q = q.Order("finished_at desc").Order("created_at desc")
	default:
		q = q.Order("created_at desc")
	}

	// initialized so an empty shelf serializes as [] rather than null
	books := []model.Book{}
	if err := q.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// promoteReleased moves every UPCOMING book whose release date has passed
// (end of the current day) onto the TO_READ shelf in one bulk update. The
// transition is evaluated lazily on every list call instead of by a
// background job.
func (r *GormBookRepository) promoteReleased(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("shelf = ? AND release_date <= ?", model.ShelfUpcoming, endOfDay(time.Now())).
		Update("shelf", model.ShelfToRead).Error
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func (r *GormBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *GormBookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// Update persists every mutable column so that nil pointers clear their
// columns. Field presence is resolved by the caller.
func (r *GormBookRepository) Update(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).
		Model(&model.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":        book.Title,
			"author":       book.Author,
			"shelf":        book.Shelf,
			"genres":       book.Genres,
			"cover_url":    book.CoverURL,
			"release_date": book.ReleaseDate,
			"finished_at":  book.FinishedAt,
			"rating":       book.Rating,
			"review":       book.Review,
		}).Error
}

// Delete is not idempotent: a second delete on the same id reports not found.
func (r *GormBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Book{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
