package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"booktrack/internal/model"
	"booktrack/internal/repository"
	"booktrack/internal/validation"
)

// CoverLookup is the best-effort cover enrichment capability. The boolean
// return is false when no usable image was found; lookups never error.
type CoverLookup interface {
	Lookup(ctx context.Context, title string, author *string) (string, bool)
}

type BookHandler struct {
	repo  repository.BookRepository
	cover CoverLookup
}

func NewBookHandler(repo repository.BookRepository, cover CoverLookup) *BookHandler {
	return &BookHandler{repo: repo, cover: cover}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.POST("", h.CreateBook)
		books.PATCH("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
		books.POST("/:id/fetch-cover", h.FetchCover)
	}
}

// ListBooks returns the requested shelf (or all books) in display order.
// The repository promotes released UPCOMING books as part of the call, so
// any list read observes the transition. An unknown shelf value simply
// matches nothing.
func (h *BookHandler) ListBooks(c *gin.Context) {
	var shelf *model.Shelf
	if raw := strings.TrimSpace(c.Query("shelf")); raw != "" {
		s := model.Shelf(raw)
		if parsed, ok := model.ParseShelf(raw); ok {
			s = parsed
		}
		shelf = &s
	}

	books, err := h.repo.List(c.Request.Context(), shelf)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_LIST_FAILED", "failed to fetch books")
		return
	}

	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(c, http.StatusBadRequest, "TITLE_REQUIRED", "title is required")
		return
	}

	shelf := model.ShelfToRead
	if req.Shelf != nil {
		if parsed, ok := model.ParseShelf(*req.Shelf); ok {
			shelf = parsed
		}
	}

	author := trimPtr(req.Author)
	ctx := c.Request.Context()

	// Synchronous enrichment: the created record always reflects the
	// lookup outcome, found or not.
	var coverURL *string
	if url, ok := h.cover.Lookup(ctx, title, author); ok {
		coverURL = &url
	}

	book := model.Book{
		Title:       title,
		Author:      author,
		Shelf:       shelf,
		Genres:      model.NormalizeGenres(req.Genres),
		CoverURL:    coverURL,
		ReleaseDate: datePtr(req.ReleaseDate),
		FinishedAt:  datePtr(req.FinishedAt),
		Rating:      req.Rating,
		Review:      trimPtr(req.Review),
	}

	if err := h.repo.Create(ctx, &book); err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_CREATE_FAILED", "failed to create book")
		return
	}

	created, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED", "failed to fetch created book")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateBook applies partial-update semantics: only keys present in the
// body are touched. The body is decoded into raw messages first because a
// pointer field cannot tell an absent key from an explicit null, and null
// must clear the column.
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BOOK_ID", "invalid book id")
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	ctx := c.Request.Context()

	book, err := h.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED", "failed to fetch book")
		return
	}

	if !applyBookPatch(c, book, raw) {
		return
	}

	if err := h.repo.Update(ctx, book); err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_UPDATE_FAILED", "failed to update book")
		return
	}

	updated, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED", "failed to fetch updated book")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// applyBookPatch mutates book in place from the supplied fields. It writes
// the error response and returns false when a field fails to parse.
func applyBookPatch(c *gin.Context, book *model.Book, raw map[string]json.RawMessage) bool {
	if v, ok := raw["title"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_TITLE", "title must be a string")
			return false
		}
		if s == nil {
			book.Title = ""
		} else {
			book.Title = strings.TrimSpace(*s)
		}
	}

	if v, ok := raw["author"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_AUTHOR", "author must be a string")
			return false
		}
		book.Author = trimPtr(s)
	}

	if v, ok := raw["shelf"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_SHELF", "shelf must be a string")
			return false
		}
		// unknown shelf values leave the field unchanged
		if s != nil {
			if parsed, ok := model.ParseShelf(*s); ok {
				book.Shelf = parsed
			}
		}
	}

	if v, ok := raw["genres"]; ok {
		var g []string
		if err := json.Unmarshal(v, &g); err != nil || g == nil {
			// null, or anything that is not an array of strings, clears the list
			book.Genres = model.GenreList{}
		} else {
			book.Genres = model.NormalizeGenres(g)
		}
	}

	if v, ok := raw["releaseDate"]; ok {
		var d *model.Date
		if err := json.Unmarshal(v, &d); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_RELEASE_DATE",
				"releaseDate must be a YYYY-MM-DD or RFC3339 string")
			return false
		}
		book.ReleaseDate = datePtr(d)
	}

	if v, ok := raw["finishedAt"]; ok {
		var d *model.Date
		if err := json.Unmarshal(v, &d); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_FINISHED_AT",
				"finishedAt must be a YYYY-MM-DD or RFC3339 string")
			return false
		}
		book.FinishedAt = datePtr(d)
	}

	if v, ok := raw["rating"]; ok {
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_RATING", "rating must be a number")
			return false
		}
		book.Rating = f
	}

	if v, ok := raw["review"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REVIEW", "review must be a string")
			return false
		}
		book.Review = trimPtr(s)
	}

	return true
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BOOK_ID", "invalid book id")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_DELETE_FAILED", "failed to delete book")
		return
	}

	c.Status(http.StatusNoContent)
}

// FetchCover re-runs the cover lookup for an existing book and persists
// whatever comes back, including nothing: a failed lookup overwrites an
// existing cover with null.
func (h *BookHandler) FetchCover(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BOOK_ID", "invalid book id")
		return
	}

	ctx := c.Request.Context()

	book, err := h.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED", "failed to fetch book")
		return
	}

	book.CoverURL = nil
	if url, ok := h.cover.Lookup(ctx, book.Title, book.Author); ok {
		book.CoverURL = &url
	}

	if err := h.repo.Update(ctx, book); err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_UPDATE_FAILED", "failed to update cover")
		return
	}

	updated, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED", "failed to fetch updated book")
		return
	}

	c.JSON(http.StatusOK, updated)
}
