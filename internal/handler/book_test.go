package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"booktrack/internal/model"
)

func TestCreateBook_Success(t *testing.T) {
	db := setupTestDB(t)
	cover := &stubCover{url: "https://img.example/dune&zoom=2", found: true}
	router := setupRouter(db, cover)

	body := map[string]any{
		"title":  "  Dune  ",
		"author": "Frank Herbert",
		"genres": []string{" Sci-Fi ", "", "Classic"},
	}

	w := performJSON(t, router, http.MethodPost, "/books", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}

	book := decodeBook(t, w)
	if book.ID == uuid.Nil {
		t.Errorf("expected non-empty ID")
	}
	if book.Title != "Dune" {
		t.Errorf("expected trimmed title %q, got %q", "Dune", book.Title)
	}
	if book.Shelf != model.ShelfToRead {
		t.Errorf("expected default shelf TO_READ, got %q", book.Shelf)
	}
	if len(book.Genres) != 2 || book.Genres[0] != "Sci-Fi" || book.Genres[1] != "Classic" {
		t.Errorf("expected normalized genres [Sci-Fi, Classic], got %v", book.Genres)
	}
	if book.CoverURL == nil || *book.CoverURL != cover.url {
		t.Errorf("expected cover %q, got %v", cover.url, book.CoverURL)
	}
	if cover.calls != 1 {
		t.Errorf("expected one cover lookup, got %d", cover.calls)
	}
}

func TestCreateBook_BlankTitleRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	for _, body := range []map[string]any{
		{"title": "   "},
		{"author": "No Title"},
	} {
		w := performJSON(t, router, http.MethodPost, "/books", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 for body %v, got %d", body, w.Code)
		}
	}
}

func TestCreateBook_InvalidShelfDefaultsToRead(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	w := performJSON(t, router, http.MethodPost, "/books", map[string]any{
		"title": "Mystery",
		"shelf": "BANANA",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", w.Code, w.Body.String())
	}
	if book := decodeBook(t, w); book.Shelf != model.ShelfToRead {
		t.Errorf("expected shelf coerced to TO_READ, got %q", book.Shelf)
	}
}

func TestCreateBook_CoverLookupMissResultsInNull(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{found: false})

	w := performJSON(t, router, http.MethodPost, "/books", map[string]any{"title": "Obscure"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	if book := decodeBook(t, w); book.CoverURL != nil {
		t.Errorf("expected null coverUrl, got %q", *book.CoverURL)
	}
}

func TestListBooks_ShelfFilterAndPromotion(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	released := seedBook(t, db, model.Book{
		Title:       "Dune",
		Shelf:       model.ShelfUpcoming,
		ReleaseDate: timePtr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	seedBook(t, db, model.Book{
		Title:       "Future Book",
		Shelf:       model.ShelfUpcoming,
		ReleaseDate: timePtr(time.Now().AddDate(1, 0, 0)),
	})

	w := performJSON(t, router, http.MethodGet, "/books?shelf=TO_READ", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var books []model.Book
	if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil {
		t.Fatalf("failed to unmarshal books: %v", err)
	}
	if len(books) != 1 || books[0].ID != released.ID {
		t.Fatalf("expected promoted Dune on TO_READ, got %v", books)
	}
	if books[0].Shelf != model.ShelfToRead {
		t.Errorf("expected shelf TO_READ, got %q", books[0].Shelf)
	}

	w = performJSON(t, router, http.MethodGet, "/books?shelf=UPCOMING", nil)
	var upcoming []model.Book
	if err := json.Unmarshal(w.Body.Bytes(), &upcoming); err != nil {
		t.Fatalf("failed to unmarshal books: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "Future Book" {
		t.Errorf("expected only the future release on UPCOMING, got %v", upcoming)
	}
}

func TestListBooks_UnknownShelfMatchesNothing(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	seedBook(t, db, model.Book{Title: "Somewhere"})

	w := performJSON(t, router, http.MethodGet, "/books?shelf=BANANA", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestUpdateBook_RatingOnlyLeavesOtherFields(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	book := seedBook(t, db, model.Book{
		Title:  "Dune",
		Author: strPtr("Frank Herbert"),
		Shelf:  model.ShelfRead,
		Genres: model.GenreList{"Sci-Fi"},
	})

	w := performJSON(t, router, http.MethodPatch, "/books/"+book.ID.String(),
		map[string]any{"rating": 4.5})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	got := decodeBook(t, w)
	if got.Rating == nil || *got.Rating != 4.5 {
		t.Errorf("expected rating 4.5, got %v", got.Rating)
	}
	if got.Title != "Dune" {
		t.Errorf("title changed: %q", got.Title)
	}
	if got.Shelf != model.ShelfRead {
		t.Errorf("shelf changed: %q", got.Shelf)
	}
	if len(got.Genres) != 1 || got.Genres[0] != "Sci-Fi" {
		t.Errorf("genres changed: %v", got.Genres)
	}
	if got.Author == nil || *got.Author != "Frank Herbert" {
		t.Errorf("author changed: %v", got.Author)
	}
}

func TestUpdateBook_InvalidShelfIgnored(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	book := seedBook(t, db, model.Book{Title: "Dune", Shelf: model.ShelfRead})

	w := performJSON(t, router, http.MethodPatch, "/books/"+book.ID.String(),
		map[string]any{"shelf": "NOT_A_SHELF", "review": "great"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	got := decodeBook(t, w)
	if got.Shelf != model.ShelfRead {
		t.Errorf("expected shelf unchanged, got %q", got.Shelf)
	}
	if got.Review == nil || *got.Review != "great" {
		t.Errorf("expected review applied, got %v", got.Review)
	}
}

func TestUpdateBook_NullClearsNullableFields(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	book := seedBook(t, db, model.Book{
		Title:       "Dune",
		Author:      strPtr("Frank Herbert"),
		Shelf:       model.ShelfRead,
		Genres:      model.GenreList{"Sci-Fi"},
		Rating:      f64Ptr(5),
		Review:      strPtr("masterpiece"),
		FinishedAt:  timePtr(time.Now()),
		ReleaseDate: timePtr(time.Now()),
	})

	w := performJSON(t, router, http.MethodPatch, "/books/"+book.ID.String(), map[string]any{
		"author":      nil,
		"genres":      nil,
		"rating":      nil,
		"review":      nil,
		"finishedAt":  nil,
		"releaseDate": nil,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}

	got := decodeBook(t, w)
	if got.Author != nil || got.Rating != nil || got.Review != nil ||
		got.FinishedAt != nil || got.ReleaseDate != nil {
		t.Errorf("expected nullable fields cleared, got %+v", got)
	}
	if len(got.Genres) != 0 {
		t.Errorf("expected genres cleared, got %v", got.Genres)
	}
	if got.Title != "Dune" {
		t.Errorf("title changed: %q", got.Title)
	}
}

func TestUpdateBook_MoveToReadKeepsRatingWhenMovedAway(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	book := seedBook(t, db, model.Book{
		Title:  "Dune",
		Shelf:  model.ShelfRead,
		Rating: f64Ptr(4.5),
	})

	// moving off READ deliberately does not clear rating or review
	w := performJSON(t, router, http.MethodPatch, "/books/"+book.ID.String(),
		map[string]any{"shelf": "TO_READ"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	got := decodeBook(t, w)
	if got.Shelf != model.ShelfToRead {
		t.Errorf("expected shelf TO_READ, got %q", got.Shelf)
	}
	if got.Rating == nil || *got.Rating != 4.5 {
		t.Errorf("expected rating preserved, got %v", got.Rating)
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	w := performJSON(t, router, http.MethodPatch, "/books/"+uuid.NewString(),
		map[string]any{"rating": 3})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	w = performJSON(t, router, http.MethodPatch, "/books/not-a-uuid",
		map[string]any{"rating": 3})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for malformed id, got %d", w.Code)
	}
}

func TestDeleteBook(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	book := seedBook(t, db, model.Book{Title: "Dune"})

	w := performJSON(t, router, http.MethodDelete, "/books/"+book.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	// deletion is not idempotent
	w = performJSON(t, router, http.MethodDelete, "/books/"+book.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on repeated delete, got %d", w.Code)
	}

	w = performJSON(t, router, http.MethodGet, "/books", nil)
	if body := w.Body.String(); body != "[]" {
		t.Errorf("expected deleted book gone from list, got %s", body)
	}
}

func TestFetchCover_RefreshesAndMayClear(t *testing.T) {
	db := setupTestDB(t)
	cover := &stubCover{url: "https://img.example/new", found: true}
	router := setupRouter(db, cover)

	book := seedBook(t, db, model.Book{
		Title:    "Dune",
		CoverURL: strPtr("https://img.example/old"),
	})

	w := performJSON(t, router, http.MethodPost, "/books/"+book.ID.String()+"/fetch-cover", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if got := decodeBook(t, w); got.CoverURL == nil || *got.CoverURL != cover.url {
		t.Errorf("expected refreshed cover %q, got %v", cover.url, got.CoverURL)
	}

	// a failed re-lookup overwrites the existing cover with null
	cover.found = false
	w = performJSON(t, router, http.MethodPost, "/books/"+book.ID.String()+"/fetch-cover", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := decodeBook(t, w); got.CoverURL != nil {
		t.Errorf("expected cover cleared, got %q", *got.CoverURL)
	}
}

func TestFetchCover_NotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	w := performJSON(t, router, http.MethodPost, "/books/"+uuid.NewString()+"/fetch-cover", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	w := performJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if !body["ok"] {
		t.Errorf("expected ok=true, got %s", w.Body.String())
	}
}

func TestNoRoute(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db, &stubCover{})

	w := performJSON(t, router, http.MethodGet, "/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if body["message"] != "no route for GET /nope" {
		t.Errorf("expected descriptive message, got %v", body["message"])
	}
}
