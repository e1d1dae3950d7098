package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"booktrack/internal/model"
	"booktrack/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:testdb_" + uuid.New().String() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&model.Book{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// stubCover stands in for the Google Books client.
type stubCover struct {
	url   string
	found bool
	calls int
}

func (s *stubCover) Lookup(ctx context.Context, title string, author *string) (string, bool) {
	s.calls++
	return s.url, s.found
}

func setupRouter(db *gorm.DB, cover CoverLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()

	repo := repository.NewGormBookRepository(db)
	bh := NewBookHandler(repo, cover)
	bh.RegisterRoutes(r.Group(""))

	hh := NewHealthHandler(db)
	hh.RegisterRoutes(r)

	r.NoRoute(NoRoute)

	return r
}

func seedBook(t *testing.T, db *gorm.DB, book model.Book) model.Book {
	t.Helper()

	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("failed to seed book %q: %v", book.Title, err)
	}
	return book
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBook(t *testing.T, w *httptest.ResponseRecorder) model.Book {
	t.Helper()

	var book model.Book
	if err := json.Unmarshal(w.Body.Bytes(), &book); err != nil {
		t.Fatalf("failed to unmarshal book: %v, body=%s", err, w.Body.String())
	}
	return book
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }
