package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"booktrack/internal/model"
)

// Notifier is the toast capability: callers inject it instead of reaching
// for ambient global state. Level is one of "success", "info", "error".
type Notifier interface {
	Notify(message, level string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

// Counts holds the per-shelf book totals.
type Counts struct {
	ToRead   int
	Read     int
	Upcoming int
}

// Stats is the aggregate snapshot computed over the READ shelf.
type Stats struct {
	ReadTotal     int
	ReadThisMonth int
	AvgRating     *float64
	Upcoming      int
}

// State is the read model over the API for one active shelf: the current
// book list, per-shelf counts, and aggregate stats. Every mutating action
// re-fetches rather than patching local state. Counts and stats are
// nice-to-have: their refresh failures are swallowed and the previous
// snapshot stays in place, while a primary list failure clears the list
// and surfaces an error message.
type State struct {
	client   *Client
	notifier Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	activeShelf model.Shelf
	books       []model.Book
	counts      Counts
	stats       Stats
	err         string
}

func NewState(c *Client, notifier Notifier, activeShelf model.Shelf) *State {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &State{
		client:      c,
		notifier:    notifier,
		logger:      slog.Default(),
		activeShelf: activeShelf,
	}
}

func (s *State) ActiveShelf() model.Shelf {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeShelf
}

func (s *State) Books() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books
}

func (s *State) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Err returns the last primary-list error message, empty when the last
// load succeeded.
func (s *State) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetActiveShelf switches the shelf and reloads everything.
func (s *State) SetActiveShelf(ctx context.Context, shelf model.Shelf) {
	s.mu.Lock()
	s.activeShelf = shelf
	s.mu.Unlock()
	s.Refresh(ctx)
}

// Refresh reloads the active shelf's list and the counts/stats snapshot.
func (s *State) Refresh(ctx context.Context) {
	s.loadBooks(ctx)
	s.refreshCounts(ctx)
}

func (s *State) loadBooks(ctx context.Context) {
	books, err := s.client.ListBooks(ctx, s.ActiveShelf())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.books = nil
		s.err = err.Error()
		return
	}
	s.books = books
	s.err = ""
}

// refreshCounts fetches the three shelves concurrently. Any failure leaves
// the previous snapshot untouched.
func (s *State) refreshCounts(ctx context.Context) {
	var toRead, read, upcoming []model.Book
	var errToRead, errRead, errUpcoming error

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		toRead, errToRead = s.client.ListBooks(ctx, model.ShelfToRead)
	}()
	go func() {
		defer wg.Done()
		read, errRead = s.client.ListBooks(ctx, model.ShelfRead)
	}()
	go func() {
		defer wg.Done()
		upcoming, errUpcoming = s.client.ListBooks(ctx, model.ShelfUpcoming)
	}()
	wg.Wait()

	for _, err := range []error{errToRead, errRead, errUpcoming} {
		if err != nil {
			s.logger.Debug("counts refresh skipped", "error", err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = Counts{
		ToRead:   len(toRead),
		Read:     len(read),
		Upcoming: len(upcoming),
	}
	s.stats = computeStats(read, len(upcoming), time.Now())
}

// computeStats aggregates over the READ shelf: total, finished within the
// current calendar month, and the mean of all non-null ratings. AvgRating
// stays nil when nothing is rated.
func computeStats(read []model.Book, upcoming int, now time.Time) Stats {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	stats := Stats{
		ReadTotal: len(read),
		Upcoming:  upcoming,
	}

	var ratingSum float64
	var ratingCount int

	for _, b := range read {
		if b.FinishedAt != nil &&
			!b.FinishedAt.Before(monthStart) && b.FinishedAt.Before(nextMonthStart) {
			stats.ReadThisMonth++
		}
		if b.Rating != nil {
			ratingSum += *b.Rating
			ratingCount++
		}
	}

	if ratingCount > 0 {
		avg := ratingSum / float64(ratingCount)
		stats.AvgRating = &avg
	}

	return stats
}

// AddBook creates a book, then reloads the active list and the snapshot.
func (s *State) AddBook(ctx context.Context, in BookInput) error {
	if _, err := s.client.CreateBook(ctx, in); err != nil {
		return err
	}
	s.Refresh(ctx)
	s.notifier.Notify("Book added.", "success")
	return nil
}

// MoveBook reshelves a book.
func (s *State) MoveBook(ctx context.Context, id string, shelf model.Shelf) error {
	if _, err := s.client.UpdateBook(ctx, id, map[string]any{"shelf": shelf}); err != nil {
		return err
	}
	s.Refresh(ctx)
	s.notifier.Notify("Book moved.", "info")
	return nil
}

// MarkRead moves a book to READ with the given finish date (YYYY-MM-DD).
func (s *State) MarkRead(ctx context.Context, id, finishedAt string) error {
	patch := map[string]any{
		"shelf":      model.ShelfRead,
		"finishedAt": finishedAt,
	}
	if _, err := s.client.UpdateBook(ctx, id, patch); err != nil {
		return err
	}
	s.Refresh(ctx)
	s.notifier.Notify("Marked as read.", "success")
	return nil
}

// SetRating rates a book (nil clears). Only the active list is reloaded;
// the stats snapshot catches up on the next full refresh.
func (s *State) SetRating(ctx context.Context, id string, rating *float64) error {
	if _, err := s.client.UpdateBook(ctx, id, map[string]any{"rating": rating}); err != nil {
		return err
	}
	s.loadBooks(ctx)
	return nil
}

// UpdateBook applies an arbitrary partial update (genre edits and the like).
func (s *State) UpdateBook(ctx context.Context, id string, patch map[string]any) error {
	if _, err := s.client.UpdateBook(ctx, id, patch); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

func (s *State) DeleteBook(ctx context.Context, id string) error {
	if err := s.client.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.Refresh(ctx)
	s.notifier.Notify("Book deleted.", "success")
	return nil
}

func (s *State) FetchCover(ctx context.Context, id string) error {
	if _, err := s.client.FetchCover(ctx, id); err != nil {
		return err
	}
	s.loadBooks(ctx)
	s.notifier.Notify("Cover updated.", "success")
	return nil
}
