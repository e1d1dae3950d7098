package model

import "strings"

// Shelf is one of the three lifecycle buckets a book lives in.
type Shelf string

const (
	ShelfToRead   Shelf = "TO_READ"
	ShelfRead     Shelf = "READ"
	ShelfUpcoming Shelf = "UPCOMING"
)

// ParseShelf trims and validates a raw shelf value. The second return is
// false when the value is not one of the three known shelves.
func ParseShelf(raw string) (Shelf, bool) {
	switch Shelf(strings.TrimSpace(raw)) {
	case ShelfToRead:
		return ShelfToRead, true
	case ShelfRead:
		return ShelfRead, true
	case ShelfUpcoming:
		return ShelfUpcoming, true
	}
	return "", false
}
