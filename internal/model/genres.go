package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// GenreList is a flat list of free-form genre tags, stored as a JSON array
// in a single text column so it works the same on postgres and sqlite.
type GenreList []string

func (g GenreList) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GenreList) Scan(value any) error {
	if value == nil {
		*g = GenreList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into GenreList", value)
	}

	if len(data) == 0 {
		*g = GenreList{}
		return nil
	}
	return json.Unmarshal(data, g)
}

// NormalizeGenres trims every tag and drops empty ones. A nil or invalid
// input normalizes to an empty list, never nil, so it always serializes
// as a JSON array.
func NormalizeGenres(values []string) GenreList {
	out := make(GenreList, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
