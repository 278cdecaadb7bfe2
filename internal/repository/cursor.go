package repository

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor marks the last row of a page in (date desc, id desc) order.
type Cursor struct {
	Date string
	ID   string
}

func EncodeCursor(c Cursor) string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Date + "|" + c.ID))
}

func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	date, id, ok := strings.Cut(string(raw), "|")
	if !ok || date == "" {
		return Cursor{}, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	if _, err := uuid.Parse(id); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return Cursor{Date: date, ID: id}, nil
}

// After reports whether a row sorts strictly after the cursor.
func (c Cursor) After(date, id string) bool {
	if date != c.Date {
		return date < c.Date
	}
	return id < c.ID
}
