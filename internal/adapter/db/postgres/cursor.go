package postgres

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	apperrors "samaj-directory/pkg/errors"
)

// encodeCursor builds the opaque page token for the last row of a page.
func encodeCursor(createdAt time.Time, id string) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor reverses encodeCursor. Any malformed token yields ErrInvalidCursor.
func decodeCursor(token string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", apperrors.ErrInvalidCursor
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return time.Time{}, "", apperrors.ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil || n < 0 {
		return time.Time{}, "", apperrors.ErrInvalidCursor
	}
	return time.Unix(0, n).UTC(), id, nil
}
