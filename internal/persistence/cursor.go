// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"example.com/progress/internal/domain"
)

// EncodeCursor serialises the photo cursor to a string token.
func EncodeCursor(c *domain.PhotoCursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%s|%s", c.Date.UTC().Format("2006-01-02"), c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token.
func DecodeCursor(token string) (*domain.PhotoCursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return nil, err
	}
	return &domain.PhotoCursor{Date: date, CreatedAt: createdAt, ID: parts[2]}, nil
}
