package postgres

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Keyset marks a position in a (timestamp, id) DESC listing. Clients
// see it as an opaque base64 token; the timestamp column differs per
// listing (created_at for chat, launched_at for sessions).
type Keyset struct {
	TS time.Time `json:"ts"`
	ID string    `json:"id"`
}

func EncodeKeyset(k Keyset) (string, error) {
	data, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("encode keyset: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func DecodeKeyset(s string) (*Keyset, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	var k Keyset
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidCursor, err)
	}
	return &k, nil
}
