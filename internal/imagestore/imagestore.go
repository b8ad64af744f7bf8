// Package imagestore persists generated image bytes and hands back an
// addressable URI for the generation ledger.
package imagestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store saves image bytes and returns the URI they are reachable under.
type Store interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

// DataURIStore embeds the image in a base64 data URI, so the payload lives in
// the database row itself. Used when no object storage is configured.
type DataURIStore struct{}

// Save returns a data URI for the image bytes.
func (DataURIStore) Save(_ context.Context, data []byte, contentType string) (string, error) {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// storageKey returns a date-bucketed unique object key.
func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("generations/%d/%d/%d/%s.png", d.Year(), d.Month(), d.Day(), uuid.New())
}
