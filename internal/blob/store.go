// Package blob stores image payloads outside the database. Rows keep only
// the key returned by NewKey.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// Store is a key/value store for binary payloads. Delete of a missing key
// succeeds so releasing an image twice is harmless.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh key of the form images/2024/06/01/<uuid>.
func NewKey(now time.Time) string {
	now = now.UTC()
	return path.Join("images",
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		fmt.Sprintf("%02d", now.Day()),
		uuid.NewString(),
	)
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty blob key")
	}
	clean := path.Clean(key)
	if clean != key || path.IsAbs(clean) || clean == ".." || len(clean) > 2 && clean[:3] == "../" {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
