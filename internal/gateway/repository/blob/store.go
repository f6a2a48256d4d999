// Package blob persists mirrored content-addressed blobs. A blob is
// addressed by the root CID it was fetched under and its path below that
// root. Blobs are immutable, so a stored value never needs invalidation.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store defines operations for persisting mirrored blobs.
type Store interface {
	Put(ctx context.Context, root, path string, content []byte) error
	Get(ctx context.Context, root, path string) ([]byte, error)
	GetURL(ctx context.Context, root, path string) (string, error)
	List(ctx context.Context, root string) ([]string, error)
}

var ErrNotFound = errors.New("blob not found")

// IsNotFound reports whether err means the blob is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func normalizeKey(root, path string) (string, string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", "", fmt.Errorf("root cid is required")
	}
	return root, strings.Trim(strings.TrimSpace(path), "/"), nil
}

// objectKey is the flat key of a blob; the root itself is stored under
// "<root>/_".
func objectKey(root, path string) string {
	if path == "" {
		path = "_"
	}
	return root + "/" + path
}

func pathFromKey(root, key string) string {
	p := strings.TrimPrefix(key, root+"/")
	if p == "_" {
		return ""
	}
	return p
}
