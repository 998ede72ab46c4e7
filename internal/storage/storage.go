// Package storage keeps uploaded files (application photos, admin images).
// The local backend writes under the upload directory; the MinIO backend
// writes to an S3-compatible bucket. Both are read back through Get so
// /uploads can be served the same way for either.
package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that could escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage stores and retrieves uploaded objects by key.
type Storage interface {
	// Put writes the content of r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens an object for streaming.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// Ping reports whether the backend is reachable and writable.
	Ping(ctx context.Context) error
}

var unsafeKeyChars = regexp.MustCompile(`[^\w.\-]`)

// ObjectKey builds the stored name for an upload:
// "<unix-millis>_<suffix>_<original>", with every character outside
// [A-Za-z0-9_.-] replaced by "_". The suffix keeps uploads of the same
// name within one millisecond apart.
func ObjectKey(now time.Time, suffix, originalName string) string {
	return unsafeKeyChars.ReplaceAllString(strconv.FormatInt(now.UnixMilli(), 10)+"_"+suffix+"_"+originalName, "_")
}

// validKey rejects empty keys, path separators and dot-only names.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !unsafeKeyChars.MatchString(key)
}
