package file

import (
	"context"
	"fmt"
	"path/filepath"

	"agencysite/internal/database/jsonfile"
	"agencysite/internal/model"
	"agencysite/internal/repository"
)

// Collection keeps a whole collection in a single JSON array file.
// Every call re-reads the file; every mutation rewrites it.
type Collection[T model.Record] struct {
	path string
}

// NewCollection returns a collection stored at path.
func NewCollection[T model.Record](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// NewNewsRepository stores news in <dataDir>/news.json.
func NewNewsRepository(dataDir string) *Collection[model.NewsItem] {
	return NewCollection[model.NewsItem](filepath.Join(dataDir, "news.json"))
}

// NewMemberRepository stores members in <dataDir>/members.json.
func NewMemberRepository(dataDir string) *Collection[model.Member] {
	return NewCollection[model.Member](filepath.Join(dataDir, "members.json"))
}

var (
	_ repository.NewsRepository   = (*Collection[model.NewsItem])(nil)
	_ repository.MemberRepository = (*Collection[model.Member])(nil)
)

// Path returns the backing file.
func (c *Collection[T]) Path() string { return c.path }

// List returns the records in file order. A missing or corrupt file reads as empty.
func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	return jsonfile.Read[T](c.path), nil
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	items := jsonfile.Read[T](c.path)
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	var zero T
	return zero, repository.ErrNotFound
}

// Insert appends item to the collection and rewrites the file.
func (c *Collection[T]) Insert(_ context.Context, item T) error {
	items := jsonfile.Read[T](c.path)
	items = append(items, item)
	if err := jsonfile.Write(c.path, items); err != nil {
		return fmt.Errorf("insert %s: %w", item.RecordID(), err)
	}
	return nil
}

// Replace swaps the record with the same id in place and rewrites the file.
func (c *Collection[T]) Replace(_ context.Context, item T) error {
	items := jsonfile.Read[T](c.path)
	i := indexOf(items, item.RecordID())
	if i < 0 {
		return repository.ErrNotFound
	}
	items[i] = item
	if err := jsonfile.Write(c.path, items); err != nil {
		return fmt.Errorf("replace %s: %w", item.RecordID(), err)
	}
	return nil
}

// Delete drops the record with the given id and rewrites the file.
// The file is left untouched when the id is unknown.
func (c *Collection[T]) Delete(_ context.Context, id string) error {
	items := jsonfile.Read[T](c.path)
	i := indexOf(items, id)
	if i < 0 {
		return repository.ErrNotFound
	}
	items = append(items[:i], items[i+1:]...)
	if err := jsonfile.Write(c.path, items); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func indexOf[T model.Record](items []T, id string) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}
