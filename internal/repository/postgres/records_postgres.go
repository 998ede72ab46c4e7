package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"agencysite/internal/model"
	"agencysite/internal/repository"
)

// Collection names used in the records table.
const (
	CollectionNews         = "news"
	CollectionMembers      = "members"
	CollectionApplications = "applications"
)

// Collection is a PostgreSQL implementation of repository.Store.
// Each record is kept as a JSONB document in the shared records table,
// keyed by (collection, id) and ordered by an insertion sequence.
type Collection[T model.Record] struct {
	db         *sql.DB
	collection string
}

// NewCollection returns a store for the named collection.
func NewCollection[T model.Record](db *sql.DB, collection string) *Collection[T] {
	return &Collection[T]{db: db, collection: collection}
}

// NewNewsPostgres returns the news store.
func NewNewsPostgres(db *sql.DB) *Collection[model.NewsItem] {
	return NewCollection[model.NewsItem](db, CollectionNews)
}

// NewMemberPostgres returns the member store.
func NewMemberPostgres(db *sql.DB) *Collection[model.Member] {
	return NewCollection[model.Member](db, CollectionMembers)
}

var (
	_ repository.NewsRepository   = (*Collection[model.NewsItem])(nil)
	_ repository.MemberRepository = (*Collection[model.Member])(nil)
)

// List returns documents in insertion order. Rows whose body no longer decodes are skipped.
func (r *Collection[T]) List(ctx context.Context) ([]T, error) {
	const q = `
		SELECT id, body
		FROM records
		WHERE collection = $1
		ORDER BY seq ASC
	`
	return listBodies[T](ctx, r.db, q, r.collection)
}

// Get returns the document with the given id.
func (r *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	const q = `SELECT body FROM records WHERE collection = $1 AND id = $2`
	var (
		out  T
		body []byte
	)
	if err := r.db.QueryRowContext(ctx, q, r.collection, id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, repository.ErrNotFound
		}
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", r.collection, id, err)
	}
	return out, nil
}

// Insert stores a new document.
func (r *Collection[T]) Insert(ctx context.Context, item T) error {
	const q = `
		INSERT INTO records (collection, id, created_at, body)
		VALUES ($1, $2, $3, $4)
	`
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", item.RecordID(), err)
	}
	_, err = r.db.ExecContext(ctx, q, r.collection, item.RecordID(), item.Created(), body)
	return err
}

// Replace overwrites the body of an existing document.
func (r *Collection[T]) Replace(ctx context.Context, item T) error {
	const q = `UPDATE records SET body = $3 WHERE collection = $1 AND id = $2`
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", item.RecordID(), err)
	}
	res, err := r.db.ExecContext(ctx, q, r.collection, item.RecordID(), body)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a document by id.
func (r *Collection[T]) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM records WHERE collection = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, r.collection, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ApplicationLog appends applications as rows of the records table.
type ApplicationLog struct {
	db *sql.DB
}

// NewApplicationLog returns the append-only application store.
func NewApplicationLog(db *sql.DB) *ApplicationLog {
	return &ApplicationLog{db: db}
}

var _ repository.ApplicationLog = (*ApplicationLog)(nil)

// Append inserts app; there is no update or delete path for applications.
func (l *ApplicationLog) Append(ctx context.Context, app model.Application) error {
	const q = `
		INSERT INTO records (collection, id, created_at, body)
		VALUES ($1, $2, $3, $4)
	`
	body, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	_, err = l.db.ExecContext(ctx, q, CollectionApplications, app.ID, app.CreatedAt, body)
	return err
}

// List returns applications in append order.
func (l *ApplicationLog) List(ctx context.Context) ([]model.Application, error) {
	const q = `
		SELECT id, body
		FROM records
		WHERE collection = $1
		ORDER BY seq ASC
	`
	return listBodies[model.Application](ctx, l.db, q, CollectionApplications)
}

func listBodies[T any](ctx context.Context, db *sql.DB, q, collection string) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal(body, &item); err != nil {
			slog.WarnContext(ctx, "postgres: skipping undecodable record", "collection", collection, "id", id, "error", err)
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
