package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"agencysite/internal/model"
	"agencysite/internal/storage"
)

// ErrFileRequired is returned by Upload when no file was provided.
var ErrFileRequired = errors.New("file required")

// FileUpload is one file received from a multipart form.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadService stores admin-provided files such as news and member images.
type UploadService interface {
	// Upload stores f and returns its public description. Path is the URL
	// path the file is served under.
	Upload(ctx context.Context, f *FileUpload) (model.StoredFile, error)
}

type uploadService struct {
	store  storage.Storage
	now    func() time.Time
	suffix func() string
}

// NewUploadService constructs an UploadService writing to store.
func NewUploadService(store storage.Storage) UploadService {
	return &uploadService{store: store, now: time.Now, suffix: model.NewSuffix}
}

func (s *uploadService) Upload(ctx context.Context, f *FileUpload) (model.StoredFile, error) {
	if f == nil || f.Open == nil {
		return model.StoredFile{}, ErrFileRequired
	}
	key, err := putFile(ctx, s.store, storage.ObjectKey(s.now(), s.suffix(), f.Filename), *f)
	if err != nil {
		return model.StoredFile{}, err
	}
	return model.StoredFile{
		Filename: key,
		MimeType: f.ContentType,
		Size:     f.Size,
		Path:     "/uploads/" + key,
	}, nil
}

// putFile writes f to store under key.
func putFile(ctx context.Context, store storage.Storage, key string, f FileUpload) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", f.Filename, err)
	}
	defer rc.Close()

	if _, err := store.Put(ctx, key, rc, storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.ContentType,
	}); err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return key, nil
}
