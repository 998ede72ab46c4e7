package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"agencysite/internal/model"
	"agencysite/internal/storage"
	storeMocks "agencysite/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		file       *FileUpload
		setupMocks func(mStore *storeMocks.MockStorage)
		want       model.StoredFile
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			file: func() *FileUpload { f := upload("top image.png", "png"); f.ContentType = "image/png"; return &f }(),
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, "1717234200000_000001_top_image.png", mock.Anything, storage.PutObjectOptions{
					Size:        3,
					ContentType: "image/png",
				}).Return(storage.ObjectInfo{Key: "1717234200000_000001_top_image.png", Size: 3}, nil)
			},
			want: model.StoredFile{
				Filename: "1717234200000_000001_top_image.png",
				MimeType: "image/png",
				Size:     3,
				Path:     "/uploads/1717234200000_000001_top_image.png",
			},
		},
		{
			name:       "missing file",
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrFileRequired,
		},
		{
			name: "storage error",
			file: func() *FileUpload { f := upload("a.png", "a"); return &f }(),
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("bucket gone"))
			},
			wantErrMsg: "upload to storage: bucket gone",
		},
		{
			name: "open error",
			file: &FileUpload{Filename: "a.png", Open: func() (io.ReadCloser, error) { return nil, errors.New("eof") }},
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErrMsg: "open upload a.png: eof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := &storeMocks.MockStorage{}
			tt.setupMocks(mStore)
			svc := &uploadService{store: mStore, now: func() time.Time { return fixedNow }, suffix: seqSuffix()}

			got, err := svc.Upload(ctx, tt.file)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			mStore.AssertExpectations(t)
		})
	}
}
