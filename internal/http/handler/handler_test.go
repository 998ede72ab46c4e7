package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agencysite/internal/auth"
	"agencysite/internal/model"
	"agencysite/internal/service"
	serviceMocks "agencysite/internal/service/mocks"
	"agencysite/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testDeps struct {
	news    *serviceMocks.MockNewsService
	members *serviceMocks.MockMemberService
	apps    *serviceMocks.MockApplicationService
	intake  *serviceMocks.MockIntakeService
	uploads *serviceMocks.MockUploadService
}

func newTestApp(t *testing.T, configure func(d *Dependencies)) (*fiber.App, testDeps) {
	t.Helper()
	m := testDeps{
		news:    new(serviceMocks.MockNewsService),
		members: new(serviceMocks.MockMemberService),
		apps:    new(serviceMocks.MockApplicationService),
		intake:  new(serviceMocks.MockIntakeService),
		uploads: new(serviceMocks.MockUploadService),
	}
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	d := Dependencies{
		News:         m.news,
		Members:      m.members,
		Applications: m.apps,
		Intake:       m.intake,
		Uploads:      m.uploads,
		Storage:      store,
	}
	if configure != nil {
		configure(&d)
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, d)
	return app, m
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type itemsResponse[T any] struct {
	OK    bool `json:"ok"`
	Items []T  `json:"items"`
}

func TestLivenessProbe(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"ok": true}, decode[map[string]any](t, resp))
}

func TestHealthCheck(t *testing.T) {
	var pingErr error
	app, _ := newTestApp(t, func(d *Dependencies) {
		d.Checks = []Check{{Name: "storage", Ping: func(context.Context) error { return pingErr }}}
	})

	t.Run("healthy", func(t *testing.T) {
		pingErr = nil
		resp := doJSON(t, app, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "healthy", decode[map[string]any](t, resp)["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		pingErr = errors.New("bucket unreachable")
		resp := doJSON(t, app, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decode[errorPayload](t, resp).Error.Code)
	})
}

func TestPublicNews(t *testing.T) {
	app, m := newTestApp(t, nil)
	m.news.On("ListPublic", mock.Anything).Return([]model.NewsItem{{ID: "n1", Title: "Hello", Active: true}}, nil).Once()

	resp := doJSON(t, app, http.MethodGet, "/api/news", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[itemsResponse[model.NewsItem]](t, resp)
	assert.True(t, body.OK)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Hello", body.Items[0].Title)
	m.news.AssertExpectations(t)
}

func TestPublicMembers_CategoryQuery(t *testing.T) {
	app, m := newTestApp(t, nil)
	m.members.On("ListPublic", mock.Anything, "Kids").Return([]model.Member{{ID: "m1", Name: "Aiko"}}, nil).Once()

	resp := doJSON(t, app, http.MethodGet, "/api/members?category=Kids", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[itemsResponse[model.Member]](t, resp).Items, 1)
	m.members.AssertExpectations(t)
}

func TestAdminNews(t *testing.T) {
	app, m := newTestApp(t, nil)

	t.Run("create", func(t *testing.T) {
		m.news.On("Create", mock.Anything, model.NewsInput{Title: "Audition"}).
			Return(model.NewsItem{ID: "n1", Title: "Audition", Active: true}, nil).Once()

		resp := doJSON(t, app, http.MethodPost, "/api/admin/news", map[string]any{"title": "Audition"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "n1", body["item"].(map[string]any)["id"])
	})

	t.Run("create validation error", func(t *testing.T) {
		m.news.On("Create", mock.Anything, model.NewsInput{}).
			Return(model.NewsItem{}, &service.ValidationError{Fields: []service.FieldError{{Field: "title", Message: "required"}}}).Once()

		resp := doJSON(t, app, http.MethodPost, "/api/admin/news", map[string]any{}, "X-Request-ID", "rid-42")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.False(t, body.OK)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, []service.FieldError{{Field: "title", Message: "required"}}, body.Errors)
	})

	t.Run("update patch carries only present fields", func(t *testing.T) {
		m.news.On("Update", mock.Anything, "n1", mock.MatchedBy(func(p model.NewsPatch) bool {
			return p.Title == nil && p.Active != nil && !*p.Active
		})).Return(model.NewsItem{ID: "n1", Active: false}, nil).Once()

		resp := doJSON(t, app, http.MethodPut, "/api/admin/news/n1", map[string]any{"active": false})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("update unknown id", func(t *testing.T) {
		m.news.On("Update", mock.Anything, "nope", mock.Anything).Return(model.NewsItem{}, service.ErrNotFound).Once()

		resp := doJSON(t, app, http.MethodPut, "/api/admin/news/nope", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decode[errorPayload](t, resp).Error.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/news", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		m.news.On("Delete", mock.Anything, "n1").Return(nil).Once()

		resp := doJSON(t, app, http.MethodDelete, "/api/admin/news/n1", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("service failure", func(t *testing.T) {
		m.news.On("ListAll", mock.Anything).Return(nil, errors.New("disk gone")).Once()

		resp := doJSON(t, app, http.MethodGet, "/api/admin/news", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decode[errorPayload](t, resp).Error.Code)
	})

	m.news.AssertExpectations(t)
}

func TestAdminMembers(t *testing.T) {
	app, m := newTestApp(t, nil)
	m.members.On("ListAll", mock.Anything).Return([]model.Member{{ID: "m1"}, {ID: "m2"}}, nil).Once()
	m.members.On("Create", mock.Anything, model.MemberInput{Name: "Aiko", Category: "Kids", Order: 2}).
		Return(model.Member{ID: "m3"}, nil).Once()
	m.members.On("Delete", mock.Anything, "gone").Return(service.ErrNotFound).Once()

	resp := doJSON(t, app, http.MethodGet, "/api/admin/members", nil)
	assert.Len(t, decode[itemsResponse[model.Member]](t, resp).Items, 2)

	resp = doJSON(t, app, http.MethodPost, "/api/admin/members", map[string]any{"name": "Aiko", "category": "Kids", "order": 2})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/admin/members/gone", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	m.members.AssertExpectations(t)
}

func TestAdminGate(t *testing.T) {
	app, m := newTestApp(t, func(d *Dependencies) {
		d.Admin = auth.SharedSecret("s3cret")
	})

	resp := doJSON(t, app, http.MethodDelete, "/api/admin/news/n1", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[errorPayload](t, resp).Error.Code)

	resp = doJSON(t, app, http.MethodDelete, "/api/admin/news/n1", nil, "X-Admin-Token", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	m.news.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	m.news.On("Delete", mock.Anything, "n1").Return(nil).Once()
	resp = doJSON(t, app, http.MethodDelete, "/api/admin/news/n1", nil, "X-Admin-Token", "s3cret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// public routes stay open
	m.news.On("ListPublic", mock.Anything).Return([]model.NewsItem{}, nil).Once()
	resp = doJSON(t, app, http.MethodGet, "/api/news", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIssueToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("s3cret", time.Hour)
	app, m := newTestApp(t, func(d *Dependencies) {
		d.Admin = auth.AnyOf(auth.SharedSecret("s3cret"), issuer)
		d.Tokens = issuer
	})
	m.apps.On("ExportCSV", mock.Anything).Return([]byte("createdAt,name,email,phone,category"), nil).Once()

	resp := doJSON(t, app, http.MethodPost, "/api/admin/token", nil, "X-Admin-Token", "s3cret")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp = doJSON(t, app, http.MethodGet, "/api/admin/applications.csv", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.apps.AssertExpectations(t)
}

func TestIssueToken_Disabled(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/admin/token", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestApply(t *testing.T) {
	app, m := newTestApp(t, nil)
	fields := map[string]string{
		"name":  "山田 花子",
		"email": "hanako@example.com",
		"phone": "090-0000-0000",
		"agree": "true",
	}

	t.Run("accepted", func(t *testing.T) {
		m.intake.On("Submit", mock.Anything, mock.MatchedBy(func(s service.Submission) bool {
			if s.Name != "山田 花子" || s.Agree != "true" || len(s.Files) != 2 {
				return false
			}
			rc, err := s.Files[0].Open()
			if err != nil {
				return false
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return s.Files[0].Filename == "a.jpg" && string(b) == "AAA" && s.Files[0].Size == 3
		})).Return(model.MailSkipped, nil).Once()

		req := multipartRequest(t, "/api/apply", fields,
			part{"photos", "a.jpg", "AAA"},
			part{"photos", "b.jpg", "BB"},
		)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]any{"ok": true, "mailStatus": "skipped"}, decode[map[string]any](t, resp))
	})

	t.Run("validation error", func(t *testing.T) {
		m.intake.On("Submit", mock.Anything, mock.MatchedBy(func(s service.Submission) bool { return s.Agree == "" })).
			Return(model.MailStatus(""), &service.ValidationError{Fields: []service.FieldError{{Field: "agree", Message: "同意が必要"}}}).Once()

		noAgree := map[string]string{"name": "x", "email": "x@example.com", "phone": "1"}
		resp, err := app.Test(multipartRequest(t, "/api/apply", noAgree))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "agree", body.Errors[0].Field)
	})

	m.intake.AssertExpectations(t)
}

func TestApply_RateLimited(t *testing.T) {
	app, m := newTestApp(t, func(d *Dependencies) {
		d.ApplyLimiter = func(c *fiber.Ctx) error { return fiber.ErrTooManyRequests }
	})

	resp, err := app.Test(multipartRequest(t, "/api/apply", map[string]string{"name": "x"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_REQUESTS", decode[errorPayload](t, resp).Error.Code)
	m.intake.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestApplications(t *testing.T) {
	app, m := newTestApp(t, nil)
	m.apps.On("List", mock.Anything, "kids").Return([]model.Application{{ID: "a1"}}, nil).Once()
	m.apps.On("ExportCSV", mock.Anything).Return([]byte("createdAt,name,email,phone,category"), nil).Once()

	resp := doJSON(t, app, http.MethodGet, "/api/admin/applications?q=kids", nil)
	assert.Len(t, decode[itemsResponse[model.Application]](t, resp).Items, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/admin/applications.csv", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "createdAt,name,email,phone,category", string(b))
	m.apps.AssertExpectations(t)
}

func TestUploadFile(t *testing.T) {
	app, m := newTestApp(t, nil)

	t.Run("missing file", func(t *testing.T) {
		resp, err := app.Test(multipartRequest(t, "/api/admin/upload", map[string]string{"x": "y"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.Equal(t, []service.FieldError{{Field: "file", Message: "file_required"}}, body.Errors)
	})

	t.Run("stored", func(t *testing.T) {
		m.uploads.On("Upload", mock.Anything, mock.MatchedBy(func(f *service.FileUpload) bool {
			return f.Filename == "top.png" && f.Size == 4
		})).Return(model.StoredFile{Filename: "1_top.png", MimeType: "image/png", Size: 4, Path: "/uploads/1_top.png"}, nil).Once()

		resp, err := app.Test(multipartRequest(t, "/api/admin/upload", nil, part{"file", "top.png", "PNG!"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "/uploads/1_top.png", body["path"])
		assert.Equal(t, "1_top.png", body["filename"])
	})

	m.uploads.AssertExpectations(t)
}

func TestServeUpload(t *testing.T) {
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "1_a.png", strings.NewReader("png"), storage.PutObjectOptions{Size: 3})
	require.NoError(t, err)
	app, _ := newTestApp(t, func(d *Dependencies) { d.Storage = store })

	resp := doJSON(t, app, http.MethodGet, "/uploads/1_a.png", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "png", string(b))

	resp = doJSON(t, app, http.MethodGet, "/uploads/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticPages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>top</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apply.html"), []byte("<h1>apply</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "news.json"), []byte("[]"), 0o644))
	app, _ := newTestApp(t, func(d *Dependencies) { d.PublicDir = dir })

	tests := []struct {
		path string
		want int
		body string
	}{
		{path: "/", want: http.StatusOK, body: "<h1>top</h1>"},
		{path: "/apply", want: http.StatusOK, body: "<h1>apply</h1>"},
		{path: "/index.html", want: http.StatusOK, body: "<h1>top</h1>"},
		{path: "/admin", want: http.StatusNotFound},
		{path: "/data/news.json", want: http.StatusNotFound},
		{path: "/members/ladies", want: http.StatusOK, body: "<h1>top</h1>"},
		{path: "/assets/missing.css", want: http.StatusNotFound},
		{path: "/api/unknown", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.body != "" {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(b))
			}
		})
	}
}

func TestRouting(t *testing.T) {
	app, _ := newTestApp(t, nil)

	t.Run("not found route", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/non-existent", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decode[errorPayload](t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/health", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decode[errorPayload](t, resp).Error.Code)
	})
}

func TestSwaggerDocJSON(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/swagger/doc.json", nil, "X-Forwarded-Proto", "https")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	assert.Equal(t, []any{"https"}, doc["schemes"])
	assert.Contains(t, doc["paths"], "/api/apply")
}
