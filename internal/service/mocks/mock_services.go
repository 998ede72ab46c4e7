package mocks

import (
	"context"

	"agencysite/internal/model"
	"agencysite/internal/service"
	"github.com/stretchr/testify/mock"
)

var (
	_ service.NewsService        = (*MockNewsService)(nil)
	_ service.MemberService      = (*MockMemberService)(nil)
	_ service.ApplicationService = (*MockApplicationService)(nil)
	_ service.IntakeService      = (*MockIntakeService)(nil)
	_ service.UploadService      = (*MockUploadService)(nil)
)

type MockNewsService struct {
	mock.Mock
}

func (m *MockNewsService) ListPublic(ctx context.Context) ([]model.NewsItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NewsItem), args.Error(1)
}

func (m *MockNewsService) ListAll(ctx context.Context) ([]model.NewsItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NewsItem), args.Error(1)
}

func (m *MockNewsService) Create(ctx context.Context, in model.NewsInput) (model.NewsItem, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.NewsItem), args.Error(1)
}

func (m *MockNewsService) Update(ctx context.Context, id string, p model.NewsPatch) (model.NewsItem, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(model.NewsItem), args.Error(1)
}

func (m *MockNewsService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) ListPublic(ctx context.Context, category string) ([]model.Member, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockMemberService) ListAll(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockMemberService) Create(ctx context.Context, in model.MemberInput) (model.Member, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *MockMemberService) Update(ctx context.Context, id string, p model.MemberPatch) (model.Member, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *MockMemberService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) List(ctx context.Context, q string) ([]model.Application, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Application), args.Error(1)
}

func (m *MockApplicationService) ExportCSV(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockIntakeService struct {
	mock.Mock
}

func (m *MockIntakeService) Submit(ctx context.Context, s service.Submission) (model.MailStatus, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(model.MailStatus), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, f *service.FileUpload) (model.StoredFile, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(model.StoredFile), args.Error(1)
}
