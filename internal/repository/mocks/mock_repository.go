package mocks

import (
	"context"

	"agencysite/internal/model"
	"agencysite/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks repository.Store for any record type.
type MockStore[T model.Record] struct {
	mock.Mock
}

var (
	_ repository.NewsRepository   = (*MockStore[model.NewsItem])(nil)
	_ repository.MemberRepository = (*MockStore[model.Member])(nil)
	_ repository.ApplicationLog   = (*MockApplicationLog)(nil)
)

func (m *MockStore[T]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockStore[T]) Get(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockStore[T]) Insert(ctx context.Context, item T) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore[T]) Replace(ctx context.Context, item T) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockApplicationLog struct {
	mock.Mock
}

func (m *MockApplicationLog) Append(ctx context.Context, app model.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationLog) List(ctx context.Context) ([]model.Application, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Application), args.Error(1)
}
