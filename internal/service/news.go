package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"agencysite/internal/model"
	"agencysite/internal/repository"
)

// NewsService defines the use cases of the news feed.
type NewsService interface {
	// ListPublic returns active items, newest date first.
	ListPublic(ctx context.Context) ([]model.NewsItem, error)
	// ListAll returns every item in storage order.
	ListAll(ctx context.Context) ([]model.NewsItem, error)
	Create(ctx context.Context, in model.NewsInput) (model.NewsItem, error)
	// Update merges the present patch fields into the item with the given id.
	Update(ctx context.Context, id string, p model.NewsPatch) (model.NewsItem, error)
	Delete(ctx context.Context, id string) error
}

type newsService struct {
	repo repository.NewsRepository
	now  func() time.Time
}

// NewNewsService constructs a NewsService backed by repo.
func NewNewsService(repo repository.NewsRepository) NewsService {
	return &newsService{repo: repo, now: time.Now}
}

func (s *newsService) ListPublic(ctx context.Context) ([]model.NewsItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	out := make([]model.NewsItem, 0, len(items))
	for _, n := range items {
		if n.Active {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b model.NewsItem) int {
		return newsTime(b).Compare(newsTime(a))
	})
	return out, nil
}

// newsTime is the ordering key of an item: its date when parseable,
// otherwise its creation time.
func newsTime(n model.NewsItem) time.Time {
	if n.Date != "" {
		if t, err := time.Parse(time.RFC3339, n.Date); err == nil {
			return t
		}
		if t, err := time.Parse(time.DateOnly, n.Date); err == nil {
			return t
		}
	}
	return n.CreatedAt
}

func (s *newsService) ListAll(ctx context.Context) ([]model.NewsItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return items, nil
}

func (s *newsService) Create(ctx context.Context, in model.NewsInput) (model.NewsItem, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		verr.add("title", "required")
	}
	if err := verr.err(); err != nil {
		return model.NewsItem{}, err
	}

	now := s.now().UTC()
	item := model.NewsItem{
		ID:        model.NewID(now),
		CreatedAt: now,
		Title:     in.Title,
		Summary:   in.Summary,
		Date:      cmp.Or(in.Date, now.Format(time.DateOnly)),
		Link:      in.Link,
		Image:     in.Image,
		Active:    in.Active == nil || *in.Active,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return model.NewsItem{}, fmt.Errorf("insert news: %w", err)
	}
	return item, nil
}

func (s *newsService) Update(ctx context.Context, id string, p model.NewsPatch) (model.NewsItem, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.NewsItem{}, mapRepoErr("get news", err)
	}
	next := p.Apply(cur)
	if err := s.repo.Replace(ctx, next); err != nil {
		return model.NewsItem{}, mapRepoErr("replace news", err)
	}
	return next, nil
}

func (s *newsService) Delete(ctx context.Context, id string) error {
	return mapRepoErr("delete news", s.repo.Delete(ctx, id))
}

// mapRepoErr translates repository.ErrNotFound into ErrNotFound and wraps
// everything else with op.
func mapRepoErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
