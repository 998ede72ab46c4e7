package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"agencysite/internal/model"
	"agencysite/internal/repository"
)

// MemberService defines the use cases of the member roster.
type MemberService interface {
	// ListPublic returns active members, optionally of one category,
	// ordered by order then name.
	ListPublic(ctx context.Context, category string) ([]model.Member, error)
	// ListAll returns every member ordered by order, newest first on ties.
	ListAll(ctx context.Context) ([]model.Member, error)
	Create(ctx context.Context, in model.MemberInput) (model.Member, error)
	Update(ctx context.Context, id string, p model.MemberPatch) (model.Member, error)
	Delete(ctx context.Context, id string) error
}

type memberService struct {
	repo repository.MemberRepository
	now  func() time.Time
}

// NewMemberService constructs a MemberService backed by repo.
func NewMemberService(repo repository.MemberRepository) MemberService {
	return &memberService{repo: repo, now: time.Now}
}

func (s *memberService) ListPublic(ctx context.Context, category string) ([]model.Member, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]model.Member, 0, len(items))
	for _, m := range items {
		if !m.Active || (category != "" && m.Category != category) {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b model.Member) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.Name, b.Name))
	})
	return out, nil
}

func (s *memberService) ListAll(ctx context.Context) ([]model.Member, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	slices.SortStableFunc(items, func(a, b model.Member) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), b.CreatedAt.Compare(a.CreatedAt))
	})
	return items, nil
}

func (s *memberService) Create(ctx context.Context, in model.MemberInput) (model.Member, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "required")
	}
	if !model.ValidCategory(in.Category) {
		verr.add("category", "invalid_category")
	}
	if err := verr.err(); err != nil {
		return model.Member{}, err
	}

	now := s.now().UTC()
	m := model.Member{
		ID:        model.NewID(now),
		CreatedAt: now,
		Name:      in.Name,
		Category:  in.Category,
		Image:     in.Image,
		Note:      in.Note,
		Order:     in.Order,
		Active:    in.Active == nil || *in.Active,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return model.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (s *memberService) Update(ctx context.Context, id string, p model.MemberPatch) (model.Member, error) {
	if p.Category != nil && !model.ValidCategory(*p.Category) {
		return model.Member{}, &ValidationError{Fields: []FieldError{{Field: "category", Message: "invalid_category"}}}
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Member{}, mapRepoErr("get member", err)
	}
	next := p.Apply(cur)
	if err := s.repo.Replace(ctx, next); err != nil {
		return model.Member{}, mapRepoErr("replace member", err)
	}
	return next, nil
}

func (s *memberService) Delete(ctx context.Context, id string) error {
	return mapRepoErr("delete member", s.repo.Delete(ctx, id))
}
