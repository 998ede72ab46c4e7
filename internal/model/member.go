package model

import (
	"encoding/json"
	"slices"
	"time"
)

// Member categories shown on the roster pages.
const (
	CategoryLadies = "Ladies"
	CategoryMen    = "Men"
	CategoryMrs    = "Mrs"
	CategoryKids   = "Kids"
)

// Categories lists every accepted member category.
var Categories = []string{CategoryLadies, CategoryMen, CategoryMrs, CategoryKids}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Member is a roster entry. Order is a float because the admin page
// stores whatever number it is given, fractions included.
type Member struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Note      string    `json:"note"`
	Order     float64   `json:"order"`
	Active    bool      `json:"active"`
}

func (m Member) RecordID() string   { return m.ID }
func (m Member) Created() time.Time { return m.CreatedAt }

// UnmarshalJSON treats a missing "active" key as active.
func (m *Member) UnmarshalJSON(b []byte) error {
	type alias Member
	a := alias{Active: true}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*m = Member(a)
	return nil
}

// MemberInput holds the fields accepted when creating a member.
type MemberInput struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
	Note     string  `json:"note"`
	Order    float64 `json:"order"`
	Active   *bool   `json:"active"`
}

// MemberPatch is a partial update; nil fields are left unchanged.
type MemberPatch struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Image    *string  `json:"image"`
	Note     *string  `json:"note"`
	Order    *float64 `json:"order"`
	Active   *bool    `json:"active"`
}

// Apply returns a copy of m with the present patch fields merged in.
func (p MemberPatch) Apply(m Member) Member {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Image != nil {
		m.Image = *p.Image
	}
	if p.Note != nil {
		m.Note = *p.Note
	}
	if p.Order != nil {
		m.Order = *p.Order
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	return m
}
