package model

import (
	"encoding/json"
	"time"
)

// NewsItem is a single entry of the public news feed.
// Date is a free-form display string used for ordering; CreatedAt is the audit timestamp.
type NewsItem struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Date      string    `json:"date"`
	Link      string    `json:"link"`
	Image     string    `json:"image,omitempty"`
	Active    bool      `json:"active"`
}

func (n NewsItem) RecordID() string   { return n.ID }
func (n NewsItem) Created() time.Time { return n.CreatedAt }

// UnmarshalJSON treats a missing "active" key as active.
func (n *NewsItem) UnmarshalJSON(b []byte) error {
	type alias NewsItem
	a := alias{Active: true}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*n = NewsItem(a)
	return nil
}

// NewsInput holds the fields accepted when creating a news item.
type NewsInput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
	Link    string `json:"link"`
	Image   string `json:"image"`
	Active  *bool  `json:"active"`
}

// NewsPatch is a partial update; nil fields are left unchanged.
type NewsPatch struct {
	Title   *string `json:"title"`
	Summary *string `json:"summary"`
	Date    *string `json:"date"`
	Link    *string `json:"link"`
	Image   *string `json:"image"`
	Active  *bool   `json:"active"`
}

// Apply returns a copy of n with the present patch fields merged in.
// ID and CreatedAt are never touched.
func (p NewsPatch) Apply(n NewsItem) NewsItem {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Summary != nil {
		n.Summary = *p.Summary
	}
	if p.Date != nil {
		n.Date = *p.Date
	}
	if p.Link != nil {
		n.Link = *p.Link
	}
	if p.Image != nil {
		n.Image = *p.Image
	}
	if p.Active != nil {
		n.Active = *p.Active
	}
	return n
}
