package domain

import (
	"context"
	"time"
)

// ContentStatus is the publication state of a case or paper.
type ContentStatus string

const (
	StatusPublished ContentStatus = "published"
	StatusDraft     ContentStatus = "draft"
	StatusArchived  ContentStatus = "archived"
)

// Case categories. OMI answers feed the 7-day exposure count.
const (
	CategoryOMI         = "OMI"
	CategorySTEMIMimics = "STEMI_mimics"
	CategoryElectrolyte = "Electrolyte"
	CategoryFilterAll   = "All"
)

// Case is a clinical ECG case in the learning catalog.
type Case struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Category  string        `json:"category"`
	Status    ContentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c *Case) StampServerTime(t time.Time) {
	c.CreatedAt = t
	c.UpdatedAt = t
}

func (c *Case) ToDocument() Document {
	return Document{
		"id":        c.ID,
		"title":     c.Title,
		"category":  c.Category,
		"status":    string(c.Status),
		"createdAt": c.CreatedAt,
		"updatedAt": c.UpdatedAt,
	}
}

// Paper is a literature entry in the catalog.
type Paper struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Authors   string        `json:"authors"`
	Journal   string        `json:"journal"`
	Year      int           `json:"year"`
	Tags      []string      `json:"tags"`
	Status    ContentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (p *Paper) StampServerTime(t time.Time) {
	p.CreatedAt = t
	p.UpdatedAt = t
}

func (p *Paper) ToDocument() Document {
	return Document{
		"id":        p.ID,
		"title":     p.Title,
		"authors":   p.Authors,
		"journal":   p.Journal,
		"year":      p.Year,
		"tags":      nonNil(p.Tags),
		"status":    string(p.Status),
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
}

// CatalogReader lists catalog content. An empty status returns every entry.
type CatalogReader interface {
	ListCases(ctx context.Context, status ContentStatus) ([]Case, error)
	ListPapers(ctx context.Context, status ContentStatus) ([]Paper, error)
}
