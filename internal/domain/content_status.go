package domain

import (
	"context"
	"time"
)

const (
	FieldCasesRead        = "casesRead"
	FieldPapersRead       = "papersRead"
	FieldQuizzesCompleted = "quizzesCompleted"
)

// ContentKind is the kind of content whose views are tracked.
type ContentKind string

const (
	ContentCase  ContentKind = "case"
	ContentPaper ContentKind = "paper"
)

func (k ContentKind) Valid() bool {
	return k == ContentCase || k == ContentPaper
}

// ReadField is the read-set field the kind is tracked in.
func (k ContentKind) ReadField() string {
	if k == ContentCase {
		return FieldCasesRead
	}
	return FieldPapersRead
}

// ViewAction is the event action logged for a view of this kind.
func (k ContentKind) ViewAction() EventAction {
	if k == ContentCase {
		return ActionViewCase
	}
	return ActionViewLiterature
}

func (k ContentKind) TargetType() TargetType {
	if k == ContentCase {
		return TargetCase
	}
	return TargetPaper
}

// ContentReadStatus holds one user's read sets. Membership only grows.
type ContentReadStatus struct {
	UID              string    `json:"uid"`
	CasesRead        []string  `json:"casesRead"`
	PapersRead       []string  `json:"papersRead"`
	QuizzesCompleted []string  `json:"quizzesCompleted"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasRead reports whether contentID is already in the read set for kind.
// A nil status is treated as empty.
func (s *ContentReadStatus) HasRead(kind ContentKind, contentID string) bool {
	if s == nil {
		return false
	}
	list := s.PapersRead
	if kind == ContentCase {
		list = s.CasesRead
	}
	return containsString(list, contentID)
}

// Union adds values to the named set field, ignoring members already present.
func (s *ContentReadStatus) Union(field string, values []string) error {
	var target *[]string
	switch field {
	case FieldCasesRead:
		target = &s.CasesRead
	case FieldPapersRead:
		target = &s.PapersRead
	case FieldQuizzesCompleted:
		target = &s.QuizzesCompleted
	default:
		return ErrUnknownField
	}
	for _, v := range values {
		if !containsString(*target, v) {
			*target = append(*target, v)
		}
	}
	return nil
}

func (s *ContentReadStatus) ToDocument() Document {
	return Document{
		"uid":              s.UID,
		"casesRead":        nonNil(s.CasesRead),
		"papersRead":       nonNil(s.PapersRead),
		"quizzesCompleted": nonNil(s.QuizzesCompleted),
		"updatedAt":        s.UpdatedAt,
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// ContentStatusReader is the read model behind first-view detection.
// GetContentStatus returns (nil, nil) when the user has no status document yet.
type ContentStatusReader interface {
	GetContentStatus(ctx context.Context, uid string) (*ContentReadStatus, error)
}
