package domain

import (
	"context"
	"time"
)

const (
	FieldTotalAttempts = "totalAttempts"
	FieldTotalAnswered = "totalAnswered"
	FieldTotalCorrect  = "totalCorrect"
)

// UserStats accumulates quiz counters for one user.
type UserStats struct {
	UID           string    `json:"uid"`
	TotalAttempts int64     `json:"totalAttempts"`
	TotalAnswered int64     `json:"totalAnswered"`
	TotalCorrect  int64     `json:"totalCorrect"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Accuracy is derived, never stored.
func (s *UserStats) Accuracy() float64 {
	return ratio(s.TotalCorrect, s.TotalAnswered)
}

func (s *UserStats) ApplyIncrement(field string, delta int64) error {
	switch field {
	case FieldTotalAttempts:
		s.TotalAttempts += delta
	case FieldTotalAnswered:
		s.TotalAnswered += delta
	case FieldTotalCorrect:
		s.TotalCorrect += delta
	default:
		return ErrUnknownField
	}
	return nil
}

func (s *UserStats) ToDocument() Document {
	return Document{
		"uid":           s.UID,
		"totalAttempts": s.TotalAttempts,
		"totalAnswered": s.TotalAnswered,
		"totalCorrect":  s.TotalCorrect,
		"updatedAt":     s.UpdatedAt,
	}
}

// CaseStats accumulates answer counters for one case.
type CaseStats struct {
	CaseID        string    `json:"caseId"`
	TotalAnswered int64     `json:"totalAnswered"`
	TotalCorrect  int64     `json:"totalCorrect"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *CaseStats) Accuracy() float64 {
	return ratio(s.TotalCorrect, s.TotalAnswered)
}

func (s *CaseStats) ApplyIncrement(field string, delta int64) error {
	switch field {
	case FieldTotalAnswered:
		s.TotalAnswered += delta
	case FieldTotalCorrect:
		s.TotalCorrect += delta
	default:
		return ErrUnknownField
	}
	return nil
}

func (s *CaseStats) ToDocument() Document {
	return Document{
		"caseId":        s.CaseID,
		"totalAnswered": s.TotalAnswered,
		"totalCorrect":  s.TotalCorrect,
		"updatedAt":     s.UpdatedAt,
	}
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// StatsReader reads quiz aggregates. Single-document getters return (nil, nil) when missing.
type StatsReader interface {
	GetUserStats(ctx context.Context, uid string) (*UserStats, error)
	ListUserStats(ctx context.Context) ([]UserStats, error)
	GetCaseStats(ctx context.Context, caseID string) (*CaseStats, error)
}
