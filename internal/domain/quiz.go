package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// QuizItem is one answered question of an attempt.
type QuizItem struct {
	CaseID     string    `json:"caseId"`
	Selected   int       `json:"selected"`
	IsCorrect  bool      `json:"isCorrect"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// QuizAttempt is the immutable record of a completed quiz.
type QuizAttempt struct {
	ID             string     `json:"id"`
	UID            string     `json:"uid"`
	EmployeeID     string     `json:"employeeId"`
	CreatedAt      time.Time  `json:"createdAt"`
	CategoryFilter string     `json:"categoryFilter"`
	Total          int        `json:"total"`
	Correct        int        `json:"correct"`
	PointsEarned   int64      `json:"pointsEarned"`
	Items          []QuizItem `json:"items"`
}

func (a *QuizAttempt) StampServerTime(t time.Time) {
	a.CreatedAt = t
}

func (a *QuizAttempt) ToDocument() Document {
	items := make([]interface{}, 0, len(a.Items))
	for _, it := range a.Items {
		items = append(items, map[string]interface{}{
			"caseId":     it.CaseID,
			"selected":   it.Selected,
			"isCorrect":  it.IsCorrect,
			"answeredAt": it.AnsweredAt,
		})
	}
	return Document{
		"id":             a.ID,
		"uid":            a.UID,
		"employeeId":     a.EmployeeID,
		"createdAt":      a.CreatedAt,
		"categoryFilter": a.CategoryFilter,
		"total":          a.Total,
		"correct":        a.Correct,
		"pointsEarned":   a.PointsEarned,
		"items":          items,
	}
}

// CorrectCount counts the items marked correct.
func (a *QuizAttempt) CorrectCount() int {
	n := 0
	for _, it := range a.Items {
		if it.IsCorrect {
			n++
		}
	}
	return n
}

// AttemptIDForKey derives a stable attempt ID from a client idempotency key,
// so the same key always targets the same attempt document.
func AttemptIDForKey(uid, idempotencyKey string) string {
	sum := sha256.Sum256([]byte(uid + "\x00" + idempotencyKey))
	return "att_" + hex.EncodeToString(sum[:13])
}

// AttemptReader returns (nil, nil) when the attempt does not exist.
type AttemptReader interface {
	GetAttempt(ctx context.Context, id string) (*QuizAttempt, error)
}
