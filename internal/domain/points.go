package domain

import (
	"context"
	"time"
)

// Point rewards.
const (
	ViewReward           int64 = 1
	QuizCompletionReward int64 = 3
	QuizPerCorrectReward int64 = 1
	QuizPerfectBonus     int64 = 2
)

// QuizPoints computes the award for one finished quiz: 3 + correct, plus 2 for a perfect non-empty quiz.
func QuizPoints(total, correct int) int64 {
	points := QuizCompletionReward + int64(correct)*QuizPerCorrectReward
	if total > 0 && correct == total {
		points += QuizPerfectBonus
	}
	return points
}

// PointsBucket names one category of the points breakdown.
type PointsBucket string

const (
	BucketContent PointsBucket = "contentPoints"
	BucketQuiz    PointsBucket = "quizPoints"
	BucketLogin   PointsBucket = "loginPoints"
	BucketBonus   PointsBucket = "bonusPoints"
)

// Buckets lists every breakdown bucket.
var Buckets = []PointsBucket{BucketContent, BucketQuiz, BucketLogin, BucketBonus}

const (
	FieldTotalPoints     = "totalPoints"
	FieldPointsBreakdown = "pointsBreakdown"
)

// Field returns the dotted document path of the bucket.
func (b PointsBucket) Field() string {
	return FieldPointsBreakdown + "." + string(b)
}

type PointsBreakdown struct {
	ContentPoints int64 `json:"contentPoints"`
	QuizPoints    int64 `json:"quizPoints"`
	LoginPoints   int64 `json:"loginPoints"`
	BonusPoints   int64 `json:"bonusPoints"`
}

// Sum adds up every bucket.
func (b PointsBreakdown) Sum() int64 {
	return b.ContentPoints + b.QuizPoints + b.LoginPoints + b.BonusPoints
}

// PointsStats is the per-user points ledger. TotalPoints always equals PointsBreakdown.Sum().
type PointsStats struct {
	UID             string          `json:"uid"`
	TotalPoints     int64           `json:"totalPoints"`
	PointsBreakdown PointsBreakdown `json:"pointsBreakdown"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (p *PointsStats) ApplyIncrement(field string, delta int64) error {
	switch field {
	case FieldTotalPoints:
		p.TotalPoints += delta
	case BucketContent.Field():
		p.PointsBreakdown.ContentPoints += delta
	case BucketQuiz.Field():
		p.PointsBreakdown.QuizPoints += delta
	case BucketLogin.Field():
		p.PointsBreakdown.LoginPoints += delta
	case BucketBonus.Field():
		p.PointsBreakdown.BonusPoints += delta
	default:
		return ErrUnknownField
	}
	return nil
}

// Balanced reports whether the total matches the breakdown.
func (p *PointsStats) Balanced() bool {
	return p.TotalPoints == p.PointsBreakdown.Sum()
}

func (p *PointsStats) ToDocument() Document {
	return Document{
		"uid":         p.UID,
		"totalPoints": p.TotalPoints,
		"pointsBreakdown": map[string]interface{}{
			string(BucketContent): p.PointsBreakdown.ContentPoints,
			string(BucketQuiz):    p.PointsBreakdown.QuizPoints,
			string(BucketLogin):   p.PointsBreakdown.LoginPoints,
			string(BucketBonus):   p.PointsBreakdown.BonusPoints,
		},
		"updatedAt": p.UpdatedAt,
	}
}

// PointsReader reads points ledgers. GetPointsStats returns (nil, nil) when the user has none.
type PointsReader interface {
	GetPointsStats(ctx context.Context, uid string) (*PointsStats, error)
	ListPointsStats(ctx context.Context) ([]PointsStats, error)
}
