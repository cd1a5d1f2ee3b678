package dto

import "ecg-academy/internal/domain"

type QuizProgress struct {
	TotalAttempts int64 `json:"totalAttempts"`
	TotalAnswered int64 `json:"totalAnswered"`
	TotalCorrect  int64 `json:"totalCorrect"`
	Accuracy      int64 `json:"accuracy"`
}

// ProgressResponse summarises one user's points, quiz record and reading.
type ProgressResponse struct {
	UID              string                 `json:"uid"`
	TotalPoints      int64                  `json:"totalPoints"`
	PointsBreakdown  domain.PointsBreakdown `json:"pointsBreakdown"`
	Quiz             QuizProgress           `json:"quiz"`
	CasesRead        int                    `json:"casesRead"`
	PapersRead       int                    `json:"papersRead"`
	QuizzesCompleted int                    `json:"quizzesCompleted"`
	UnreadCases      []string               `json:"unreadCases"`
	UnreadPapers     []string               `json:"unreadPapers"`
}
