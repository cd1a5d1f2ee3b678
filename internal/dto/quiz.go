package dto

import "time"

// QuizItemRequest is one answered question.
type QuizItemRequest struct {
	CaseID     string    `json:"caseId"`
	Selected   int       `json:"selected"`
	IsCorrect  bool      `json:"isCorrect"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// SubmitQuizRequest represents a finished quiz.
// @Description Request body for submitting a quiz attempt
type SubmitQuizRequest struct {
	CategoryFilter string            `json:"categoryFilter"`
	Total          int               `json:"total"`
	Correct        int               `json:"correct"`
	Items          []QuizItemRequest `json:"items"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
}

// SubmitQuizResponse represents the points awarded for an attempt
type SubmitQuizResponse struct {
	AttemptID    string `json:"attemptId"`
	PointsEarned int64  `json:"pointsEarned"`
	Replayed     bool   `json:"replayed"` // true when the idempotency key matched an earlier submission
}
