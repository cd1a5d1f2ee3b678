package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ecg-academy/internal/cache"
	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/util"

	"go.uber.org/zap"
)

// QuizService applies the points ledger for finished quizzes.
type QuizService interface {
	SubmitAttempt(ctx context.Context, uid string, req dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
}

type quizServiceImpl struct {
	store     domain.Store
	cache     domain.Cache // optional
	replayTTL time.Duration
	logger    *zap.Logger
}

// NewQuizService creates a QuizService. c may be nil; replays are then resolved from the store only.
func NewQuizService(store domain.Store, c domain.Cache, replayTTL time.Duration, logger *zap.Logger) QuizService {
	return &quizServiceImpl{store: store, cache: c, replayTTL: replayTTL, logger: logger}
}

// SubmitAttempt persists the attempt and every derived counter in one commit:
// the attempt, user stats, per-case stats, quiz points, the finish_quiz event and quizzesCompleted.
//
// Without an idempotency key a retried submission is counted again.
// With a key the attempt ID is derived from it, so a replay collides on create and
// the original result is returned with Replayed set.
func (s *quizServiceImpl) SubmitAttempt(ctx context.Context, uid string, req dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	if uid == "" {
		return nil, domain.NewUnauthorizedError("User ID is required")
	}
	if errs := validateSubmission(req); len(errs) > 0 {
		return nil, errs
	}

	attemptID := util.NewULID()
	if req.IdempotencyKey != "" {
		attemptID = domain.AttemptIDForKey(uid, req.IdempotencyKey)
		if cached := s.cachedReplay(ctx, attemptID); cached != nil {
			return cached, nil
		}
	}

	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(uid)
	}

	points := domain.QuizPoints(req.Total, req.Correct)
	attempt := &domain.QuizAttempt{
		ID:             attemptID,
		UID:            uid,
		EmployeeID:     user.EmployeeIDOrUnknown(),
		CategoryFilter: req.CategoryFilter,
		Total:          req.Total,
		Correct:        req.Correct,
		PointsEarned:   points,
		Items:          make([]domain.QuizItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		attempt.Items = append(attempt.Items, domain.QuizItem{
			CaseID:     it.CaseID,
			Selected:   it.Selected,
			IsCorrect:  it.IsCorrect,
			AnsweredAt: it.AnsweredAt.UTC(),
		})
	}

	batch := domain.NewBatch().
		Create(domain.CollectionAttempts, attempt.ID, attempt).
		Increment(domain.CollectionUserStats, uid, domain.FieldTotalAttempts, 1).
		Increment(domain.CollectionUserStats, uid, domain.FieldTotalAnswered, int64(req.Total)).
		Increment(domain.CollectionUserStats, uid, domain.FieldTotalCorrect, int64(req.Correct))
	for _, it := range attempt.Items {
		var correct int64
		if it.IsCorrect {
			correct = 1
		}
		batch.Increment(domain.CollectionCaseStats, it.CaseID, domain.FieldTotalAnswered, 1).
			Increment(domain.CollectionCaseStats, it.CaseID, domain.FieldTotalCorrect, correct)
	}
	batch.AwardPoints(uid, domain.BucketQuiz, points)

	event := newEvent(uid, user, domain.ActionFinishQuiz, domain.TargetQuiz, attempt.ID, map[string]interface{}{
		"correct":      req.Correct,
		"total":        req.Total,
		"pointsEarned": points,
		"category":     req.CategoryFilter,
	})
	batch.Create(domain.CollectionEvents, event.ID, event).
		ArrayUnion(domain.CollectionContentStatus, uid, domain.FieldQuizzesCompleted, attempt.ID)

	if err := s.store.Commit(ctx, batch); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) && req.IdempotencyKey != "" {
			return s.replay(ctx, attemptID)
		}
		if errors.Is(err, domain.ErrBatchTooLarge) {
			return nil, domain.NewError(domain.CodeBatchTooLarge, "quiz has too many items to submit at once", err)
		}
		return nil, domain.NewInternalError("failed to submit quiz attempt", err)
	}

	resp := &dto.SubmitQuizResponse{AttemptID: attempt.ID, PointsEarned: points}
	if req.IdempotencyKey != "" {
		s.rememberReplay(ctx, resp)
	}
	s.logger.Info("quiz attempt submitted",
		zap.String("uid", uid),
		zap.String("attempt_id", attempt.ID),
		zap.Int("total", req.Total),
		zap.Int("correct", req.Correct),
		zap.Int64("points", points))
	return resp, nil
}

func validateSubmission(req dto.SubmitQuizRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if req.Total < 0 {
		errs = append(errs, domain.NewOutOfRangeError("total", req.Total, 0, len(req.Items)))
	}
	if req.Correct < 0 || req.Correct > req.Total {
		errs = append(errs, domain.NewOutOfRangeError("correct", req.Correct, 0, req.Total))
	}
	for _, it := range req.Items {
		if it.CaseID == "" {
			errs = append(errs, domain.NewMissingFieldError("items.caseId"))
			break
		}
	}
	return errs
}

func (s *quizServiceImpl) replay(ctx context.Context, attemptID string) (*dto.SubmitQuizResponse, error) {
	existing, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load replayed attempt", err)
	}
	if existing == nil {
		return nil, domain.NewError(domain.CodeConflict, "attempt already submitted", nil)
	}
	resp := &dto.SubmitQuizResponse{AttemptID: existing.ID, PointsEarned: existing.PointsEarned, Replayed: true}
	s.rememberReplay(ctx, &dto.SubmitQuizResponse{AttemptID: existing.ID, PointsEarned: existing.PointsEarned})
	s.logger.Info("quiz submission replayed", zap.String("attempt_id", attemptID))
	return resp, nil
}

func (s *quizServiceImpl) cachedReplay(ctx context.Context, attemptID string) *dto.SubmitQuizResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cache.QuizSubmissionKey(attemptID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("quiz replay cache read failed", zap.Error(err))
		}
		return nil
	}
	var resp dto.SubmitQuizResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		s.logger.Warn("quiz replay cache entry is corrupt", zap.String("attempt_id", attemptID), zap.Error(err))
		return nil
	}
	resp.Replayed = true
	return &resp
}

func (s *quizServiceImpl) rememberReplay(ctx context.Context, resp *dto.SubmitQuizResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.QuizSubmissionKey(resp.AttemptID), string(raw), s.replayTTL); err != nil {
		s.logger.Warn("quiz replay cache write failed", zap.Error(err))
	}
}
