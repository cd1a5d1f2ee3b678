package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/models"
)

func (s *OracleStore) GetUserStats(ctx context.Context, uid string) (*domain.UserStats, error) {
	var m models.UserStats
	err := GetExecutor(ctx, s.db).GetContext(ctx, &m,
		`SELECT user_id, total_attempts, total_answered, total_correct, updated_at FROM user_stats WHERE user_id = :1`, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	out := toDomainUserStats(&m)
	return &out, nil
}

func (s *OracleStore) ListUserStats(ctx context.Context) ([]domain.UserStats, error) {
	var rows []models.UserStats
	err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows,
		`SELECT user_id, total_attempts, total_answered, total_correct, updated_at FROM user_stats ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stats: %w", err)
	}
	out := make([]domain.UserStats, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainUserStats(&rows[i]))
	}
	return out, nil
}

func (s *OracleStore) GetCaseStats(ctx context.Context, caseID string) (*domain.CaseStats, error) {
	var m models.CaseStats
	err := GetExecutor(ctx, s.db).GetContext(ctx, &m,
		`SELECT case_id, total_answered, total_correct, updated_at FROM case_stats WHERE case_id = :1`, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get case stats: %w", err)
	}
	out := toDomainCaseStats(&m)
	return &out, nil
}

func (s *OracleStore) listCaseStats(ctx context.Context) ([]domain.CaseStats, error) {
	var rows []models.CaseStats
	err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows,
		`SELECT case_id, total_answered, total_correct, updated_at FROM case_stats ORDER BY case_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list case stats: %w", err)
	}
	out := make([]domain.CaseStats, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainCaseStats(&rows[i]))
	}
	return out, nil
}

const pointsColumns = "user_id, total_points, content_points, quiz_points, login_points, bonus_points, updated_at"

func (s *OracleStore) GetPointsStats(ctx context.Context, uid string) (*domain.PointsStats, error) {
	var m models.PointsStats
	err := GetExecutor(ctx, s.db).GetContext(ctx, &m, "SELECT "+pointsColumns+" FROM points_stats WHERE user_id = :1", uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get points stats: %w", err)
	}
	out := toDomainPointsStats(&m)
	return &out, nil
}

func (s *OracleStore) ListPointsStats(ctx context.Context) ([]domain.PointsStats, error) {
	var rows []models.PointsStats
	if err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows, "SELECT "+pointsColumns+" FROM points_stats ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("failed to list points stats: %w", err)
	}
	out := make([]domain.PointsStats, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainPointsStats(&rows[i]))
	}
	return out, nil
}

func (s *OracleStore) GetContentStatus(ctx context.Context, uid string) (*domain.ContentReadStatus, error) {
	exec := GetExecutor(ctx, s.db)
	var status models.ContentStatus
	err := exec.GetContext(ctx, &status, `SELECT user_id, updated_at FROM user_content_status WHERE user_id = :1`, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get content status: %w", err)
	}
	var reads []models.ContentRead
	err = exec.SelectContext(ctx, &reads,
		`SELECT user_id, list_name, content_id FROM user_content_reads WHERE user_id = :1 ORDER BY added_at, content_id`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get content reads: %w", err)
	}
	return toDomainContentStatus(&status, reads), nil
}

func (s *OracleStore) GetAttempt(ctx context.Context, id string) (*domain.QuizAttempt, error) {
	var m models.QuizAttempt
	err := GetExecutor(ctx, s.db).GetContext(ctx, &m,
		`SELECT id, user_id, employee_id, created_at, category_filter, total, correct, points_earned, items FROM quiz_attempts WHERE id = :1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

func (s *OracleStore) listAttempts(ctx context.Context) ([]domain.QuizAttempt, error) {
	var rows []models.QuizAttempt
	err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows,
		`SELECT id, user_id, employee_id, created_at, category_filter, total, correct, points_earned, items FROM quiz_attempts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomainAttempt(&rows[i]))
	}
	return out, nil
}
