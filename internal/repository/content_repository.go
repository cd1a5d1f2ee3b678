package repository

import (
	"context"
	"fmt"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/models"
)

const clinicalColumns = `id, patient_encounter_id, attending_employee_id, shift_date_time, ecg_time, door_time, activation_time,
cath_start_time, is_true_omi, is_culprit_occlusion, adjudicator, adjudicated_at, activated, activation_appropriate,
door_to_activation_minutes, ecg_to_activation_minutes, created_at, updated_at`

// ListClinicalEvents returns every clinical event ordered by createdAt, then id.
func (s *OracleStore) ListClinicalEvents(ctx context.Context) ([]domain.ClinicalEvent, error) {
	var rows []models.ClinicalEvent
	err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows,
		"SELECT "+clinicalColumns+" FROM clinical_events ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list clinical events: %w", err)
	}
	out := make([]domain.ClinicalEvent, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainClinical(&rows[i]))
	}
	return out, nil
}

func (s *OracleStore) ListCases(ctx context.Context, status domain.ContentStatus) ([]domain.Case, error) {
	query := "SELECT id, title, category, status, created_at, updated_at FROM cases"
	var args []interface{}
	if status != "" {
		query += " WHERE status = :1"
		args = append(args, string(status))
	}
	query += " ORDER BY id"

	var rows []models.Case
	if err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	out := make([]domain.Case, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainCase(&rows[i]))
	}
	return out, nil
}

func (s *OracleStore) ListPapers(ctx context.Context, status domain.ContentStatus) ([]domain.Paper, error) {
	query := "SELECT id, title, authors, journal, pub_year, tags, status, created_at, updated_at FROM papers"
	var args []interface{}
	if status != "" {
		query += " WHERE status = :1"
		args = append(args, string(status))
	}
	query += " ORDER BY id"

	var rows []models.Paper
	if err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	out := make([]domain.Paper, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainPaper(&rows[i]))
	}
	return out, nil
}
