package repository

import (
	"database/sql"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/models"
	"ecg-academy/internal/util"
)

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:         m.UserID,
		EmployeeID:  m.EmployeeID.String,
		Email:       m.Email.String,
		Role:        m.Role.String,
		CreatedAt:   m.CreatedAt.UTC(),
		LastLoginAt: util.NullTimePtr(m.LastLoginAt),
	}
}

func toDomainEvent(m *models.Event) domain.Event {
	meta := map[string]interface{}(m.Meta)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return domain.Event{
		ID:         m.ID,
		UID:        m.UserID,
		EmployeeID: m.EmployeeID.String,
		CreatedAt:  m.CreatedAt.UTC(),
		Action:     domain.EventAction(m.Action),
		TargetType: domain.TargetType(m.TargetType.String),
		TargetID:   m.TargetID.String,
		Meta:       meta,
	}
}

func fromDomainItems(items []domain.QuizItem) models.AttemptItems {
	out := make(models.AttemptItems, 0, len(items))
	for _, it := range items {
		out = append(out, models.AttemptItem{
			CaseID:     it.CaseID,
			Selected:   it.Selected,
			IsCorrect:  it.IsCorrect,
			AnsweredAt: it.AnsweredAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func toDomainAttempt(m *models.QuizAttempt) *domain.QuizAttempt {
	if m == nil {
		return nil
	}
	items := make([]domain.QuizItem, 0, len(m.Items))
	for _, it := range m.Items {
		answeredAt, _ := time.Parse(time.RFC3339Nano, it.AnsweredAt)
		items = append(items, domain.QuizItem{
			CaseID:     it.CaseID,
			Selected:   it.Selected,
			IsCorrect:  it.IsCorrect,
			AnsweredAt: answeredAt,
		})
	}
	return &domain.QuizAttempt{
		ID:             m.ID,
		UID:            m.UserID,
		EmployeeID:     m.EmployeeID.String,
		CreatedAt:      m.CreatedAt.UTC(),
		CategoryFilter: m.CategoryFilter.String,
		Total:          m.Total,
		Correct:        m.Correct,
		PointsEarned:   m.PointsEarned,
		Items:          items,
	}
}

func toDomainUserStats(m *models.UserStats) domain.UserStats {
	return domain.UserStats{
		UID:           m.UserID,
		TotalAttempts: m.TotalAttempts,
		TotalAnswered: m.TotalAnswered,
		TotalCorrect:  m.TotalCorrect,
		UpdatedAt:     nullTime(m.UpdatedAt),
	}
}

func toDomainCaseStats(m *models.CaseStats) domain.CaseStats {
	return domain.CaseStats{
		CaseID:        m.CaseID,
		TotalAnswered: m.TotalAnswered,
		TotalCorrect:  m.TotalCorrect,
		UpdatedAt:     nullTime(m.UpdatedAt),
	}
}

func toDomainPointsStats(m *models.PointsStats) domain.PointsStats {
	return domain.PointsStats{
		UID:         m.UserID,
		TotalPoints: m.TotalPoints,
		PointsBreakdown: domain.PointsBreakdown{
			ContentPoints: m.ContentPoints,
			QuizPoints:    m.QuizPoints,
			LoginPoints:   m.LoginPoints,
			BonusPoints:   m.BonusPoints,
		},
		UpdatedAt: nullTime(m.UpdatedAt),
	}
}

func toDomainClinical(m *models.ClinicalEvent) domain.ClinicalEvent {
	return domain.ClinicalEvent{
		ID:                  m.ID,
		PatientEncounterID:  m.PatientEncounterID,
		AttendingEmployeeID: m.AttendingEmployeeID,
		ShiftDateTime:       m.ShiftDateTime.UTC(),
		ECGTime:             util.NullTimePtr(m.ECGTime),
		DoorTime:            util.NullTimePtr(m.DoorTime),
		ActivationTime:      util.NullTimePtr(m.ActivationTime),
		CathStartTime:       util.NullTimePtr(m.CathStartTime),
		OutcomeAdjudication: domain.OutcomeAdjudication{
			IsTrueOMI:          m.IsTrueOMI == 1,
			IsCulpritOcclusion: m.IsCulpritOcclusion == 1,
			Adjudicator:        util.NullStringPtr(m.Adjudicator),
			AdjudicatedAt:      util.NullTimePtr(m.AdjudicatedAt),
		},
		Activation: domain.Activation{
			Activated:             m.Activated == 1,
			ActivationAppropriate: m.ActivationAppropriate == 1,
		},
		TimingDerived: domain.TimingDerived{
			DoorToActivationMinutes: util.NullInt64Ptr(m.DoorToActivationMinutes),
			ECGToActivationMinutes:  util.NullInt64Ptr(m.ECGToActivationMinutes),
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func toDomainCase(m *models.Case) domain.Case {
	return domain.Case{
		ID:        m.ID,
		Title:     m.Title,
		Category:  m.Category.String,
		Status:    domain.ContentStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func toDomainPaper(m *models.Paper) domain.Paper {
	return domain.Paper{
		ID:        m.ID,
		Title:     m.Title,
		Authors:   m.Authors.String,
		Journal:   m.Journal.String,
		Year:      int(m.PubYear.Int64),
		Tags:      []string(m.Tags),
		Status:    domain.ContentStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// toDomainContentStatus folds the read rows of one user into their sets.
func toDomainContentStatus(status *models.ContentStatus, reads []models.ContentRead) *domain.ContentReadStatus {
	out := &domain.ContentReadStatus{
		UID:              status.UserID,
		CasesRead:        []string{},
		PapersRead:       []string{},
		QuizzesCompleted: []string{},
		UpdatedAt:        nullTime(status.UpdatedAt),
	}
	for _, r := range reads {
		_ = out.Union(r.ListName, []string{r.ContentID})
	}
	return out
}

func nullTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time.UTC()
}
