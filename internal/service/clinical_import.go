package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/util"

	"go.uber.org/zap"
)

// ClinicalImportService turns raw clinical rows into ClinicalEvent records.
type ClinicalImportService interface {
	Import(ctx context.Context, rows []domain.ClinicalRow) (*dto.ClinicalImportResponse, error)
}

type clinicalImportServiceImpl struct {
	store   domain.BatchCommitter
	maxRows int
	loc     *time.Location
	logger  *zap.Logger
}

// NewClinicalImportService creates the importer. maxRows must stay below the store's batch limit;
// loc is applied to timestamps that carry no zone.
func NewClinicalImportService(store domain.BatchCommitter, maxRows int, loc *time.Location, logger *zap.Logger) ClinicalImportService {
	if maxRows <= 0 || maxRows >= domain.MaxBatchMutations {
		maxRows = 400
	}
	if loc == nil {
		loc = time.UTC
	}
	return &clinicalImportServiceImpl{store: store, maxRows: maxRows, loc: loc, logger: logger}
}

// Import validates every row, collecting per-row errors, and commits the valid rows in one batch.
// Rows past maxRows are not processed and are reported as skipped.
func (s *clinicalImportServiceImpl) Import(ctx context.Context, rows []domain.ClinicalRow) (*dto.ClinicalImportResponse, error) {
	resp := &dto.ClinicalImportResponse{Errors: []string{}}

	toProcess := rows
	if len(rows) > s.maxRows {
		toProcess = rows[:s.maxRows]
		resp.Errors = append(resp.Errors, fmt.Sprintf("Rows %d-%d: skipped, at most %d rows are imported per request",
			s.maxRows+1, len(rows), s.maxRows))
	}

	batch := domain.NewBatch()
	for i, row := range toProcess {
		event, err := s.buildEvent(i+1, row)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		batch.Create(domain.CollectionClinical, event.ID, event)
		resp.Count++
	}

	if resp.Count > 0 {
		if err := s.store.Commit(ctx, batch); err != nil {
			return nil, domain.NewInternalError("failed to store clinical events", err)
		}
	}

	s.logger.Info("clinical import finished",
		zap.Int("rows", len(rows)),
		zap.Int("imported", resp.Count),
		zap.Int("errors", len(resp.Errors)))
	return resp, nil
}

func (s *clinicalImportServiceImpl) buildEvent(rowNum int, row domain.ClinicalRow) (*domain.ClinicalEvent, error) {
	patientID := strings.TrimSpace(row.PatientEncounterID)
	employeeID := strings.TrimSpace(row.AttendingEmployeeID)
	shiftRaw := strings.TrimSpace(row.ShiftDateTime)
	if patientID == "" || employeeID == "" || shiftRaw == "" {
		return nil, fmt.Errorf("Row %d: Missing required fields (patientEncounterId, attendingEmployeeId or shiftDateTime)", rowNum)
	}
	shift := ParseTimestamp(shiftRaw, s.loc)
	if shift == nil {
		return nil, fmt.Errorf("Row %d: Invalid shift date", rowNum)
	}

	event := &domain.ClinicalEvent{
		ID:                  util.NewULID(),
		PatientEncounterID:  patientID,
		AttendingEmployeeID: employeeID,
		ShiftDateTime:       *shift,
		ECGTime:             ParseTimestamp(row.ECGTime, s.loc),
		DoorTime:            ParseTimestamp(row.DoorTime, s.loc),
		ActivationTime:      ParseTimestamp(row.ActivationTime, s.loc),
		CathStartTime:       ParseTimestamp(row.CathStartTime, s.loc),
		OutcomeAdjudication: domain.OutcomeAdjudication{
			IsTrueOMI:          bool(row.IsTrueOMI),
			IsCulpritOcclusion: bool(row.IsCulpritOcclusion),
		},
	}
	if adjudicator := strings.TrimSpace(row.Adjudicator); adjudicator != "" {
		event.OutcomeAdjudication.Adjudicator = &adjudicator
	}
	event.Derive()
	return event, nil
}

// timestampLayouts are tried in order. Layouts without an offset are read in the import zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses a clinical timestamp and returns it in UTC, or nil when it is empty or unparseable.
func ParseTimestamp(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
