package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	msPerDay = 24 * 60 * 60 * 1000

	// NoClinicalEventsMessage is returned instead of a table when there is nothing to export.
	NoClinicalEventsMessage = "No clinical events found"
)

// LinkedExportHeader is the column order of the exposure-linkage table.
var LinkedExportHeader = []string{
	"attendingEmployeeId",
	"ecgTime",
	"ecgToActivationMinutes",
	"isTrueOMI",
	"isActivated",
	"falsePositive",
	"exposure_7d_login",
	"exposure_14d_login",
	"exposure_30d_login",
	"exposure_7d_view_case",
	"exposure_30d_view_case",
	"exposure_30d_view_paper",
	"exposure_30d_quizCount",
	"exposure_7d_omiAnswered",
	"lastLoginRecencyAtECG",
}

// Exposure counts platform activity in the trailing windows before an ECG.
// Windows are nested: an event 3 days before counts toward 7, 14 and 30.
type Exposure struct {
	Login7d       int
	Login14d      int
	Login30d      int
	ViewCase7d    int
	ViewCase30d   int
	ViewPaper30d  int
	Quiz30d       int
	OMIAnswered7d int
	// LastLoginRecency is the age in days of the latest prior login, or -1 if none.
	LastLoginRecency float64
}

// ExposureRow is one clinical event joined with its clinician's prior activity.
// Exposure is nil when the clinical event has no ECG time.
type ExposureRow struct {
	AttendingEmployeeID    string
	ECGTime                *time.Time
	ECGToActivationMinutes *int64
	IsTrueOMI              bool
	IsActivated            bool
	FalsePositive          bool
	Exposure               *Exposure
}

// ComputeExposure measures activity in history strictly before anchor.
// history may contain other employees' events and events after the anchor; both are ignored.
func ComputeExposure(employeeID string, anchor time.Time, history []domain.Event) Exposure {
	exp := Exposure{LastLoginRecency: -1}
	minLoginDays := -1.0

	for i := range history {
		ev := &history[i]
		if ev.EmployeeID != employeeID || !ev.CreatedAt.Before(anchor) {
			continue
		}
		daysDiff := float64(anchor.Sub(ev.CreatedAt).Milliseconds()) / msPerDay
		if daysDiff < 0 {
			continue
		}

		if daysDiff <= 30 {
			switch ev.Action {
			case domain.ActionLogin:
				exp.Login30d++
			case domain.ActionViewCase:
				exp.ViewCase30d++
			case domain.ActionViewLiterature:
				exp.ViewPaper30d++
			case domain.ActionFinishQuiz:
				exp.Quiz30d++
			}
		}
		if daysDiff <= 14 && ev.Action == domain.ActionLogin {
			exp.Login14d++
		}
		if daysDiff <= 7 {
			switch ev.Action {
			case domain.ActionLogin:
				exp.Login7d++
			case domain.ActionViewCase:
				exp.ViewCase7d++
			case domain.ActionSubmitCaseAnswer:
				if ev.MetaString("category") == domain.CategoryOMI {
					exp.OMIAnswered7d++
				}
			}
		}

		if ev.Action == domain.ActionLogin && (minLoginDays < 0 || daysDiff < minLoginDays) {
			minLoginDays = daysDiff
		}
	}

	if minLoginDays >= 0 {
		exp.LastLoginRecency = util.Round2(minLoginDays)
	}
	return exp
}

// Cells returns the row values in LinkedExportHeader order. Missing values are nil.
func (r ExposureRow) Cells() []interface{} {
	var ecgTime, ecgToActivation interface{}
	if r.ECGTime != nil {
		ecgTime = isoTime(*r.ECGTime)
	}
	if r.ECGToActivationMinutes != nil {
		ecgToActivation = *r.ECGToActivationMinutes
	}
	cells := []interface{}{r.AttendingEmployeeID, ecgTime, ecgToActivation, r.IsTrueOMI, r.IsActivated, r.FalsePositive}
	if r.Exposure == nil {
		return append(cells, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	}
	e := r.Exposure
	return append(cells,
		e.Login7d, e.Login14d, e.Login30d,
		e.ViewCase7d, e.ViewCase30d,
		e.ViewPaper30d, e.Quiz30d, e.OMIAnswered7d,
		e.LastLoginRecency)
}

// LinkedExportService builds the research table that links clinical outcomes to platform exposure.
type LinkedExportService interface {
	BuildRows(ctx context.Context) ([]ExposureRow, error)
	GenerateLinkedExport(ctx context.Context) (*dto.LinkedExportResponse, error)
}

type linkedExportServiceImpl struct {
	store       domain.Store
	chunkSize   int
	concurrency int
	logger      *zap.Logger
}

// NewLinkedExportService creates the export engine. Employee IDs are fetched in chunks of
// chunkSize (at most domain.MaxInValues) with up to concurrency queries in flight.
func NewLinkedExportService(store domain.Store, chunkSize, concurrency int, logger *zap.Logger) LinkedExportService {
	if chunkSize <= 0 || chunkSize > domain.MaxInValues {
		chunkSize = domain.MaxInValues
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &linkedExportServiceImpl{store: store, chunkSize: chunkSize, concurrency: concurrency, logger: logger}
}

// BuildRows returns one row per clinical event, in the store's clinical event order.
func (s *linkedExportServiceImpl) BuildRows(ctx context.Context) ([]ExposureRow, error) {
	clinical, err := s.store.ListClinicalEvents(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list clinical events", err)
	}
	if len(clinical) == 0 {
		return nil, nil
	}

	var employeeIDs []string
	seen := make(map[string]bool)
	for _, ce := range clinical {
		if ce.AttendingEmployeeID != "" && !seen[ce.AttendingEmployeeID] {
			seen[ce.AttendingEmployeeID] = true
			employeeIDs = append(employeeIDs, ce.AttendingEmployeeID)
		}
	}

	events, err := s.fetchEmployeeEvents(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[string][]domain.Event)
	for _, ev := range events {
		byEmployee[ev.EmployeeID] = append(byEmployee[ev.EmployeeID], ev)
	}

	rows := make([]ExposureRow, 0, len(clinical))
	for i := range clinical {
		ce := &clinical[i]
		row := ExposureRow{
			AttendingEmployeeID:    ce.AttendingEmployeeID,
			ECGTime:                ce.ECGTime,
			ECGToActivationMinutes: ce.TimingDerived.ECGToActivationMinutes,
			IsTrueOMI:              ce.OutcomeAdjudication.IsTrueOMI,
			IsActivated:            ce.Activation.Activated,
			FalsePositive:          ce.FalsePositive(),
		}
		if ce.ECGTime != nil {
			exp := ComputeExposure(ce.AttendingEmployeeID, *ce.ECGTime, byEmployee[ce.AttendingEmployeeID])
			row.Exposure = &exp
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// fetchEmployeeEvents queries events chunk by chunk and unions the results in chunk order.
// Any failed chunk fails the whole fetch.
func (s *linkedExportServiceImpl) fetchEmployeeEvents(ctx context.Context, employeeIDs []string) ([]domain.Event, error) {
	var chunks [][]string
	for start := 0; start < len(employeeIDs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(employeeIDs) {
			end = len(employeeIDs)
		}
		chunks = append(chunks, employeeIDs[start:end])
	}

	results := make([][]domain.Event, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			events, err := s.store.QueryEvents(gctx, domain.EventQuery{
				Field:  domain.EventFieldEmployeeID,
				Values: chunk,
				Order:  domain.SortAscending,
			})
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("failed to fetch employee events", err)
	}

	var out []domain.Event
	seen := make(map[string]bool)
	for _, events := range results {
		for _, ev := range events {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			out = append(out, ev)
		}
	}
	s.logger.Debug("fetched employee events",
		zap.Int("employees", len(employeeIDs)),
		zap.Int("chunks", len(chunks)),
		zap.Int("events", len(out)))
	return out, nil
}

func (s *linkedExportServiceImpl) GenerateLinkedExport(ctx context.Context) (*dto.LinkedExportResponse, error) {
	rows, err := s.BuildRows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &dto.LinkedExportResponse{NoData: true, CSV: NoClinicalEventsMessage}, nil
	}
	csv, err := RenderLinkedCSV(rows)
	if err != nil {
		return nil, domain.NewInternalError("failed to render export", err)
	}
	return &dto.LinkedExportResponse{RowCount: len(rows), CSV: csv}, nil
}

// RenderLinkedCSV writes the header line and one line per row. Every cell is JSON encoded,
// so strings are quoted, numbers and booleans are bare and missing values render as "".
func RenderLinkedCSV(rows []ExposureRow) (string, error) {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(LinkedExportHeader, ","))
	for _, row := range rows {
		cells := row.Cells()
		encoded := make([]string, len(cells))
		for i, cell := range cells {
			v, err := encodeCell(cell)
			if err != nil {
				return "", fmt.Errorf("column %s: %w", LinkedExportHeader[i], err)
			}
			encoded[i] = v
		}
		lines = append(lines, strings.Join(encoded, ","))
	}
	return strings.Join(lines, "\n"), nil
}

func encodeCell(v interface{}) (string, error) {
	if v == nil {
		v = ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// isoTime formats like JavaScript's toISOString: UTC with millisecond precision.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
