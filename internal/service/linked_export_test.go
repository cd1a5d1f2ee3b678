package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ecgAt = time.Date(2025, 5, 31, 6, 0, 0, 0, time.UTC)

func daysBefore(days float64) time.Time {
	return ecgAt.Add(-time.Duration(days * 24 * float64(time.Hour)))
}

func ev(id, employeeID string, action domain.EventAction, at time.Time, meta map[string]interface{}) domain.Event {
	return domain.Event{ID: id, UID: "uid-" + employeeID, EmployeeID: employeeID, Action: action, CreatedAt: at, Meta: meta}
}

func TestComputeExposure_WindowsAreNested(t *testing.T) {
	history := []domain.Event{
		ev("1", "E1", domain.ActionLogin, daysBefore(5), nil),
		ev("2", "E1", domain.ActionLogin, daysBefore(20), nil),
		ev("3", "E1", domain.ActionViewCase, daysBefore(7), nil),
		ev("4", "E1", domain.ActionViewCase, daysBefore(12), nil),
		ev("5", "E1", domain.ActionViewLiterature, daysBefore(29.9), nil),
		ev("6", "E1", domain.ActionFinishQuiz, daysBefore(30), nil),
		ev("7", "E1", domain.ActionFinishQuiz, daysBefore(30.01), nil),
	}
	exp := ComputeExposure("E1", ecgAt, history)

	assert.Equal(t, 1, exp.Login7d)
	assert.Equal(t, 1, exp.Login14d)
	assert.Equal(t, 2, exp.Login30d)
	assert.Equal(t, 1, exp.ViewCase7d, "7 days is inclusive")
	assert.Equal(t, 2, exp.ViewCase30d)
	assert.Equal(t, 1, exp.ViewPaper30d)
	assert.Equal(t, 1, exp.Quiz30d, "30 days is inclusive, 30.01 is outside")
	assert.Equal(t, 5.0, exp.LastLoginRecency)
}

func TestComputeExposure_ExcludesEventsAtOrAfterECG(t *testing.T) {
	history := []domain.Event{
		ev("1", "E1", domain.ActionLogin, ecgAt, nil),
		ev("2", "E1", domain.ActionLogin, ecgAt.Add(time.Minute), nil),
		ev("3", "E1", domain.ActionViewCase, ecgAt.Add(48*time.Hour), nil),
	}
	exp := ComputeExposure("E1", ecgAt, history)

	assert.Equal(t, Exposure{LastLoginRecency: -1}, exp)
}

func TestComputeExposure_RecencySentinelAndRounding(t *testing.T) {
	noLogins := ComputeExposure("E1", ecgAt, []domain.Event{
		ev("1", "E1", domain.ActionViewCase, daysBefore(1), nil),
		ev("2", "E2", domain.ActionLogin, daysBefore(1), nil),
	})
	assert.Equal(t, -1.0, noLogins.LastLoginRecency)

	withLogins := ComputeExposure("E1", ecgAt, []domain.Event{
		ev("1", "E1", domain.ActionLogin, daysBefore(45), nil),
		ev("2", "E1", domain.ActionLogin, ecgAt.Add(-(2*24*time.Hour + 3*time.Hour + 7*time.Minute)), nil),
	})
	assert.Equal(t, 2.13, withLogins.LastLoginRecency)

	oldLogin := ComputeExposure("E1", ecgAt, []domain.Event{
		ev("1", "E1", domain.ActionLogin, daysBefore(45), nil),
	})
	assert.Equal(t, 45.0, oldLogin.LastLoginRecency, "recency is not window limited")
	assert.Equal(t, 0, oldLogin.Login30d)
}

// OMI answers count once per event and only inside 7 days. Whether answers 8-30 days
// before the ECG belong in a separate counter is awaiting product owner clarification.
func TestComputeExposure_OMIAnsweredCountsOnlyWithinSevenDays(t *testing.T) {
	omi := map[string]interface{}{"category": domain.CategoryOMI, "isCorrect": true}
	history := []domain.Event{
		ev("1", "E1", domain.ActionSubmitCaseAnswer, daysBefore(3), omi),
		ev("2", "E1", domain.ActionSubmitCaseAnswer, daysBefore(20), omi),
		ev("3", "E1", domain.ActionSubmitCaseAnswer, daysBefore(2), map[string]interface{}{"category": domain.CategoryElectrolyte}),
		ev("4", "E1", domain.ActionSubmitCaseAnswer, daysBefore(2), nil),
	}
	exp := ComputeExposure("E1", ecgAt, history)
	assert.Equal(t, 1, exp.OMIAnswered7d)
}

func seedClinical(t *testing.T, store *memory.Store, clock *memory.Clock, ce *domain.ClinicalEvent) {
	t.Helper()
	ce.Derive()
	require.NoError(t, store.Commit(context.Background(), domain.NewBatch().Create(domain.CollectionClinical, ce.ID, ce)))
	clock.Advance(time.Second)
}

func TestGenerateLinkedExport_RendersJSONCells(t *testing.T) {
	store, clock := newTestStore()
	ecg := ecgAt
	activation := ecgAt.Add(15 * time.Minute)
	seedClinical(t, store, clock, &domain.ClinicalEvent{
		ID: "ce1", PatientEncounterID: "P1", AttendingEmployeeID: "E1",
		ShiftDateTime: ecgAt.Add(-time.Hour), ECGTime: &ecg, ActivationTime: &activation,
		OutcomeAdjudication: domain.OutcomeAdjudication{IsTrueOMI: true},
	})
	seedClinical(t, store, clock, &domain.ClinicalEvent{
		ID: "ce2", PatientEncounterID: "P2", AttendingEmployeeID: "E2", ShiftDateTime: ecgAt,
	})
	same := ecgAt
	seedClinical(t, store, clock, &domain.ClinicalEvent{
		ID: "ce3", PatientEncounterID: "P3", AttendingEmployeeID: "E1",
		ShiftDateTime: ecgAt, ECGTime: &same, ActivationTime: &same,
	})
	store.InsertEvents(
		ev("a", "E1", domain.ActionLogin, daysBefore(1.5), nil),
		ev("b", "E1", domain.ActionViewCase, daysBefore(10), nil),
	)

	svc := NewLinkedExportService(store, 10, 1, testLogger)
	resp, err := svc.GenerateLinkedExport(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.NoData)
	assert.Equal(t, 3, resp.RowCount)

	lines := strings.Split(resp.CSV, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(LinkedExportHeader, ","), lines[0])
	assert.Equal(t, `"E1","2025-05-31T06:00:00.000Z",15,true,true,false,1,1,1,0,1,0,0,0,1.5`, lines[1])
	assert.Equal(t, `"E2","","",false,false,false,"","","","","","","","",""`, lines[2])
	assert.Equal(t, `"E1","2025-05-31T06:00:00.000Z",0,false,true,true,1,1,1,0,1,0,0,0,1.5`, lines[3])
}

func TestGenerateLinkedExport_NoData(t *testing.T) {
	store, _ := newTestStore()
	svc := NewLinkedExportService(store, 10, 1, testLogger)

	resp, err := svc.GenerateLinkedExport(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.NoData)
	assert.Equal(t, NoClinicalEventsMessage, resp.CSV)
	assert.Equal(t, 0, store.EventQueryCount())
}

func seedFanOut(t *testing.T, employees int) *memory.Store {
	t.Helper()
	store, clock := newTestStore()
	for i := 0; i < employees; i++ {
		ecg := ecgAt
		employee := fmt.Sprintf("E%02d", i)
		seedClinical(t, store, clock, &domain.ClinicalEvent{
			ID: fmt.Sprintf("ce%02d", i), PatientEncounterID: fmt.Sprintf("P%02d", i),
			AttendingEmployeeID: employee, ShiftDateTime: ecgAt, ECGTime: &ecg,
		})
		for j := 0; j <= i%4; j++ {
			store.InsertEvents(ev(fmt.Sprintf("%s-%d", employee, j), employee, domain.ActionLogin, daysBefore(float64(j*6+1)), nil))
		}
	}
	// an employee with activity but no clinical events must not be fetched
	store.InsertEvents(ev("outsider", "E99", domain.ActionLogin, daysBefore(1), nil))
	return store
}

func TestBuildRows_ChunkedFanOutMatchesSingleQuery(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			store := seedFanOut(t, 25)
			svc := NewLinkedExportService(store, 10, concurrency, testLogger)

			rows, err := svc.BuildRows(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, store.EventQueryCount(), "ceil(25/10) chunked queries")
			require.Len(t, rows, 25)

			all, err := store.QueryEvents(context.Background(), domain.EventQuery{})
			require.NoError(t, err)
			for _, row := range rows {
				require.NotNil(t, row.Exposure)
				want := ComputeExposure(row.AttendingEmployeeID, *row.ECGTime, all)
				assert.Equal(t, want, *row.Exposure, row.AttendingEmployeeID)
			}
			assert.Equal(t, "E00", rows[0].AttendingEmployeeID, "rows follow clinical event order")
			assert.Equal(t, "E24", rows[24].AttendingEmployeeID)
		})
	}
}

func TestBuildRows_ChunkFailureAbortsExport(t *testing.T) {
	base := seedFanOut(t, 25)
	store := &failingQueryStore{Store: base, failOn: 2, err: errors.New("ORA-12170: TNS:Connect timeout occurred")}
	svc := NewLinkedExportService(store, 10, 1, testLogger)

	rows, err := svc.BuildRows(context.Background())
	assert.Nil(t, rows)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeInternal, derr.Code)
	assert.Contains(t, err.Error(), "chunk 2/3")
}

func TestBuildRows_SkipsEmptyAndDuplicateEmployees(t *testing.T) {
	store, clock := newTestStore()
	for i, employee := range []string{"E1", "", "E1", "E2"} {
		seedClinical(t, store, clock, &domain.ClinicalEvent{
			ID: fmt.Sprintf("ce%d", i), PatientEncounterID: "P", AttendingEmployeeID: employee, ShiftDateTime: ecgAt,
		})
	}
	svc := NewLinkedExportService(store, 1, 1, testLogger)

	rows, err := svc.BuildRows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, 2, store.EventQueryCount(), "one single-value chunk per distinct employee")
}

func TestRenderLinkedCSV_DoesNotEscapeHTML(t *testing.T) {
	out, err := RenderLinkedCSV([]ExposureRow{{AttendingEmployeeID: `<A&B>"`}})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"<A&B>\""`), lines[1])
}

func TestExposureRow_CellsKeepZeroMinutes(t *testing.T) {
	zero := int64(0)
	cells := ExposureRow{AttendingEmployeeID: "E1", ECGToActivationMinutes: &zero}.Cells()
	assert.Equal(t, int64(0), cells[2])

	cells = ExposureRow{AttendingEmployeeID: "E1"}.Cells()
	assert.Nil(t, cells[2])
	assert.Nil(t, cells[1])
}
