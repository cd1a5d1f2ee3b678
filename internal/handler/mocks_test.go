package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/handler"
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Manual Mocks ---

type MockActivityService struct {
	LogViewFunc  func(ctx context.Context, uid string, kind domain.ContentKind, contentID string, meta map[string]interface{}) dto.ViewResponse
	LogLoginFunc func(ctx context.Context, uid, sessionID string) dto.LoginResponse
	LogoutFunc   func(ctx context.Context, uid, sessionID string)
}

func (m *MockActivityService) LogView(ctx context.Context, uid string, kind domain.ContentKind, contentID string, meta map[string]interface{}) dto.ViewResponse {
	if m.LogViewFunc != nil {
		return m.LogViewFunc(ctx, uid, kind, contentID, meta)
	}
	panic("MockActivityService.LogViewFunc not implemented")
}
func (m *MockActivityService) LogLogin(ctx context.Context, uid, sessionID string) dto.LoginResponse {
	if m.LogLoginFunc != nil {
		return m.LogLoginFunc(ctx, uid, sessionID)
	}
	panic("MockActivityService.LogLoginFunc not implemented")
}
func (m *MockActivityService) Logout(ctx context.Context, uid, sessionID string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, uid, sessionID)
		return
	}
	panic("MockActivityService.LogoutFunc not implemented")
}

type MockEventLog struct {
	AppendFunc func(ctx context.Context, uid string, action domain.EventAction, targetType domain.TargetType, targetID string, meta map[string]interface{}) (*domain.Event, error)
}

func (m *MockEventLog) Append(ctx context.Context, uid string, action domain.EventAction, targetType domain.TargetType, targetID string, meta map[string]interface{}) (*domain.Event, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, uid, action, targetType, targetID, meta)
	}
	panic("MockEventLog.AppendFunc not implemented")
}

type MockQuizService struct {
	SubmitAttemptFunc func(ctx context.Context, uid string, req dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
}

func (m *MockQuizService) SubmitAttempt(ctx context.Context, uid string, req dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	if m.SubmitAttemptFunc != nil {
		return m.SubmitAttemptFunc(ctx, uid, req)
	}
	panic("MockQuizService.SubmitAttemptFunc not implemented")
}

type MockProgressService struct {
	GetProgressFunc func(ctx context.Context, uid string) (*dto.ProgressResponse, error)
}

func (m *MockProgressService) GetProgress(ctx context.Context, uid string) (*dto.ProgressResponse, error) {
	if m.GetProgressFunc != nil {
		return m.GetProgressFunc(ctx, uid)
	}
	panic("MockProgressService.GetProgressFunc not implemented")
}

type MockClinicalImportService struct {
	ImportFunc func(ctx context.Context, rows []domain.ClinicalRow) (*dto.ClinicalImportResponse, error)
}

func (m *MockClinicalImportService) Import(ctx context.Context, rows []domain.ClinicalRow) (*dto.ClinicalImportResponse, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, rows)
	}
	panic("MockClinicalImportService.ImportFunc not implemented")
}

type MockLinkedExportService struct {
	GenerateLinkedExportFunc func(ctx context.Context) (*dto.LinkedExportResponse, error)
}

func (m *MockLinkedExportService) BuildRows(ctx context.Context) ([]service.ExposureRow, error) {
	panic("MockLinkedExportService.BuildRows not implemented")
}
func (m *MockLinkedExportService) GenerateLinkedExport(ctx context.Context) (*dto.LinkedExportResponse, error) {
	if m.GenerateLinkedExportFunc != nil {
		return m.GenerateLinkedExportFunc(ctx)
	}
	panic("MockLinkedExportService.GenerateLinkedExportFunc not implemented")
}

type MockCollectionExportService struct {
	ExportJSONFunc func(ctx context.Context, collection string) (*dto.CollectionExportResponse, error)
	ExportCSVFunc  func(ctx context.Context, collection string) (string, error)
}

func (m *MockCollectionExportService) ExportJSON(ctx context.Context, collection string) (*dto.CollectionExportResponse, error) {
	if m.ExportJSONFunc != nil {
		return m.ExportJSONFunc(ctx, collection)
	}
	panic("MockCollectionExportService.ExportJSONFunc not implemented")
}
func (m *MockCollectionExportService) ExportCSV(ctx context.Context, collection string) (string, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, collection)
	}
	panic("MockCollectionExportService.ExportCSVFunc not implemented")
}

type MockAdminStatsService struct {
	GetUserStatsFunc     func(ctx context.Context) ([]dto.AdminUserStatRow, error)
	RefreshUserStatsFunc func(ctx context.Context) ([]dto.AdminUserStatRow, error)
	GetDailyActivityFunc func(ctx context.Context) ([]dto.DailyActivity, error)
}

func (m *MockAdminStatsService) GetUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error) {
	if m.GetUserStatsFunc != nil {
		return m.GetUserStatsFunc(ctx)
	}
	panic("MockAdminStatsService.GetUserStatsFunc not implemented")
}
func (m *MockAdminStatsService) RefreshUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error) {
	if m.RefreshUserStatsFunc != nil {
		return m.RefreshUserStatsFunc(ctx)
	}
	panic("MockAdminStatsService.RefreshUserStatsFunc not implemented")
}
func (m *MockAdminStatsService) GetDailyActivity(ctx context.Context) ([]dto.DailyActivity, error) {
	if m.GetDailyActivityFunc != nil {
		return m.GetDailyActivityFunc(ctx)
	}
	panic("MockAdminStatsService.GetDailyActivityFunc not implemented")
}

type MockAdminContentService struct {
	DeleteUserFunc  func(ctx context.Context, uid string) error
	DeleteCaseFunc  func(ctx context.Context, caseID string) error
	DeletePaperFunc func(ctx context.Context, paperID string) error
}

func (m *MockAdminContentService) DeleteUser(ctx context.Context, uid string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, uid)
	}
	panic("MockAdminContentService.DeleteUserFunc not implemented")
}
func (m *MockAdminContentService) DeleteCase(ctx context.Context, caseID string) error {
	if m.DeleteCaseFunc != nil {
		return m.DeleteCaseFunc(ctx, caseID)
	}
	panic("MockAdminContentService.DeleteCaseFunc not implemented")
}
func (m *MockAdminContentService) DeletePaper(ctx context.Context, paperID string) error {
	if m.DeletePaperFunc != nil {
		return m.DeletePaperFunc(ctx, paperID)
	}
	panic("MockAdminContentService.DeletePaperFunc not implemented")
}

// --- Test app ---

const (
	testSecret = "handler-test-secret"
	testIssuer = "ecg-academy"
	adminRole  = "admin"
)

type testMocks struct {
	activity    *MockActivityService
	events      *MockEventLog
	quiz        *MockQuizService
	progress    *MockProgressService
	clinical    *MockClinicalImportService
	linked      *MockLinkedExportService
	collections *MockCollectionExportService
	stats       *MockAdminStatsService
	content     *MockAdminContentService
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func setupApp(t *testing.T) (*fiber.App, *testMocks, service.AuthService) {
	t.Helper()
	authService, err := service.NewAuthService(testSecret, testIssuer, zap.NewNop())
	require.NoError(t, err)

	m := &testMocks{
		activity:    &MockActivityService{},
		events:      &MockEventLog{},
		quiz:        &MockQuizService{},
		progress:    &MockProgressService{},
		clinical:    &MockClinicalImportService{},
		linked:      &MockLinkedExportService{},
		collections: &MockCollectionExportService{},
		stats:       &MockAdminStatsService{},
		content:     &MockAdminContentService{},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Handlers{
		Activity: handler.NewActivityHandler(m.activity, m.events),
		Quiz:     handler.NewQuizHandler(m.quiz),
		User:     handler.NewUserHandler(m.progress),
		Admin: handler.NewAdminHandler(handler.AdminServices{
			Clinical:    m.clinical,
			Linked:      m.linked,
			Collections: m.collections,
			Stats:       m.stats,
			Content:     m.content,
		}),
	}, authService, adminRole)
	return app, m, authService
}

func tokenFor(t *testing.T, authService service.AuthService, uid, role string) string {
	t.Helper()
	token, err := authService.CreateJWT(context.Background(), uid, role, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, token string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewBuffer(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeEnvelope(t *testing.T, raw []byte, data interface{}) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
