package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ecg-academy/internal/cache"
	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRefreshUserStats_SortsByPoints(t *testing.T) {
	store, clock := newTestStore()
	seedUser(t, store, "u1", "E1")
	seedUser(t, store, "u2", "")
	ctx := context.Background()

	quiz := NewQuizService(store, nil, time.Hour, testLogger)
	activity := NewActivityService(store, nil, testLogger)
	clock.Advance(time.Hour)
	_, err := quiz.SubmitAttempt(ctx, "u2", quizRequest("All", true, true, false))
	require.NoError(t, err)
	activity.LogView(ctx, "u1", domain.ContentCase, "c1", nil)
	activity.LogLogin(ctx, "u1", "")
	activity.LogLogin(ctx, "u1", "")
	activity.LogLogin(ctx, "u2", "")

	svc := NewAdminStatsService(store, nil, time.Minute, clock, testLogger)
	rows, err := svc.RefreshUserStats(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	top := rows[0]
	assert.Equal(t, "u2", top.UID)
	assert.Equal(t, domain.UnknownEmployeeID, top.EmployeeID)
	assert.Equal(t, int64(5), top.TotalPoints)
	assert.Equal(t, int64(1), top.TotalAttempts)
	assert.Equal(t, int64(2), top.TotalCorrect)
	assert.Equal(t, int64(67), top.Accuracy)
	assert.Equal(t, int64(1), top.LoginCount)
	require.NotNil(t, top.LastActivityAt)
	assert.Equal(t, "2025-06-01T13:00:00.000Z", *top.LastActivityAt)

	assert.Equal(t, "u1", rows[1].UID)
	assert.Equal(t, int64(1), rows[1].TotalPoints)
	assert.Equal(t, int64(2), rows[1].LoginCount)
	assert.Nil(t, rows[1].LastActivityAt, "no quiz stats yet")
}

func TestGetUserStats_ServesCache(t *testing.T) {
	store, _ := newTestStore()
	c := new(MockCache)
	cached, _ := json.Marshal([]dto.AdminUserStatRow{{UID: "cached", TotalPoints: 99}})
	c.On("Get", mock.Anything, cache.AdminUserStatsKey()).Return(string(cached), nil).Once()
	svc := NewAdminStatsService(store, c, 10*time.Minute, nil, testLogger)

	rows, err := svc.GetUserStats(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "cached", rows[0].UID)
	c.AssertExpectations(t)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserStats_MissRefreshesCache(t *testing.T) {
	store, _ := newTestStore()
	seedUser(t, store, "u1", "E1")
	c := new(MockCache)
	c.On("Get", mock.Anything, cache.AdminUserStatsKey()).Return("", domain.ErrCacheMiss).Once()
	c.On("Set", mock.Anything, cache.AdminUserStatsKey(), mock.MatchedBy(func(v string) bool {
		var rows []dto.AdminUserStatRow
		return json.Unmarshal([]byte(v), &rows) == nil && len(rows) == 1 && rows[0].UID == "u1"
	}), 10*time.Minute).Return(nil).Once()
	svc := NewAdminStatsService(store, c, 10*time.Minute, nil, testLogger)

	rows, err := svc.GetUserStats(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	c.AssertExpectations(t)
}

func TestGetDailyActivity_BucketsAndZeroFills(t *testing.T) {
	store, clock := newTestStore()
	day := func(offset int, hour int) time.Time {
		return time.Date(2025, 6, 1+offset, hour, 0, 0, 0, time.UTC)
	}
	store.InsertEvents(
		ev("1", "E1", domain.ActionViewCase, day(-1, 3), nil),
		ev("2", "E1", domain.ActionViewLiterature, day(-1, 22), nil),
		ev("3", "E1", domain.ActionFinishQuiz, day(-1, 23), nil),
		ev("4", "E1", domain.ActionSubmitCaseAnswer, day(-3, 9), map[string]interface{}{"isCorrect": true}),
		ev("5", "E1", domain.ActionSubmitCaseAnswer, day(-3, 9), map[string]interface{}{"isCorrect": false}),
		ev("6", "E1", domain.ActionSubmitCaseAnswer, day(-3, 10), map[string]interface{}{"isCorrect": true}),
		ev("7", "E1", domain.ActionLogin, day(0, 8), nil),
		ev("8", "E1", domain.ActionLogin, day(-45, 8), nil),
	)
	svc := NewAdminStatsService(store, nil, time.Minute, clock, testLogger)

	days, err := svc.GetDailyActivity(context.Background())
	require.NoError(t, err)
	require.Len(t, days, ChartDays+1)
	assert.Equal(t, "2025-05-02", days[0].Date)
	assert.Equal(t, "2025-06-01", days[ChartDays].Date)

	byDate := map[string]dto.DailyActivity{}
	for _, d := range days {
		byDate[d.Date] = d
	}
	assert.Equal(t, dto.DailyActivity{Date: "2025-05-31", Views: 2, Quizzes: 1}, byDate["2025-05-31"])
	assert.Equal(t, dto.DailyActivity{Date: "2025-05-29", TotalAnswered: 3, Correct: 2, Accuracy: 67}, byDate["2025-05-29"])
	assert.Equal(t, int64(1), byDate["2025-06-01"].Logins)
	assert.Equal(t, dto.DailyActivity{Date: "2025-05-15"}, byDate["2025-05-15"])
}

func TestAdminContent_DeleteUserKeepsAuditRecords(t *testing.T) {
	store, _ := newTestStore()
	seedUser(t, store, "u1", "E1")
	ctx := context.Background()
	_, err := NewQuizService(store, nil, time.Hour, testLogger).SubmitAttempt(ctx, "u1", quizRequest("All", true))
	require.NoError(t, err)
	NewActivityService(store, nil, testLogger).LogView(ctx, "u1", domain.ContentCase, "c1", nil)

	svc := NewAdminContentService(store, testLogger)
	require.NoError(t, svc.DeleteUser(ctx, "u1"))

	user, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, user)
	us, err := store.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, us)
	status, err := store.GetContentStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, status)

	ps := requireBalanced(t, store, "u1")
	assert.Equal(t, int64(7), ps.TotalPoints)
	assert.Len(t, eventsOf(t, store, "u1", ""), 2)
	cs, err := store.GetCaseStats(ctx, "case-a")
	require.NoError(t, err)
	assert.NotNil(t, cs)
}

func TestAdminContent_DeleteCaseAndPaper(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, domain.NewBatch().
		Create(domain.CollectionCases, "c1", &domain.Case{ID: "c1", Title: "Wellens", Category: domain.CategoryOMI, Status: domain.StatusPublished}).
		Create(domain.CollectionPapers, "p1", &domain.Paper{ID: "p1", Title: "OMI paradigm", Status: domain.StatusPublished}).
		Increment(domain.CollectionCaseStats, "c1", domain.FieldTotalAnswered, 3)))

	svc := NewAdminContentService(store, testLogger)
	require.NoError(t, svc.DeleteCase(ctx, "c1"))
	require.NoError(t, svc.DeletePaper(ctx, "p1"))
	require.NoError(t, svc.DeletePaper(ctx, "missing"), "deleting a missing document is not an error")

	cases, err := store.ListCases(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, cases)
	papers, err := store.ListPapers(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, papers)
	cs, err := store.GetCaseStats(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, cs)

	var derr *domain.DomainError
	require.ErrorAs(t, svc.DeleteUser(ctx, ""), &derr)
	assert.Equal(t, domain.CodeInvalidInput, derr.Code)
}

func TestGetProgress(t *testing.T) {
	store, _ := newTestStore()
	seedUser(t, store, "u1", "E1")
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, domain.NewBatch().
		Create(domain.CollectionCases, "c1", &domain.Case{ID: "c1", Status: domain.StatusPublished}).
		Create(domain.CollectionCases, "c2", &domain.Case{ID: "c2", Status: domain.StatusPublished}).
		Create(domain.CollectionCases, "c3", &domain.Case{ID: "c3", Status: domain.StatusDraft}).
		Create(domain.CollectionPapers, "p1", &domain.Paper{ID: "p1", Status: domain.StatusPublished})))

	activity := NewActivityService(store, nil, testLogger)
	activity.LogView(ctx, "u1", domain.ContentCase, "c1", nil)
	activity.LogView(ctx, "u1", domain.ContentCase, "c3", nil)
	_, err := NewQuizService(store, nil, time.Hour, testLogger).SubmitAttempt(ctx, "u1", quizRequest("All", true, false))
	require.NoError(t, err)

	svc := NewProgressService(store, testLogger)
	p, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.TotalPoints)
	assert.Equal(t, int64(2), p.PointsBreakdown.ContentPoints)
	assert.Equal(t, int64(4), p.PointsBreakdown.QuizPoints)
	assert.Equal(t, dto.QuizProgress{TotalAttempts: 1, TotalAnswered: 2, TotalCorrect: 1, Accuracy: 50}, p.Quiz)
	assert.Equal(t, 2, p.CasesRead)
	assert.Equal(t, 0, p.PapersRead)
	assert.Equal(t, 1, p.QuizzesCompleted)
	assert.Equal(t, []string{"c2"}, p.UnreadCases)
	assert.Equal(t, []string{"p1"}, p.UnreadPapers)

	fresh, err := svc.GetProgress(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), fresh.TotalPoints)
	assert.Equal(t, []string{"c1", "c2"}, fresh.UnreadCases)

	_, err = svc.GetProgress(ctx, "")
	assert.Error(t, err)
}
