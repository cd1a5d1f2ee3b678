package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"ecg-academy/internal/cache"
	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ChartDays is the span of the admin daily activity chart.
const ChartDays = 30

const dayLayout = "2006-01-02"

// AdminStatsService serves the admin dashboard: the user leaderboard and the daily activity chart.
type AdminStatsService interface {
	// GetUserStats returns the cached leaderboard, computing it on a miss.
	GetUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error)
	// RefreshUserStats recomputes the leaderboard and overwrites the cache.
	RefreshUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error)
	GetDailyActivity(ctx context.Context) ([]dto.DailyActivity, error)
}

type adminStatsServiceImpl struct {
	store  domain.Store
	cache  domain.Cache // optional
	ttl    time.Duration
	clock  domain.Clock
	logger *zap.Logger
}

func NewAdminStatsService(store domain.Store, c domain.Cache, ttl time.Duration, clock domain.Clock, logger *zap.Logger) AdminStatsService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &adminStatsServiceImpl{store: store, cache: c, ttl: ttl, clock: clock, logger: logger}
}

func (s *adminStatsServiceImpl) GetUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cache.AdminUserStatsKey())
		switch {
		case err == nil:
			var rows []dto.AdminUserStatRow
			if jsonErr := json.Unmarshal([]byte(raw), &rows); jsonErr == nil {
				return rows, nil
			}
			s.logger.Warn("discarding unreadable admin stats cache entry")
		case !errors.Is(err, domain.ErrCacheMiss):
			s.logger.Warn("admin stats cache read failed", zap.Error(err))
		}
	}
	return s.RefreshUserStats(ctx)
}

func (s *adminStatsServiceImpl) RefreshUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error) {
	rows, err := s.computeUserStats(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if b, jsonErr := json.Marshal(rows); jsonErr == nil {
			if setErr := s.cache.Set(ctx, cache.AdminUserStatsKey(), string(b), s.ttl); setErr != nil {
				s.logger.Warn("failed to cache admin stats", zap.Error(setErr))
			}
		}
	}
	return rows, nil
}

func (s *adminStatsServiceImpl) computeUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error) {
	var (
		users  []domain.User
		stats  []domain.UserStats
		points []domain.PointsStats
		logins []domain.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = s.store.ListUsers(gctx); return })
	g.Go(func() (err error) { stats, err = s.store.ListUserStats(gctx); return })
	g.Go(func() (err error) { points, err = s.store.ListPointsStats(gctx); return })
	g.Go(func() (err error) {
		logins, err = s.store.QueryEvents(gctx, domain.EventQuery{Action: domain.ActionLogin})
		return
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("failed to load admin stats", err)
	}

	statsByUID := make(map[string]*domain.UserStats, len(stats))
	for i := range stats {
		statsByUID[stats[i].UID] = &stats[i]
	}
	pointsByUID := make(map[string]int64, len(points))
	for _, p := range points {
		pointsByUID[p.UID] = p.TotalPoints
	}
	loginCount := make(map[string]int64)
	for _, ev := range logins {
		loginCount[ev.UID]++
	}

	rows := make([]dto.AdminUserStatRow, 0, len(users))
	for i := range users {
		u := &users[i]
		row := dto.AdminUserStatRow{
			UID:         u.UID,
			EmployeeID:  u.EmployeeIDOrUnknown(),
			Email:       u.Email,
			LoginCount:  loginCount[u.UID],
			TotalPoints: pointsByUID[u.UID],
		}
		if st, ok := statsByUID[u.UID]; ok {
			row.TotalAttempts = st.TotalAttempts
			row.TotalCorrect = st.TotalCorrect
			row.Accuracy = util.PercentRounded(st.TotalCorrect, st.TotalAnswered)
			last := isoTime(st.UpdatedAt)
			row.LastActivityAt = &last
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPoints > rows[j].TotalPoints
	})
	return rows, nil
}

// GetDailyActivity buckets the last ChartDays days of events by UTC day, oldest first.
// Days without events are present with zero counts.
func (s *adminStatsServiceImpl) GetDailyActivity(ctx context.Context) ([]dto.DailyActivity, error) {
	now := s.clock.Now().UTC()
	since := now.AddDate(0, 0, -ChartDays)

	events, err := s.store.QueryEvents(ctx, domain.EventQuery{Since: domain.Since(since), Order: domain.SortAscending})
	if err != nil {
		return nil, domain.NewInternalError("failed to load chart events", err)
	}

	byDay := make(map[string]*dto.DailyActivity)
	var days []string
	for d := since.Truncate(24 * time.Hour); !d.After(now); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		byDay[key] = &dto.DailyActivity{Date: key}
		days = append(days, key)
	}

	for i := range events {
		ev := &events[i]
		bucket, ok := byDay[ev.CreatedAt.UTC().Format(dayLayout)]
		if !ok {
			continue
		}
		switch ev.Action {
		case domain.ActionViewCase, domain.ActionViewLiterature:
			bucket.Views++
		case domain.ActionFinishQuiz:
			bucket.Quizzes++
		case domain.ActionLogin:
			bucket.Logins++
		case domain.ActionSubmitCaseAnswer:
			bucket.TotalAnswered++
			if ev.MetaBool("isCorrect") {
				bucket.Correct++
			}
		}
	}

	out := make([]dto.DailyActivity, 0, len(days))
	for _, key := range days {
		day := byDay[key]
		day.Accuracy = util.PercentRounded(day.Correct, day.TotalAnswered)
		out = append(out, *day)
	}
	return out, nil
}
