package service

import (
	"context"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressService summarises a user's learning progress.
type ProgressService interface {
	GetProgress(ctx context.Context, uid string) (*dto.ProgressResponse, error)
}

type progressServiceImpl struct {
	store  domain.Store
	logger *zap.Logger
}

func NewProgressService(store domain.Store, logger *zap.Logger) ProgressService {
	return &progressServiceImpl{store: store, logger: logger}
}

// GetProgress reads the user's ledgers and compares the read sets with the published catalog.
// Missing ledgers count as zero.
func (s *progressServiceImpl) GetProgress(ctx context.Context, uid string) (*dto.ProgressResponse, error) {
	if uid == "" {
		return nil, domain.NewUnauthorizedError("User ID is required")
	}

	var (
		points *domain.PointsStats
		stats  *domain.UserStats
		status *domain.ContentReadStatus
		cases  []domain.Case
		papers []domain.Paper
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { points, err = s.store.GetPointsStats(gctx, uid); return })
	g.Go(func() (err error) { stats, err = s.store.GetUserStats(gctx, uid); return })
	g.Go(func() (err error) { status, err = s.store.GetContentStatus(gctx, uid); return })
	g.Go(func() (err error) { cases, err = s.store.ListCases(gctx, domain.StatusPublished); return })
	g.Go(func() (err error) { papers, err = s.store.ListPapers(gctx, domain.StatusPublished); return })
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("failed to load progress", err)
	}

	resp := &dto.ProgressResponse{UID: uid, UnreadCases: []string{}, UnreadPapers: []string{}}
	if points != nil {
		resp.TotalPoints = points.TotalPoints
		resp.PointsBreakdown = points.PointsBreakdown
	}
	if stats != nil {
		resp.Quiz = dto.QuizProgress{
			TotalAttempts: stats.TotalAttempts,
			TotalAnswered: stats.TotalAnswered,
			TotalCorrect:  stats.TotalCorrect,
			Accuracy:      util.PercentRounded(stats.TotalCorrect, stats.TotalAnswered),
		}
	}
	if status != nil {
		resp.CasesRead = len(status.CasesRead)
		resp.PapersRead = len(status.PapersRead)
		resp.QuizzesCompleted = len(status.QuizzesCompleted)
	}

	for _, c := range cases {
		if !status.HasRead(domain.ContentCase, c.ID) {
			resp.UnreadCases = append(resp.UnreadCases, c.ID)
		}
	}
	for _, p := range papers {
		if !status.HasRead(domain.ContentPaper, p.ID) {
			resp.UnreadPapers = append(resp.UnreadPapers, p.ID)
		}
	}
	return resp, nil
}
