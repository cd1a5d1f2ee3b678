package service

import (
	"context"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"

	"go.uber.org/zap"
)

// ActivityService records best-effort user activity: content views and logins.
// Nothing here returns an error to the caller; failures are logged at Warn.
type ActivityService interface {
	LogView(ctx context.Context, uid string, kind domain.ContentKind, contentID string, meta map[string]interface{}) dto.ViewResponse
	LogLogin(ctx context.Context, uid, sessionID string) dto.LoginResponse
	Logout(ctx context.Context, uid, sessionID string)
}

type activityServiceImpl struct {
	store    domain.Store
	sessions domain.SessionTracker
	logger   *zap.Logger
}

// NewActivityService creates an ActivityService. sessions may be nil, in which case every login is logged.
func NewActivityService(store domain.Store, sessions domain.SessionTracker, logger *zap.Logger) ActivityService {
	return &activityServiceImpl{store: store, sessions: sessions, logger: logger}
}

// LogView appends a view event and, on the first view of the content, adds it to the
// read set and awards the view reward in the same commit.
//
// Two concurrent first views can both see the content as unread and both award.
func (s *activityServiceImpl) LogView(ctx context.Context, uid string, kind domain.ContentKind, contentID string, meta map[string]interface{}) dto.ViewResponse {
	if uid == "" {
		return dto.ViewResponse{}
	}
	log := s.logger.With(zap.String("uid", uid), zap.String("kind", string(kind)), zap.String("content_id", contentID))
	if !kind.Valid() || contentID == "" {
		log.Warn("ignoring view with invalid target")
		return dto.ViewResponse{}
	}

	user := lookupUser(ctx, s.store, s.logger, uid)
	status, err := s.store.GetContentStatus(ctx, uid)
	if err != nil {
		log.Warn("failed to read content status, view not logged", zap.Error(err))
		return dto.ViewResponse{}
	}
	firstView := !status.HasRead(kind, contentID)

	event := newEvent(uid, user, kind.ViewAction(), kind.TargetType(), contentID, meta)
	batch := domain.NewBatch().Create(domain.CollectionEvents, event.ID, event)
	if firstView {
		batch.ArrayUnion(domain.CollectionContentStatus, uid, kind.ReadField(), contentID).
			AwardPoints(uid, domain.BucketContent, domain.ViewReward)
	}

	if err := s.store.Commit(ctx, batch); err != nil {
		log.Warn("failed to log view", zap.Error(err))
		return dto.ViewResponse{}
	}
	return dto.ViewResponse{Logged: true, Awarded: firstView}
}

// LogLogin logs one login event per session.
func (s *activityServiceImpl) LogLogin(ctx context.Context, uid, sessionID string) dto.LoginResponse {
	if uid == "" {
		return dto.LoginResponse{}
	}
	log := s.logger.With(zap.String("uid", uid))

	marked := false
	if s.sessions != nil && sessionID != "" {
		first, err := s.sessions.MarkLogin(ctx, uid, sessionID)
		switch {
		case err != nil:
			log.Warn("session tracker unavailable, logging login without dedupe", zap.Error(err))
		case !first:
			return dto.LoginResponse{}
		default:
			marked = true
		}
	}

	user := lookupUser(ctx, s.store, s.logger, uid)
	event := newEvent(uid, user, domain.ActionLogin, domain.TargetNone, "", nil)
	if err := s.store.Commit(ctx, domain.NewBatch().Create(domain.CollectionEvents, event.ID, event)); err != nil {
		log.Warn("failed to log login", zap.Error(err))
		if marked {
			// unmark so the next attempt in this session logs again
			if clearErr := s.sessions.Clear(ctx, uid, sessionID); clearErr != nil {
				log.Warn("failed to clear session flag", zap.Error(clearErr))
			}
		}
		return dto.LoginResponse{}
	}
	return dto.LoginResponse{Logged: true}
}

// Logout forgets the session so a later login in a new session is logged.
func (s *activityServiceImpl) Logout(ctx context.Context, uid, sessionID string) {
	if s.sessions == nil || uid == "" || sessionID == "" {
		return
	}
	if err := s.sessions.Clear(ctx, uid, sessionID); err != nil {
		s.logger.Warn("failed to clear session flag", zap.String("uid", uid), zap.String("session_id", sessionID), zap.Error(err))
	}
}
