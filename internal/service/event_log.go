package service

import (
	"context"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/util"

	"go.uber.org/zap"
)

// EventLog appends immutable activity records. createdAt is assigned by the store at commit.
type EventLog interface {
	// Append is a no-op returning (nil, nil) when uid is empty.
	Append(ctx context.Context, uid string, action domain.EventAction, targetType domain.TargetType, targetID string, meta map[string]interface{}) (*domain.Event, error)
}

type eventLogImpl struct {
	store  domain.Store
	logger *zap.Logger
}

func NewEventLog(store domain.Store, logger *zap.Logger) EventLog {
	return &eventLogImpl{store: store, logger: logger}
}

func (s *eventLogImpl) Append(ctx context.Context, uid string, action domain.EventAction, targetType domain.TargetType, targetID string, meta map[string]interface{}) (*domain.Event, error) {
	if uid == "" {
		return nil, nil
	}
	user := lookupUser(ctx, s.store, s.logger, uid)
	event := newEvent(uid, user, action, targetType, targetID, meta)

	if err := s.store.Commit(ctx, domain.NewBatch().Create(domain.CollectionEvents, event.ID, event)); err != nil {
		return nil, domain.NewInternalError("failed to append event", err)
	}
	return event, nil
}

// newEvent builds an event carrying the user's employee ID snapshot.
func newEvent(uid string, user *domain.User, action domain.EventAction, targetType domain.TargetType, targetID string, meta map[string]interface{}) *domain.Event {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &domain.Event{
		ID:         util.NewULID(),
		UID:        uid,
		EmployeeID: user.EmployeeIDOrUnknown(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Meta:       meta,
	}
}

// lookupUser resolves the profile for the employee snapshot.
// A failed lookup is logged and treated as a missing profile.
func lookupUser(ctx context.Context, users domain.UserRepository, logger *zap.Logger, uid string) *domain.User {
	user, err := users.GetUser(ctx, uid)
	if err != nil {
		logger.Warn("user lookup failed, recording UNKNOWN employee id", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	return user
}
