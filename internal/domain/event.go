package domain

import (
	"context"
	"time"
)

// EventAction enumerates the user actions recorded in the event log.
type EventAction string

const (
	ActionLogin            EventAction = "login"
	ActionViewCase         EventAction = "view_case"
	ActionViewLiterature   EventAction = "view_literature"
	ActionStartQuiz        EventAction = "start_quiz"
	ActionFinishQuiz       EventAction = "finish_quiz"
	ActionSubmitCaseAnswer EventAction = "submit_case_answer"
)

func (a EventAction) Valid() bool {
	switch a {
	case ActionLogin, ActionViewCase, ActionViewLiterature, ActionStartQuiz, ActionFinishQuiz, ActionSubmitCaseAnswer:
		return true
	}
	return false
}

// TargetType is the kind of content an event refers to. Empty means null.
type TargetType string

const (
	TargetNone  TargetType = ""
	TargetCase  TargetType = "case"
	TargetPaper TargetType = "paper"
	TargetQuiz  TargetType = "quiz"
)

// UnknownEmployeeID is recorded when the user profile has no employee ID.
const UnknownEmployeeID = "UNKNOWN"

// Event is an immutable record of one user action.
type Event struct {
	ID         string                 `json:"id"`
	UID        string                 `json:"uid"`
	EmployeeID string                 `json:"employeeId"`
	CreatedAt  time.Time              `json:"createdAt"`
	Action     EventAction            `json:"action"`
	TargetType TargetType             `json:"targetType"`
	TargetID   string                 `json:"targetId"`
	Meta       map[string]interface{} `json:"meta"`
}

// StampServerTime assigns createdAt from the committing store.
func (e *Event) StampServerTime(t time.Time) {
	e.CreatedAt = t
}

// MetaString returns meta[key] when it holds a string.
func (e *Event) MetaString(key string) string {
	if e.Meta == nil {
		return ""
	}
	s, _ := e.Meta[key].(string)
	return s
}

// MetaBool returns meta[key] when it holds a boolean.
func (e *Event) MetaBool(key string) bool {
	if e.Meta == nil {
		return false
	}
	b, _ := e.Meta[key].(bool)
	return b
}

// EventFilterField is the indexed field an event query filters on.
type EventFilterField string

const (
	EventFieldEmployeeID EventFilterField = "employeeId"
	EventFieldUID        EventFilterField = "uid"
)

// MaxInValues is the largest equality value set one event query may carry.
const MaxInValues = 10

// SortOrder of event query results by createdAt.
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// EventQuery selects events by field IN Values, optionally bounded by createdAt >= Since and Action.
type EventQuery struct {
	Field  EventFilterField
	Values []string
	Since  *time.Time
	Action EventAction
	Order  SortOrder
}

// EventReader is the read side of the event log.
// QueryEvents returns ErrTooManyFilterValues when len(Values) > MaxInValues.
// An empty Values slice means no field filter.
type EventReader interface {
	QueryEvents(ctx context.Context, q EventQuery) ([]Event, error)
}
