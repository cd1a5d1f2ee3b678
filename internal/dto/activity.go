package dto

// ViewRequest is sent when a case or paper page is opened.
// @Description Content view notification
type ViewRequest struct {
	Type string                 `json:"type"` // "case" or "paper"
	ID   string                 `json:"id"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

type ViewResponse struct {
	Logged  bool `json:"logged"`
	Awarded bool `json:"awarded"` // first view, +1 content point
}

// EventRequest logs a client-side action such as start_quiz or submit_case_answer.
// @Description Client event
type EventRequest struct {
	Action     string                 `json:"action"`
	TargetType string                 `json:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// EventResponse reports the logged event. Logged is false when the append failed.
type EventResponse struct {
	Logged     bool   `json:"logged"`
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

// LoginResponse reports whether this call logged the session's login event.
type LoginResponse struct {
	Logged bool `json:"logged"`
}
