package handler

import (
	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/service"
	"ecg-academy/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ActivityHandler handles best-effort activity logging: views, client events and sessions
type ActivityHandler struct {
	activity  service.ActivityService
	events    service.EventLog
	validator *validation.Validator
}

func NewActivityHandler(activity service.ActivityService, events service.EventLog) *ActivityHandler {
	return &ActivityHandler{
		activity:  activity,
		events:    events,
		validator: validation.NewValidator(),
	}
}

// LogView godoc
// @Summary Log a content view
// @Description Logs a case or paper view. The first view of a piece of content awards one content point.
// @Description Always succeeds for authenticated callers; logged reports whether the view was recorded.
// @Tags activity
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ViewRequest true "Viewed content"
// @Success 200 {object} dto.Envelope{data=dto.ViewResponse}
// @Failure 401 {object} dto.Envelope
// @Router /views [post]
func (h *ActivityHandler) LogView(c *fiber.Ctx) error {
	uid := middleware.UserID(c)

	var req dto.ViewRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Warn("ignoring unparseable view body", zap.String("uid", uid), zap.Error(err))
		return c.JSON(dto.OK(dto.ViewResponse{}))
	}
	if errs := h.validator.ValidateViewRequest(req); len(errs) > 0 {
		logger.Get().Warn("ignoring invalid view", zap.String("uid", uid), zap.Error(errs))
		return c.JSON(dto.OK(dto.ViewResponse{}))
	}

	resp := h.activity.LogView(c.UserContext(), uid, domain.ContentKind(req.Type), req.ID, req.Meta)
	return c.JSON(dto.OK(resp))
}

// LogEvent godoc
// @Summary Log a client event
// @Description Appends an activity event such as start_quiz or submit_case_answer
// @Tags activity
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.EventRequest true "Event"
// @Success 200 {object} dto.Envelope{data=dto.EventResponse}
// @Failure 400 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /events [post]
func (h *ActivityHandler) LogEvent(c *fiber.Ctx) error {
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateEventRequest(req); len(errs) > 0 {
		return errs
	}

	uid := middleware.UserID(c)
	event, err := h.events.Append(c.UserContext(), uid, domain.EventAction(req.Action),
		domain.TargetType(req.TargetType), req.TargetID, req.Meta)
	if err != nil || event == nil {
		logger.Get().Warn("client event not logged",
			zap.String("uid", uid),
			zap.String("action", req.Action),
			zap.Error(err))
		return c.JSON(dto.OK(dto.EventResponse{}))
	}
	return c.JSON(dto.OK(dto.EventResponse{Logged: true, ID: event.ID, EmployeeID: event.EmployeeID}))
}

// Login godoc
// @Summary Log a session login
// @Description Logs one login event per session ID
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Client session ID"
// @Success 200 {object} dto.Envelope{data=dto.LoginResponse}
// @Failure 400 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /sessions/login [post]
func (h *ActivityHandler) Login(c *fiber.Ctx) error {
	sessionID, _ := c.Locals(middleware.ValidatedSessionID).(string)
	resp := h.activity.LogLogin(c.UserContext(), middleware.UserID(c), sessionID)
	return c.JSON(dto.OK(resp))
}

// Logout godoc
// @Summary End a session
// @Description Clears the session's login flag so the next session logs a new login
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Client session ID"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /sessions/logout [post]
func (h *ActivityHandler) Logout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals(middleware.ValidatedSessionID).(string)
	h.activity.Logout(c.UserContext(), middleware.UserID(c), sessionID)
	return c.JSON(dto.OK(nil))
}
