package handler

import (
	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/service"
	"ecg-academy/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// SubmitAttempt godoc
// @Summary Submit a finished quiz
// @Description Stores the attempt and applies the points ledger atomically.
// @Description Send an idempotencyKey to make retries safe; a replay returns the original result with replayed=true.
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.SubmitQuizRequest true "Quiz result"
// @Success 200 {object} dto.Envelope{data=dto.SubmitQuizResponse}
// @Failure 400 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /quiz/attempts [post]
func (h *QuizHandler) SubmitAttempt(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateSubmitQuizRequest(req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.SubmitAttempt(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(resp))
}
