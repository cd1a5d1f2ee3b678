package handler

import (
	"ecg-academy/internal/dto"
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles requests about the authenticated user
type UserHandler struct {
	progress service.ProgressService
}

func NewUserHandler(progress service.ProgressService) *UserHandler {
	return &UserHandler{progress: progress}
}

// GetMyProgress godoc
// @Summary Get my progress
// @Description Points with breakdown, quiz record and unread published content
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Envelope{data=dto.ProgressResponse}
// @Failure 401 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /users/me/progress [get]
func (h *UserHandler) GetMyProgress(c *fiber.Ctx) error {
	resp, err := h.progress.GetProgress(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(resp))
}
