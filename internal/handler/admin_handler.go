package handler

import (
	"fmt"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/service"
	"ecg-academy/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const csvContentType = "text/csv; charset=utf-8"

// AdminHandler serves the admin-only research and maintenance endpoints
type AdminHandler struct {
	clinical    service.ClinicalImportService
	linked      service.LinkedExportService
	collections service.CollectionExportService
	stats       service.AdminStatsService
	content     service.AdminContentService
	validator   *validation.Validator
}

// AdminServices groups the services behind the admin routes.
type AdminServices struct {
	Clinical    service.ClinicalImportService
	Linked      service.LinkedExportService
	Collections service.CollectionExportService
	Stats       service.AdminStatsService
	Content     service.AdminContentService
}

func NewAdminHandler(s AdminServices) *AdminHandler {
	return &AdminHandler{
		clinical:    s.Clinical,
		linked:      s.Linked,
		collections: s.Collections,
		stats:       s.Stats,
		content:     s.Content,
		validator:   validation.NewValidator(),
	}
}

// ImportClinical godoc
// @Summary Import clinical outcome rows
// @Description Valid rows are stored, invalid rows are reported per row. Rows beyond the per-request cap are skipped.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ClinicalImportRequest true "Clinical rows"
// @Success 200 {object} dto.Envelope{data=dto.ClinicalImportResponse}
// @Failure 400 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/clinical-import [post]
func (h *AdminHandler) ImportClinical(c *fiber.Ctx) error {
	var req dto.ClinicalImportRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateClinicalImportRequest(req); len(errs) > 0 {
		return errs
	}

	resp, err := h.clinical.Import(c.UserContext(), req.Rows)
	if err != nil {
		return err
	}
	logger.Get().Info("clinical rows imported via API",
		zap.String("admin_uid", middleware.UserID(c)),
		zap.Int("count", resp.Count))
	return c.JSON(dto.OK(resp))
}

// ResearchExport godoc
// @Summary Export the exposure-linkage table
// @Description One row per clinical event joined with the attending clinician's trailing usage windows.
// @Description format=csv streams the table as text/csv.
// @Tags admin
// @Produce json
// @Produce text/csv
// @Security ApiKeyAuth
// @Param format query string false "json (default) or csv"
// @Success 200 {object} dto.Envelope{data=dto.LinkedExportResponse}
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/research-export [get]
func (h *AdminHandler) ResearchExport(c *fiber.Ctx) error {
	resp, err := h.linked.GenerateLinkedExport(c.UserContext())
	if err != nil {
		return err
	}
	if format(c) == "csv" {
		return sendCSV(c, "research-export", resp.CSV)
	}
	return c.JSON(dto.OK(resp))
}

// ExportCollection godoc
// @Summary Export a collection
// @Description Every document with _id and ISO-8601 timestamps. format=csv flattens nested fields with dotted keys.
// @Tags admin
// @Produce json
// @Produce text/csv
// @Security ApiKeyAuth
// @Param collection path string true "users, events, attempts, clinicalEvents, userStats, caseStats, pointsStats, cases or papers"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} dto.Envelope{data=dto.CollectionExportResponse}
// @Failure 400 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/export/{collection} [get]
func (h *AdminHandler) ExportCollection(c *fiber.Ctx) error {
	collection := c.Params("collection")
	if format(c) == "csv" {
		body, err := h.collections.ExportCSV(c.UserContext(), collection)
		if err != nil {
			return err
		}
		return sendCSV(c, collection, body)
	}

	resp, err := h.collections.ExportJSON(c.UserContext(), collection)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(resp))
}

// GetUserStats godoc
// @Summary Admin leaderboard
// @Description Per-user logins, quiz record and points, sorted by points descending
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} dto.Envelope{data=[]dto.AdminUserStatRow}
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/user-stats [get]
func (h *AdminHandler) GetUserStats(c *fiber.Ctx) error {
	var (
		rows []dto.AdminUserStatRow
		err  error
	)
	if c.QueryBool("refresh") {
		rows, err = h.stats.RefreshUserStats(c.UserContext())
	} else {
		rows, err = h.stats.GetUserStats(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(rows))
}

// GetCharts godoc
// @Summary Daily activity chart
// @Description Views, quizzes, logins and accuracy per UTC day for the last 30 days
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Envelope{data=[]dto.DailyActivity}
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/charts [get]
func (h *AdminHandler) GetCharts(c *fiber.Ctx) error {
	days, err := h.stats.GetDailyActivity(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(days))
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Removes the profile, quiz stats and read status. Points, events and attempts are kept.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param uid path string true "User ID"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/users/{uid} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	return h.deleted(c, "user", c.Params("uid"), h.content.DeleteUser(c.UserContext(), c.Params("uid")))
}

// DeleteCase godoc
// @Summary Delete a case
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param caseId path string true "Case ID"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/cases/{caseId} [delete]
func (h *AdminHandler) DeleteCase(c *fiber.Ctx) error {
	return h.deleted(c, "case", c.Params("caseId"), h.content.DeleteCase(c.UserContext(), c.Params("caseId")))
}

// DeletePaper godoc
// @Summary Delete a paper
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param paperId path string true "Paper ID"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 403 {object} dto.Envelope
// @Failure 500 {object} dto.Envelope
// @Router /admin/papers/{paperId} [delete]
func (h *AdminHandler) DeletePaper(c *fiber.Ctx) error {
	return h.deleted(c, "paper", c.Params("paperId"), h.content.DeletePaper(c.UserContext(), c.Params("paperId")))
}

func (h *AdminHandler) deleted(c *fiber.Ctx, kind, id string, err error) error {
	if err != nil {
		return err
	}
	logger.Get().Info("admin deleted "+kind,
		zap.String("admin_uid", middleware.UserID(c)),
		zap.String("id", id))
	return c.JSON(dto.OK(fiber.Map{"deleted": id}))
}

func format(c *fiber.Ctx) string {
	f, _ := c.Locals(middleware.ValidatedFormatKey).(string)
	return f
}

func sendCSV(c *fiber.Ctx, name, body string) error {
	c.Set(fiber.HeaderContentType, csvContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-%s.csv"`, name, time.Now().UTC().Format("20060102")))
	return c.SendString(body)
}
