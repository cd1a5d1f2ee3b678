package handler

import (
	"ecg-academy/internal/middleware"
	"ecg-academy/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every route handler of the API.
type Handlers struct {
	Activity *ActivityHandler
	Quiz     *QuizHandler
	User     *UserHandler
	Admin    *AdminHandler
}

// RegisterRoutes mounts /healthz and the /api tree. All /api routes require a bearer token;
// /api/admin additionally requires adminRole.
func RegisterRoutes(app *fiber.App, h Handlers, authService service.AuthService, adminRole string) {
	vm := middleware.NewValidationMiddleware()

	app.Get("/healthz", Healthz)

	api := app.Group("/api", middleware.Protected(authService))

	api.Post("/views", h.Activity.LogView)
	api.Post("/events", h.Activity.LogEvent)
	api.Post("/sessions/login", vm.RequireSessionID(), h.Activity.Login)
	api.Post("/sessions/logout", vm.RequireSessionID(), h.Activity.Logout)

	api.Post("/quiz/attempts", h.Quiz.SubmitAttempt)
	api.Get("/users/me/progress", h.User.GetMyProgress)

	admin := api.Group("/admin", middleware.RequireAdmin(adminRole))
	admin.Post("/clinical-import", h.Admin.ImportClinical)
	admin.Get("/research-export", vm.ValidateExportFormat(), h.Admin.ResearchExport)
	admin.Get("/export/:collection", vm.ValidateExportFormat(), h.Admin.ExportCollection)
	admin.Get("/user-stats", h.Admin.GetUserStats)
	admin.Get("/charts", h.Admin.GetCharts)
	admin.Delete("/users/:uid", h.Admin.DeleteUser)
	admin.Delete("/cases/:caseId", h.Admin.DeleteCase)
	admin.Delete("/papers/:paperId", h.Admin.DeletePaper)
}
