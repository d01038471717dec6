package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/provaboard/prova-api/internal/config"
	"github.com/provaboard/prova-api/internal/handler"
	"github.com/provaboard/prova-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExamHandler         *handler.ExamHandler
	SectionHandler      *handler.SectionHandler
	QuestionHandler     *handler.QuestionHandler
	InvitationHandler   *handler.InvitationHandler
	SuggestionHandler   *handler.SuggestionHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	api.Get("/user/profile", jwtMiddleware, handler.Profile())

	if deps.ExamHandler != nil {
		examGroup := api.Group("/exam", jwtMiddleware)
		deps.ExamHandler.Register(examGroup)

		if deps.InvitationHandler != nil {
			deps.InvitationHandler.RegisterExamRoutes(examGroup)
		}
	}

	if deps.InvitationHandler != nil {
		invitationGroup := api.Group("/examInvitation", jwtMiddleware)
		deps.InvitationHandler.RegisterInvitationRoutes(invitationGroup)

		sheetGroup := api.Group("/answer-sheet", jwtMiddleware)
		deps.InvitationHandler.RegisterAnswerSheetRoutes(sheetGroup)
	}

	if deps.SectionHandler != nil {
		sectionGroup := api.Group("/section", jwtMiddleware)
		deps.SectionHandler.Register(sectionGroup)
	}

	if deps.QuestionHandler != nil {
		questionGroup := api.Group("/question", jwtMiddleware)
		deps.QuestionHandler.Register(questionGroup)
	}

	if deps.SuggestionHandler != nil {
		suggestionGroup := api.Group("/suggestion", jwtMiddleware)
		deps.SuggestionHandler.Register(suggestionGroup)
	}

	if deps.NotificationHandler != nil {
		notificationGroup := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notificationGroup)
	}
}
