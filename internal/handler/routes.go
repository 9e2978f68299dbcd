package handler

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts every HTTP endpoint on app.
func RegisterRoutes(app *fiber.App, courses *CourseHandler, health *HealthHandler) {
	app.Get("/health", health.Health)

	api := app.Group("/api")
	courseGroup := api.Group("/courses")
	courseGroup.Post("/generate", courses.GenerateCourse)
	courseGroup.Post("/analyze-document", courses.AnalyzeDocument)
}
