// Package router wires HTTP routes to handlers. Public routes are the
// health check plus register and login; everything else sits behind the
// JWT middleware under /v1.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/handler"
	"github.com/healthlog/healthlog/internal/middleware"
)

// Handlers collects every handler the API exposes so registration stays a
// single call from main.
type Handlers struct {
	Users       *handler.UserHandler
	Providers   *handler.ProviderHandler
	Symptoms    *handler.SymptomHandler
	Medications *handler.MedicationHandler
	Visits      *handler.VisitHandler
	Preps       *handler.VisitPrepHandler
	Summaries   *handler.VisitSummaryHandler
	Assistant   *handler.AssistantHandler
}

// Register sets up all routes on the provided Echo instance. The limiter
// runs after JWTAuth on protected routes, so authenticated requests are
// counted per user; the public bootstrap routes have no user identity and
// are counted per IP.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Session bootstrap lives outside the JWT group.
	e.POST("/v1/users/register", h.Users.Register, limiter)
	e.POST("/v1/users/login", h.Users.Login, limiter)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret), limiter)

	auth.GET("/users/profile", h.Users.GetProfile)
	auth.PUT("/users/profile", h.Users.UpdateProfile)
	auth.POST("/users/deactivate", h.Users.Deactivate)

	auth.GET("/providers", h.Providers.List)
	auth.POST("/providers", h.Providers.Create)
	auth.GET("/providers/:id", h.Providers.Get)
	auth.PUT("/providers/:id", h.Providers.Update)
	auth.DELETE("/providers/:id", h.Providers.Delete)

	// Status-filtered views are registered before /:id so echo does not
	// treat "active" as an id.
	auth.GET("/symptoms", h.Symptoms.List)
	auth.GET("/symptoms/active", h.Symptoms.ListActive)
	auth.GET("/symptoms/resolved", h.Symptoms.ListResolved)
	auth.POST("/symptoms", h.Symptoms.Create)
	auth.GET("/symptoms/:id", h.Symptoms.Get)
	auth.PUT("/symptoms/:id", h.Symptoms.Update)
	auth.DELETE("/symptoms/:id", h.Symptoms.Delete)

	auth.GET("/medications", h.Medications.List)
	auth.GET("/medications/active", h.Medications.ListActive)
	auth.GET("/medications/discontinued", h.Medications.ListDiscontinued)
	auth.POST("/medications", h.Medications.Create)
	auth.GET("/medications/:id", h.Medications.Get)
	auth.PUT("/medications/:id", h.Medications.Update)
	auth.DELETE("/medications/:id", h.Medications.Delete)

	auth.GET("/visits", h.Visits.List)
	auth.GET("/visits/upcoming", h.Visits.ListUpcoming)
	auth.GET("/visits/completed", h.Visits.ListCompleted)
	auth.POST("/visits", h.Visits.Create)
	auth.GET("/visits/:id", h.Visits.Get)
	auth.PUT("/visits/:id", h.Visits.Update)
	auth.DELETE("/visits/:id", h.Visits.Delete)

	auth.GET("/visit-prep/visit/:visitId", h.Preps.GetByVisit)
	auth.GET("/visit-prep/conditions", h.Preps.GetConditions)
	auth.POST("/visit-prep", h.Preps.Create)
	auth.PUT("/visit-prep/visit/:visitId", h.Preps.Update)
	auth.DELETE("/visit-prep/visit/:visitId", h.Preps.Delete)

	auth.GET("/visit-summaries/:visitId", h.Summaries.GetByVisit)
	auth.POST("/visit-summaries", h.Summaries.Create)
	auth.PUT("/visit-summaries/:visitId", h.Summaries.Update)
	auth.DELETE("/visit-summaries/:visitId", h.Summaries.Delete)

	auth.POST("/anthropic/generate-visit-questions/:visitId", h.Assistant.GenerateVisitQuestions)
}
