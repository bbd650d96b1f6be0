package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/anthropic"
	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
	"github.com/healthlog/healthlog/internal/utils"
)

// AssistantHandler generates visit-preparation questions from the user's
// logged health data via the Anthropic messages API.
type AssistantHandler struct {
	AI          *anthropic.Client
	Visits      *repository.VisitRepo
	Providers   *repository.ProviderRepo
	Symptoms    *repository.SymptomRepo
	Medications *repository.MedicationRepo
}

func NewAssistantHandler(ai *anthropic.Client, v *repository.VisitRepo, p *repository.ProviderRepo,
	s *repository.SymptomRepo, m *repository.MedicationRepo) *AssistantHandler {
	return &AssistantHandler{AI: ai, Visits: v, Providers: p, Symptoms: s, Medications: m}
}

// GenerateVisitQuestions loads the visit with its provider plus ALL of the
// user's symptoms and medications (both statuses; discontinued medications
// still matter for interaction questions), assembles the prompt context,
// and calls the model once. Call and parse failures surface as 502 with
// the underlying message; there is no retry.
func (h *AssistantHandler) GenerateVisitQuestions(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid visit ID"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID := currentUserID(c)
	v, err := h.Visits.GetByIDAndUser(ctx, visitID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// The provider stays in the prompt even when soft-deleted; the visit
	// happened with them either way.
	var provider *model.Provider
	if p, err := h.Providers.GetAnyByID(ctx, v.ProviderID); err == nil {
		provider = p
	} else if !errors.Is(err, repository.ErrProviderNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	symptoms, err := h.Symptoms.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	medications, err := h.Medications.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	vc := anthropic.VisitContext{
		VisitDate:   utils.FormatDate(v.VisitDate),
		VisitTime:   "Not specified",
		VisitReason: v.VisitReason,
	}
	if v.VisitTime != nil {
		vc.VisitTime = *v.VisitTime
	}
	if provider != nil {
		vc.Provider = &anthropic.ProviderContext{
			Name:      provider.ProviderName,
			Type:      provider.ProviderType,
			Specialty: provider.Specialty,
		}
	}
	for _, s := range symptoms {
		vc.Symptoms = append(vc.Symptoms, anthropic.SymptomContext{
			Name:        s.SymptomName,
			Severity:    s.Severity,
			OnsetDate:   utils.FormatDate(s.OnsetDate),
			Status:      s.Status,
			Description: s.Description,
			Triggers:    s.Triggers,
		})
	}
	for _, m := range medications {
		vc.Medications = append(vc.Medications, anthropic.MedicationContext{
			Name:                 m.MedicationName,
			Dosage:               m.Dosage,
			Frequency:            m.Frequency,
			Status:               m.Status,
			ConditionsOrSymptoms: m.ConditionsOrSymptoms,
		})
	}

	// The model call gets the raw request context; the client carries its
	// own 30s timeout and must outlive the short DB deadline above.
	questions, err := h.AI.GenerateVisitQuestions(c.Request().Context(), vc)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"questions": questions,
		"metadata": echo.Map{
			"questionsGenerated": len(questions),
			"dataIncluded": echo.Map{
				"symptoms":    len(symptoms),
				"medications": len(medications),
				"hasProvider": provider != nil,
			},
		},
	})
}
