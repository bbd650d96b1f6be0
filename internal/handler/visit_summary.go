package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
)

// VisitSummaryHandler bundles dependencies for visit-summary endpoints.
// The mirror image of visit prep: records are gated on a COMPLETED parent
// visit instead of a scheduled one.
type VisitSummaryHandler struct {
	Summaries *repository.VisitSummaryRepo
	Visits    *repository.VisitRepo
}

func NewVisitSummaryHandler(s *repository.VisitSummaryRepo, v *repository.VisitRepo) *VisitSummaryHandler {
	return &VisitSummaryHandler{Summaries: s, Visits: v}
}

// visitSummaryDTO omits fields the record never had rather than rendering
// nulls; the client shows only the sections the user filled in.
type visitSummaryDTO struct {
	NewDiagnosis                *string `json:"new_diagnosis,omitempty"`
	FollowUpInstructions        *string `json:"follow_up_instructions,omitempty"`
	DoctorRecommendations       *string `json:"doctor_recommendations,omitempty"`
	PatientConcernsAddressed    *string `json:"patient_concerns_addressed,omitempty"`
	PatientConcernsNotAddressed *string `json:"patient_concerns_not_addressed,omitempty"`
	VisitSummaryNotes           string  `json:"visit_summary_notes"`
}

func (h *VisitSummaryHandler) ownedVisit(c echo.Context, visitID uint64) (*model.Visit, bool, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Visits.GetByIDAndUser(ctx, visitID, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return nil, false, c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
		}
		return nil, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return v, true, nil
}

// GetByVisit returns the summary record for a visit, or a null body when
// none exists yet.
func (h *VisitSummaryHandler) GetByVisit(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	if _, ok, err := h.ownedVisit(c, visitID); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Summaries.GetByVisitID(ctx, visitID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitSummaryNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, visitSummaryDTO{
		NewDiagnosis:                s.NewDiagnosis,
		FollowUpInstructions:        s.FollowUpInstructions,
		DoctorRecommendations:       s.DoctorRecommendations,
		PatientConcernsAddressed:    s.PatientConcernsAddressed,
		PatientConcernsNotAddressed: s.PatientConcernsNotAddressed,
		VisitSummaryNotes:           s.VisitSummaryNotes,
	})
}

type createVisitSummaryReq struct {
	VisitID                     uint64  `json:"visit_id"`
	NewDiagnosis                *string `json:"new_diagnosis"`
	FollowUpInstructions        *string `json:"follow_up_instructions"`
	DoctorRecommendations       *string `json:"doctor_recommendations"`
	PatientConcernsAddressed    *string `json:"patient_concerns_addressed"`
	PatientConcernsNotAddressed *string `json:"patient_concerns_not_addressed"`
	VisitSummaryNotes           string  `json:"visit_summary_notes"`
}

// Create adds a summary record to a completed visit. One active summary
// per visit.
func (h *VisitSummaryHandler) Create(c echo.Context) error {
	var req createVisitSummaryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.VisitID == 0 {
		return validationFail(c, "visit_id is required")
	}
	if req.VisitSummaryNotes == "" {
		return validationFail(c, "visit_summary_notes is required")
	}

	v, ok, err := h.ownedVisit(c, req.VisitID)
	if !ok {
		return err
	}
	if v.Status == model.VisitScheduled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot create visit summary for a scheduled visit. Visit must be completed first."})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Summaries.GetByVisitID(ctx, req.VisitID); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Visit summary already exists for this visit"})
	} else if !errors.Is(err, repository.ErrVisitSummaryNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	s := &model.VisitSummary{
		VisitID:                     req.VisitID,
		NewDiagnosis:                req.NewDiagnosis,
		FollowUpInstructions:        req.FollowUpInstructions,
		DoctorRecommendations:       req.DoctorRecommendations,
		PatientConcernsAddressed:    req.PatientConcernsAddressed,
		PatientConcernsNotAddressed: req.PatientConcernsNotAddressed,
		VisitSummaryNotes:           req.VisitSummaryNotes,
	}
	if err := h.Summaries.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create visit summary failed"})
	}
	return successMsg(c, http.StatusCreated, "Visit summary created successfully")
}

type updateVisitSummaryReq struct {
	NewDiagnosis                *string `json:"new_diagnosis"`
	FollowUpInstructions        *string `json:"follow_up_instructions"`
	DoctorRecommendations       *string `json:"doctor_recommendations"`
	PatientConcernsAddressed    *string `json:"patient_concerns_addressed"`
	PatientConcernsNotAddressed *string `json:"patient_concerns_not_addressed"`
	VisitSummaryNotes           *string `json:"visit_summary_notes"`
}

// Update applies the fields present in the request to a completed visit's
// summary record.
func (h *VisitSummaryHandler) Update(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	var req updateVisitSummaryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	v, ok, err := h.ownedVisit(c, visitID)
	if !ok {
		return err
	}
	if v.Status == model.VisitScheduled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot update visit summary for a scheduled visit. Visit must be completed first."})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Summaries.GetByVisitID(ctx, visitID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitSummaryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit summary not found for this visit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.NewDiagnosis != nil {
		s.NewDiagnosis = req.NewDiagnosis
	}
	if req.FollowUpInstructions != nil {
		s.FollowUpInstructions = req.FollowUpInstructions
	}
	if req.DoctorRecommendations != nil {
		s.DoctorRecommendations = req.DoctorRecommendations
	}
	if req.PatientConcernsAddressed != nil {
		s.PatientConcernsAddressed = req.PatientConcernsAddressed
	}
	if req.PatientConcernsNotAddressed != nil {
		s.PatientConcernsNotAddressed = req.PatientConcernsNotAddressed
	}
	if req.VisitSummaryNotes != nil {
		if *req.VisitSummaryNotes == "" {
			return validationFail(c, "visit_summary_notes must not be empty")
		}
		s.VisitSummaryNotes = *req.VisitSummaryNotes
	}

	if err := h.Summaries.Update(ctx, s); err != nil {
		if errors.Is(err, repository.ErrVisitSummaryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit summary not found for this visit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return successMsg(c, http.StatusOK, "Visit summary updated successfully")
}

// Delete soft-deletes a visit's summary record. No status gate here; a
// summary can be removed even if the visit record later changes.
func (h *VisitSummaryHandler) Delete(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	if _, ok, err := h.ownedVisit(c, visitID); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Summaries.SoftDeleteByVisitID(ctx, visitID); err != nil {
		if errors.Is(err, repository.ErrVisitSummaryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit summary not found for this visit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return successMsg(c, http.StatusOK, "Visit summary deleted successfully")
}
