package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
	"github.com/healthlog/healthlog/internal/utils"
)

// SymptomHandler bundles dependencies for symptom endpoints.
type SymptomHandler struct {
	Symptoms *repository.SymptomRepo
}

func NewSymptomHandler(s *repository.SymptomRepo) *SymptomHandler {
	return &SymptomHandler{Symptoms: s}
}

// ----- DTOs -----

// symptomListDTO is the row shape for list views. Status is only present
// on the all-symptoms view; the status-filtered views omit it because it is
// implied by the route.
type symptomListDTO struct {
	SymptomName    string  `json:"symptom_name"`
	Severity       int     `json:"severity"`
	OnsetDate      string  `json:"onset_date"`
	EndDate        *string `json:"end_date"`
	LocationOnBody *string `json:"location_on_body"`
	Status         string  `json:"status,omitempty"`
}

type symptomDetailDTO struct {
	SymptomName        string  `json:"symptom_name"`
	Severity           int     `json:"severity"`
	OnsetDate          string  `json:"onset_date"`
	Description        *string `json:"description"`
	EndDate            *string `json:"end_date"`
	LocationOnBody     *string `json:"location_on_body"`
	Triggers           *string `json:"triggers"`
	RelatedCondition   *string `json:"related_condition"`
	RelatedMedications *string `json:"related_medications"`
	MedicationsTaken   *string `json:"medications_taken"`
	Status             string  `json:"status"`
}

func toSymptomListDTOs(symptoms []*model.Symptom, withStatus bool) []symptomListDTO {
	out := make([]symptomListDTO, 0, len(symptoms))
	for _, s := range symptoms {
		row := symptomListDTO{
			SymptomName:    s.SymptomName,
			Severity:       s.Severity,
			OnsetDate:      utils.FormatDate(s.OnsetDate),
			EndDate:        utils.FormatDatePtr(s.EndDate),
			LocationOnBody: s.LocationOnBody,
		}
		if withStatus {
			row.Status = s.Status
		}
		out = append(out, row)
	}
	return out
}

// List returns all of the caller's active symptoms, newest onset first.
func (h *SymptomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	symptoms, err := h.Symptoms.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toSymptomListDTOs(symptoms, true))
}

// ListActive returns symptoms with status "active".
func (h *SymptomHandler) ListActive(c echo.Context) error {
	return h.listByStatus(c, model.SymptomActive)
}

// ListResolved returns symptoms with status "resolved".
func (h *SymptomHandler) ListResolved(c echo.Context) error {
	return h.listByStatus(c, model.SymptomResolved)
}

func (h *SymptomHandler) listByStatus(c echo.Context, status string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	symptoms, err := h.Symptoms.ListByUserAndStatus(ctx, currentUserID(c), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toSymptomListDTOs(symptoms, false))
}

// Get returns one symptom in detail.
func (h *SymptomHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Symptoms.GetByIDAndUser(ctx, id, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrSymptomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, symptomDetailDTO{
		SymptomName:        s.SymptomName,
		Severity:           s.Severity,
		OnsetDate:          utils.FormatDate(s.OnsetDate),
		Description:        s.Description,
		EndDate:            utils.FormatDatePtr(s.EndDate),
		LocationOnBody:     s.LocationOnBody,
		Triggers:           s.Triggers,
		RelatedCondition:   s.RelatedCondition,
		RelatedMedications: s.RelatedMedications,
		MedicationsTaken:   s.MedicationsTaken,
		Status:             s.Status,
	})
}

type createSymptomReq struct {
	SymptomName        string  `json:"symptom_name"`
	Severity           int     `json:"severity"`
	OnsetDate          string  `json:"onset_date"`
	EndDate            *string `json:"end_date"`
	Description        *string `json:"description"`
	LocationOnBody     *string `json:"location_on_body"`
	Triggers           *string `json:"triggers"`
	RelatedCondition   *string `json:"related_condition"`
	RelatedMedications *string `json:"related_medications"`
	MedicationsTaken   *string `json:"medications_taken"`
	Status             string  `json:"status"`
}

// Create logs a new symptom for the caller.
func (h *SymptomHandler) Create(c echo.Context) error {
	var req createSymptomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var fields []string
	if req.SymptomName == "" {
		fields = append(fields, "symptom_name is required")
	}
	if req.Severity < model.SeverityMin || req.Severity > model.SeverityMax {
		fields = append(fields, fmt.Sprintf("severity must be between %d and %d", model.SeverityMin, model.SeverityMax))
	}
	onset, err := utils.ParseDate(req.OnsetDate)
	if err != nil {
		fields = append(fields, "onset_date must be a valid date in YYYY-MM-DD format")
	}
	if req.Status == "" {
		req.Status = model.SymptomActive
	} else if !model.ValidSymptomStatus(req.Status) {
		fields = append(fields, "status must be one of active, resolved, monitoring")
	}
	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		d, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			fields = append(fields, "end_date must be a valid date in YYYY-MM-DD format")
		} else {
			endDate = &d
		}
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s := &model.Symptom{
		UserID:             currentUserID(c),
		SymptomName:        req.SymptomName,
		Severity:           req.Severity,
		OnsetDate:          onset,
		EndDate:            endDate,
		Description:        req.Description,
		LocationOnBody:     req.LocationOnBody,
		Triggers:           req.Triggers,
		RelatedCondition:   req.RelatedCondition,
		RelatedMedications: req.RelatedMedications,
		MedicationsTaken:   req.MedicationsTaken,
		Status:             req.Status,
	}
	if err := h.Symptoms.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create symptom failed"})
	}
	return successMsg(c, http.StatusCreated, "Symptom added successfully")
}

type updateSymptomReq struct {
	SymptomName        *string `json:"symptom_name"`
	Severity           *int    `json:"severity"`
	OnsetDate          *string `json:"onset_date"`
	EndDate            *string `json:"end_date"`
	Description        *string `json:"description"`
	LocationOnBody     *string `json:"location_on_body"`
	Triggers           *string `json:"triggers"`
	RelatedCondition   *string `json:"related_condition"`
	RelatedMedications *string `json:"related_medications"`
	MedicationsTaken   *string `json:"medications_taken"`
	Status             *string `json:"status"`
}

// Update applies the fields present in the request. Severity bounds are
// enforced here just as on create.
func (h *SymptomHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
	}
	var req updateSymptomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Symptoms.GetByIDAndUser(ctx, id, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrSymptomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var fields []string
	if req.SymptomName != nil {
		if *req.SymptomName == "" {
			fields = append(fields, "symptom_name must not be empty")
		} else {
			s.SymptomName = *req.SymptomName
		}
	}
	if req.Severity != nil {
		if *req.Severity < model.SeverityMin || *req.Severity > model.SeverityMax {
			fields = append(fields, fmt.Sprintf("severity must be between %d and %d", model.SeverityMin, model.SeverityMax))
		} else {
			s.Severity = *req.Severity
		}
	}
	if req.OnsetDate != nil {
		d, err := utils.ParseDate(*req.OnsetDate)
		if err != nil {
			fields = append(fields, "onset_date must be a valid date in YYYY-MM-DD format")
		} else {
			s.OnsetDate = d
		}
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			s.EndDate = nil
		} else {
			d, err := utils.ParseDate(*req.EndDate)
			if err != nil {
				fields = append(fields, "end_date must be a valid date in YYYY-MM-DD format")
			} else {
				s.EndDate = &d
			}
		}
	}
	if req.Status != nil {
		if !model.ValidSymptomStatus(*req.Status) {
			fields = append(fields, "status must be one of active, resolved, monitoring")
		} else {
			s.Status = *req.Status
		}
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}
	if req.Description != nil {
		s.Description = req.Description
	}
	if req.LocationOnBody != nil {
		s.LocationOnBody = req.LocationOnBody
	}
	if req.Triggers != nil {
		s.Triggers = req.Triggers
	}
	if req.RelatedCondition != nil {
		s.RelatedCondition = req.RelatedCondition
	}
	if req.RelatedMedications != nil {
		s.RelatedMedications = req.RelatedMedications
	}
	if req.MedicationsTaken != nil {
		s.MedicationsTaken = req.MedicationsTaken
	}

	if err := h.Symptoms.Update(ctx, s); err != nil {
		if errors.Is(err, repository.ErrSymptomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return successMsg(c, http.StatusOK, "Symptom updated successfully")
}

// Delete soft-deletes a symptom.
func (h *SymptomHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Symptoms.SoftDelete(ctx, id, currentUserID(c)); err != nil {
		if errors.Is(err, repository.ErrSymptomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Symptom not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return successMsg(c, http.StatusOK, "Symptom deleted successfully")
}
