package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
	"github.com/healthlog/healthlog/internal/utils"
)

// MedicationHandler bundles dependencies for medication endpoints. The
// provider repo resolves prescribing-provider links and the visit repo
// validates the optional originating-visit link.
type MedicationHandler struct {
	Medications *repository.MedicationRepo
	Providers   *repository.ProviderRepo
	Visits      *repository.VisitRepo
}

func NewMedicationHandler(m *repository.MedicationRepo, p *repository.ProviderRepo, v *repository.VisitRepo) *MedicationHandler {
	return &MedicationHandler{Medications: m, Providers: p, Visits: v}
}

// ----- DTOs -----

type medicationListDTO struct {
	MedicationName        string  `json:"medication_name"`
	Dosage                string  `json:"dosage"`
	Frequency             string  `json:"frequency"`
	Status                string  `json:"status"`
	Instructions          *string `json:"instructions,omitempty"`
	PrescribingProviderID *uint64 `json:"prescribing_provider_id,omitempty"`
	ProviderName          *string `json:"provider_name,omitempty"`
	ProviderDeleted       bool    `json:"provider_deleted,omitempty"`
}

type medicationDetailDTO struct {
	MedicationName        string  `json:"medication_name"`
	Dosage                string  `json:"dosage"`
	Frequency             string  `json:"frequency"`
	ConditionsOrSymptoms  string  `json:"conditions_or_symptoms"`
	Status                string  `json:"status"`
	PrescribedDate        *string `json:"prescribed_date,omitempty"`
	Instructions          *string `json:"instructions,omitempty"`
	PrescribingProviderID *uint64 `json:"prescribing_provider_id,omitempty"`
	ProviderName          *string `json:"provider_name,omitempty"`
	ProviderType          *string `json:"provider_type,omitempty"`
	Specialty             *string `json:"specialty,omitempty"`
	ProviderDeleted       bool    `json:"provider_deleted,omitempty"`
}

// resolveLinkedProvider looks up a medication's prescribing provider,
// soft-deleted rows included. Links to another user's provider (possible
// only via historical data corruption) resolve to nothing rather than leak
// the row.
func (h *MedicationHandler) resolveLinkedProvider(c echo.Context, m *model.Medication) (*model.Provider, error) {
	if m.PrescribingProviderID == nil {
		return nil, nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Providers.GetAnyByID(ctx, *m.PrescribingProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if p.UserID != m.UserID {
		return nil, nil
	}
	return p, nil
}

func (h *MedicationHandler) toListDTO(c echo.Context, m *model.Medication) (medicationListDTO, error) {
	row := medicationListDTO{
		MedicationName: m.MedicationName,
		Dosage:         m.Dosage,
		Frequency:      m.Frequency,
		Status:         m.Status,
		Instructions:   m.Instructions,
	}
	p, err := h.resolveLinkedProvider(c, m)
	if err != nil {
		return row, err
	}
	if p != nil {
		row.PrescribingProviderID = &p.ID
		row.ProviderName = &p.ProviderName
		row.ProviderDeleted = p.SoftDeletedAt != nil
	}
	return row, nil
}

func (h *MedicationHandler) listResponse(c echo.Context, meds []*model.Medication) error {
	out := make([]medicationListDTO, 0, len(meds))
	for _, m := range meds {
		row, err := h.toListDTO(c, m)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, out)
}

// List returns all of the caller's active medications, newest first.
func (h *MedicationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	meds, err := h.Medications.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.listResponse(c, meds)
}

// ListActive returns medications currently being taken.
func (h *MedicationHandler) ListActive(c echo.Context) error {
	return h.listByStatus(c, model.MedicationTaking)
}

// ListDiscontinued returns medications no longer being taken.
func (h *MedicationHandler) ListDiscontinued(c echo.Context) error {
	return h.listByStatus(c, model.MedicationDiscontinued)
}

func (h *MedicationHandler) listByStatus(c echo.Context, status string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	meds, err := h.Medications.ListByUserAndStatus(ctx, currentUserID(c), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.listResponse(c, meds)
}

// Get returns one medication in detail, with provider fields resolved and
// annotated if the provider has since been deleted.
func (h *MedicationHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Medications.GetByIDAndUser(ctx, id, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := medicationDetailDTO{
		MedicationName:       m.MedicationName,
		Dosage:               m.Dosage,
		Frequency:            m.Frequency,
		ConditionsOrSymptoms: m.ConditionsOrSymptoms,
		Status:               m.Status,
		PrescribedDate:       utils.FormatDatePtr(m.PrescribedDate),
		Instructions:         m.Instructions,
	}
	p, err := h.resolveLinkedProvider(c, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p != nil {
		resp.PrescribingProviderID = &p.ID
		resp.ProviderName = &p.ProviderName
		resp.ProviderType = &p.ProviderType
		resp.Specialty = p.Specialty
		resp.ProviderDeleted = p.SoftDeletedAt != nil
	}
	return c.JSON(http.StatusOK, resp)
}

type createMedicationReq struct {
	PrescribingProviderID   *uint64 `json:"prescribing_provider_id"`
	PrescribedDuringVisitID *uint64 `json:"prescribed_during_visit_id"`
	MedicationName          string  `json:"medication_name"`
	Dosage                  string  `json:"dosage"`
	Frequency               string  `json:"frequency"`
	ConditionsOrSymptoms    string  `json:"conditions_or_symptoms"`
	PrescribedDate          *string `json:"prescribed_date"`
	Instructions            *string `json:"instructions"`
	Status                  string  `json:"status"`
}

// checkProviderLink verifies that a prescribing-provider id references an
// active provider owned by the caller. A deleted or foreign provider is
// reported as not found.
func (h *MedicationHandler) checkProviderLink(c echo.Context, providerID, userID uint64) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	_, err := h.Providers.GetByIDAndUser(ctx, providerID, userID)
	return err
}

func (h *MedicationHandler) checkVisitLink(c echo.Context, visitID, userID uint64) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	_, err := h.Visits.GetByIDAndUser(ctx, visitID, userID)
	return err
}

// Create records a new medication for the caller.
func (h *MedicationHandler) Create(c echo.Context) error {
	var req createMedicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var fields []string
	if req.MedicationName == "" {
		fields = append(fields, "medication_name is required")
	}
	if req.Dosage == "" {
		fields = append(fields, "dosage is required")
	}
	if req.Frequency == "" {
		fields = append(fields, "frequency is required")
	}
	if req.ConditionsOrSymptoms == "" {
		fields = append(fields, "conditions_or_symptoms is required")
	}
	if req.Status == "" {
		req.Status = model.MedicationTaking
	} else if !model.ValidMedicationStatus(req.Status) {
		fields = append(fields, "status must be either taking or discontinued")
	}
	var prescribed *time.Time
	if req.PrescribedDate != nil && *req.PrescribedDate != "" {
		d, err := utils.ParseDate(*req.PrescribedDate)
		if err != nil {
			fields = append(fields, "prescribed_date must be a valid date in YYYY-MM-DD format")
		} else {
			prescribed = &d
		}
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	userID := currentUserID(c)
	if req.PrescribingProviderID != nil {
		if err := h.checkProviderLink(c, *req.PrescribingProviderID, userID); err != nil {
			if errors.Is(err, repository.ErrProviderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found or you do not have access to it"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	if req.PrescribedDuringVisitID != nil {
		if err := h.checkVisitLink(c, *req.PrescribedDuringVisitID, userID); err != nil {
			if errors.Is(err, repository.ErrVisitNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := &model.Medication{
		UserID:                  userID,
		PrescribingProviderID:   req.PrescribingProviderID,
		PrescribedDuringVisitID: req.PrescribedDuringVisitID,
		MedicationName:          req.MedicationName,
		Dosage:                  req.Dosage,
		Frequency:               req.Frequency,
		ConditionsOrSymptoms:    req.ConditionsOrSymptoms,
		PrescribedDate:          prescribed,
		Instructions:            req.Instructions,
		Status:                  req.Status,
	}
	if err := h.Medications.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create medication failed"})
	}
	return successMsg(c, http.StatusCreated, "Medication added successfully")
}

type updateMedicationReq struct {
	PrescribingProviderID   *uint64 `json:"prescribing_provider_id"`
	PrescribedDuringVisitID *uint64 `json:"prescribed_during_visit_id"`
	MedicationName          *string `json:"medication_name"`
	Dosage                  *string `json:"dosage"`
	Frequency               *string `json:"frequency"`
	ConditionsOrSymptoms    *string `json:"conditions_or_symptoms"`
	PrescribedDate          *string `json:"prescribed_date"`
	Instructions            *string `json:"instructions"`
	Status                  *string `json:"status"`
}

// Update applies the fields present in the request. Provider and visit
// links are re-validated whenever they change.
func (h *MedicationHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
	}
	var req updateMedicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	userID := currentUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Medications.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.PrescribingProviderID != nil {
		if err := h.checkProviderLink(c, *req.PrescribingProviderID, userID); err != nil {
			if errors.Is(err, repository.ErrProviderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found or you do not have access to it"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		m.PrescribingProviderID = req.PrescribingProviderID
	}
	if req.PrescribedDuringVisitID != nil {
		if err := h.checkVisitLink(c, *req.PrescribedDuringVisitID, userID); err != nil {
			if errors.Is(err, repository.ErrVisitNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		m.PrescribedDuringVisitID = req.PrescribedDuringVisitID
	}

	var fields []string
	if req.MedicationName != nil {
		if *req.MedicationName == "" {
			fields = append(fields, "medication_name must not be empty")
		} else {
			m.MedicationName = *req.MedicationName
		}
	}
	if req.Dosage != nil {
		if *req.Dosage == "" {
			fields = append(fields, "dosage must not be empty")
		} else {
			m.Dosage = *req.Dosage
		}
	}
	if req.Frequency != nil {
		if *req.Frequency == "" {
			fields = append(fields, "frequency must not be empty")
		} else {
			m.Frequency = *req.Frequency
		}
	}
	if req.ConditionsOrSymptoms != nil {
		if *req.ConditionsOrSymptoms == "" {
			fields = append(fields, "conditions_or_symptoms must not be empty")
		} else {
			m.ConditionsOrSymptoms = *req.ConditionsOrSymptoms
		}
	}
	if req.PrescribedDate != nil {
		if *req.PrescribedDate == "" {
			m.PrescribedDate = nil
		} else {
			d, err := utils.ParseDate(*req.PrescribedDate)
			if err != nil {
				fields = append(fields, "prescribed_date must be a valid date in YYYY-MM-DD format")
			} else {
				m.PrescribedDate = &d
			}
		}
	}
	if req.Status != nil {
		if !model.ValidMedicationStatus(*req.Status) {
			fields = append(fields, "status must be either taking or discontinued")
		} else {
			m.Status = *req.Status
		}
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}
	if req.Instructions != nil {
		m.Instructions = req.Instructions
	}

	if err := h.Medications.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return successMsg(c, http.StatusOK, "Medication updated successfully")
}

// Delete soft-deletes a medication.
func (h *MedicationHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Medications.SoftDelete(ctx, id, currentUserID(c)); err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Medication not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return successMsg(c, http.StatusOK, "Medication deleted successfully")
}
