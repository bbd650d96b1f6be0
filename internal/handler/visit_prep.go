package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
)

// VisitPrepHandler bundles dependencies for visit-preparation endpoints.
// Every operation first resolves the parent visit under the caller's
// ownership; prep records themselves carry no user id.
type VisitPrepHandler struct {
	Preps  *repository.VisitPrepRepo
	Visits *repository.VisitRepo
	Users  *repository.UserRepo
}

func NewVisitPrepHandler(p *repository.VisitPrepRepo, v *repository.VisitRepo, u *repository.UserRepo) *VisitPrepHandler {
	return &VisitPrepHandler{Preps: p, Visits: v, Users: u}
}

type visitPrepDTO struct {
	QuestionsToAsk       *string `json:"questions_to_ask"`
	SymptomsToDiscuss    *string `json:"symptoms_to_discuss"`
	ConditionsToDiscuss  *string `json:"conditions_to_discuss"`
	MedicationsToDiscuss *string `json:"medications_to_discuss"`
	GoalsForVisit        *string `json:"goals_for_visit"`
	PrepSummaryNotes     string  `json:"prep_summary_notes"`
}

// ownedVisit resolves the visit under the caller's ownership, writing the
// error response itself when the lookup fails.
func (h *VisitPrepHandler) ownedVisit(c echo.Context, visitID uint64) (*model.Visit, bool, error) {
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

// GetByVisit returns the prep record for a visit, or a null body when none
// exists yet; the client treats null as "not prepared".
func (h *VisitPrepHandler) GetByVisit(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	if _, ok, err := h.ownedVisit(c, visitID); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Preps.GetByVisitID(ctx, visitID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitPrepNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, visitPrepDTO{
		QuestionsToAsk:       p.QuestionsToAsk,
		SymptomsToDiscuss:    p.SymptomsToDiscuss,
		ConditionsToDiscuss:  p.ConditionsToDiscuss,
		MedicationsToDiscuss: p.MedicationsToDiscuss,
		GoalsForVisit:        p.GoalsForVisit,
		PrepSummaryNotes:     p.PrepSummaryNotes,
	})
}

// GetConditions parses the caller's existing_conditions field into a list
// for the prep form. Splits on commas, trims whitespace, drops empties.
func (h *VisitPrepHandler) GetConditions(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetActiveByID(ctx, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if u.ExistingConditions == nil || strings.TrimSpace(*u.ExistingConditions) == "" {
		return c.JSON(http.StatusOK, echo.Map{"has_conditions": false})
	}

	var conditions []string
	for _, part := range strings.Split(*u.ExistingConditions, ",") {
		if part = strings.TrimSpace(part); part != "" {
			conditions = append(conditions, part)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"has_conditions": true, "conditions": conditions})
}

type createVisitPrepReq struct {
	VisitID              uint64  `json:"visit_id"`
	QuestionsToAsk       *string `json:"questions_to_ask"`
	SymptomsToDiscuss    *string `json:"symptoms_to_discuss"`
	ConditionsToDiscuss  *string `json:"conditions_to_discuss"`
	MedicationsToDiscuss *string `json:"medications_to_discuss"`
	GoalsForVisit        *string `json:"goals_for_visit"`
	PrepSummaryNotes     string  `json:"prep_summary_notes"`
}

// Create adds a prep record to a scheduled visit. One active prep per
// visit; a completed visit can no longer be prepared for.
func (h *VisitPrepHandler) Create(c echo.Context) error {
	var req createVisitPrepReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.VisitID == 0 {
		return validationFail(c, "visit_id is required")
	}
	if req.PrepSummaryNotes == "" {
		return validationFail(c, "prep_summary_notes is required")
	}

	v, ok, err := h.ownedVisit(c, req.VisitID)
	if !ok {
		return err
	}
	if v.Status == model.VisitCompleted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot create visit preparation for a completed visit"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Preps.GetByVisitID(ctx, req.VisitID); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Visit preparation already exists for this visit"})
	} else if !errors.Is(err, repository.ErrVisitPrepNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	p := &model.VisitPrep{
		VisitID:              req.VisitID,
		QuestionsToAsk:       req.QuestionsToAsk,
		SymptomsToDiscuss:    req.SymptomsToDiscuss,
		ConditionsToDiscuss:  req.ConditionsToDiscuss,
		MedicationsToDiscuss: req.MedicationsToDiscuss,
		GoalsForVisit:        req.GoalsForVisit,
		PrepSummaryNotes:     req.PrepSummaryNotes,
	}
	if err := h.Preps.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create visit prep failed"})
	}
	return successMsg(c, http.StatusCreated, "Visit preparation created successfully")
}

type updateVisitPrepReq struct {
	QuestionsToAsk       *string `json:"questions_to_ask"`
	SymptomsToDiscuss    *string `json:"symptoms_to_discuss"`
	ConditionsToDiscuss  *string `json:"conditions_to_discuss"`
	MedicationsToDiscuss *string `json:"medications_to_discuss"`
	GoalsForVisit        *string `json:"goals_for_visit"`
	PrepSummaryNotes     *string `json:"prep_summary_notes"`
}

// Update applies the fields present in the request to a scheduled visit's
// prep record.
func (h *VisitPrepHandler) Update(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	var req updateVisitPrepReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	v, ok, err := h.ownedVisit(c, visitID)
	if !ok {
		return err
	}
	if v.Status == model.VisitCompleted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot update visit preparation for a completed visit"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Preps.GetByVisitID(ctx, visitID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitPrepNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit preparation not found for this visit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.QuestionsToAsk != nil {
		p.QuestionsToAsk = req.QuestionsToAsk
	}
	if req.SymptomsToDiscuss != nil {
		p.SymptomsToDiscuss = req.SymptomsToDiscuss
	}
	if req.ConditionsToDiscuss != nil {
		p.ConditionsToDiscuss = req.ConditionsToDiscuss
	}
	if req.MedicationsToDiscuss != nil {
		p.MedicationsToDiscuss = req.MedicationsToDiscuss
	}
	if req.GoalsForVisit != nil {
		p.GoalsForVisit = req.GoalsForVisit
	}
	if req.PrepSummaryNotes != nil {
		if *req.PrepSummaryNotes == "" {
			return validationFail(c, "prep_summary_notes must not be empty")
		}
		p.PrepSummaryNotes = *req.PrepSummaryNotes
	}

	if err := h.Preps.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrVisitPrepNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit preparation not found for this visit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return successMsg(c, http.StatusOK, "Visit preparation updated successfully")
}

// Delete soft-deletes a visit's prep record.
func (h *VisitPrepHandler) Delete(c echo.Context) error {
	visitID, ok := parseID(c.Param("visitId"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	if _, ok, err := h.ownedVisit(c, visitID); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Preps.SoftDeleteByVisitID(ctx, visitID); err != nil {
		if errors.Is(err, repository.ErrVisitPrepNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit preparation not found for this visit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return successMsg(c, http.StatusOK, "Visit preparation deleted successfully")
}
