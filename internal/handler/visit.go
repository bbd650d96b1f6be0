package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/queue"
	"github.com/healthlog/healthlog/internal/repository"
	queue_publisher "github.com/healthlog/healthlog/internal/service"
	"github.com/healthlog/healthlog/internal/utils"
)

// VisitHandler bundles dependencies for visit endpoints. PublishEvents
// toggles the visit.completed broker event so tests can run without a
// broker.
type VisitHandler struct {
	Visits        *repository.VisitRepo
	Providers     *repository.ProviderRepo
	PublishEvents bool
}

func NewVisitHandler(v *repository.VisitRepo, p *repository.ProviderRepo, publishEvents bool) *VisitHandler {
	return &VisitHandler{Visits: v, Providers: p, PublishEvents: publishEvents}
}

// ----- DTOs -----

// visitListDTO is the row shape for list views. The upcoming and completed
// views omit status because it is implied by the route.
type visitListDTO struct {
	ProviderID   uint64  `json:"provider_id"`
	ProviderName string  `json:"provider_name"`
	ProviderType string  `json:"provider_type"`
	Specialty    *string `json:"specialty"`
	VisitDate    string  `json:"visit_date"`
	VisitTime    *string `json:"visit_time"`
	Status       string  `json:"status,omitempty"`
}

type visitDetailDTO struct {
	ProviderID    uint64  `json:"provider_id"`
	ProviderName  string  `json:"provider_name"`
	ProviderType  string  `json:"provider_type"`
	Specialty     *string `json:"specialty"`
	Phone         string  `json:"phone"`
	OfficeAddress *string `json:"office_address"`
	VisitDate     string  `json:"visit_date"`
	VisitTime     *string `json:"visit_time"`
	VisitReason   string  `json:"visit_reason"`
	Status        string  `json:"status"`
}

// listWithProviders joins each visit to its active provider. Visits whose
// provider has been soft-deleted are dropped from list views; the detail
// view reports them explicitly instead.
func (h *VisitHandler) listWithProviders(c echo.Context, visits []*model.Visit, withStatus bool) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	out := make([]visitListDTO, 0, len(visits))
	for _, v := range visits {
		p, err := h.Providers.GetByIDAndUser(ctx, v.ProviderID, v.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrProviderNotFound) {
				continue
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		row := visitListDTO{
			ProviderID:   p.ID,
			ProviderName: p.ProviderName,
			ProviderType: p.ProviderType,
			Specialty:    p.Specialty,
			VisitDate:    utils.FormatDate(v.VisitDate),
			VisitTime:    v.VisitTime,
		}
		if withStatus {
			row.Status = v.Status
		}
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, out)
}

// List returns all of the caller's active visits, most recent date first.
func (h *VisitHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	visits, err := h.Visits.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.listWithProviders(c, visits, true)
}

// ListUpcoming returns scheduled visits, soonest first.
func (h *VisitHandler) ListUpcoming(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	visits, err := h.Visits.ListByUserAndStatus(ctx, currentUserID(c), model.VisitScheduled, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.listWithProviders(c, visits, false)
}

// ListCompleted returns completed visits, most recent first.
func (h *VisitHandler) ListCompleted(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	visits, err := h.Visits.ListByUserAndStatus(ctx, currentUserID(c), model.VisitCompleted, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.listWithProviders(c, visits, false)
}

// Get returns one visit in detail. A visit whose provider has been deleted
// is unusable and reported as such.
func (h *VisitHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID := currentUserID(c)
	v, err := h.Visits.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	p, err := h.Providers.GetByIDAndUser(ctx, v.ProviderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider for this visit is no longer available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, visitDetailDTO{
		ProviderID:    p.ID,
		ProviderName:  p.ProviderName,
		ProviderType:  p.ProviderType,
		Specialty:     p.Specialty,
		Phone:         p.Phone,
		OfficeAddress: p.OfficeAddress,
		VisitDate:     utils.FormatDate(v.VisitDate),
		VisitTime:     v.VisitTime,
		VisitReason:   v.VisitReason,
		Status:        v.Status,
	})
}

type scheduleVisitReq struct {
	ProviderID  uint64  `json:"provider_id"`
	VisitDate   string  `json:"visit_date"`
	VisitTime   *string `json:"visit_time"`
	VisitReason string  `json:"visit_reason"`
}

// Create schedules a visit with one of the caller's active providers.
func (h *VisitHandler) Create(c echo.Context) error {
	var req scheduleVisitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var fields []string
	if req.ProviderID == 0 {
		fields = append(fields, "provider_id is required")
	}
	date, err := utils.ParseDate(req.VisitDate)
	if err != nil {
		fields = append(fields, "visit_date must be a valid date in YYYY-MM-DD format")
	}
	if req.VisitTime != nil && !timeRx.MatchString(*req.VisitTime) {
		fields = append(fields, "visit_time must be in HH:MM:SS format")
	}
	if req.VisitReason == "" {
		fields = append(fields, "visit_reason is required")
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID := currentUserID(c)
	if _, err := h.Providers.GetByIDAndUser(ctx, req.ProviderID, userID); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	v := &model.Visit{
		UserID:      userID,
		ProviderID:  req.ProviderID,
		VisitDate:   date,
		VisitTime:   req.VisitTime,
		VisitReason: req.VisitReason,
		Status:      model.VisitScheduled,
	}
	if err := h.Visits.Create(ctx, v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create visit failed"})
	}
	return successMsg(c, http.StatusCreated, "Visit scheduled successfully")
}

type updateVisitReq struct {
	VisitDate   *string `json:"visit_date"`
	VisitTime   *string `json:"visit_time"`
	VisitReason *string `json:"visit_reason"`
	Status      *string `json:"status"`
}

// Update applies the fields present in the request. The status transition
// is one-way: completed never goes back to scheduled. Completing a visit
// fires a best-effort broker event.
func (h *VisitHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}
	var req updateVisitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID := currentUserID(c)
	v, err := h.Visits.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var fields []string
	completing := false
	if req.Status != nil {
		if !model.ValidVisitStatus(*req.Status) {
			fields = append(fields, "status must be either scheduled or completed")
		} else if v.Status == model.VisitCompleted && *req.Status == model.VisitScheduled {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot change a completed visit back to scheduled"})
		} else {
			completing = v.Status == model.VisitScheduled && *req.Status == model.VisitCompleted
			v.Status = *req.Status
		}
	}
	if req.VisitDate != nil {
		d, err := utils.ParseDate(*req.VisitDate)
		if err != nil {
			fields = append(fields, "visit_date must be a valid date in YYYY-MM-DD format")
		} else {
			v.VisitDate = d
		}
	}
	if req.VisitTime != nil {
		if *req.VisitTime == "" {
			v.VisitTime = nil
		} else if !timeRx.MatchString(*req.VisitTime) {
			fields = append(fields, "visit_time must be in HH:MM:SS format")
		} else {
			v.VisitTime = req.VisitTime
		}
	}
	if req.VisitReason != nil {
		if *req.VisitReason == "" {
			fields = append(fields, "visit_reason must not be empty")
		} else {
			v.VisitReason = *req.VisitReason
		}
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	if err := h.Visits.Update(ctx, v); err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if completing && h.PublishEvents {
		h.publishCompleted(ctx, v)
	}
	return successMsg(c, http.StatusOK, "Visit updated successfully")
}

// publishCompleted fires the visit.completed event. Failures are already
// logged by the publisher and never surface to the request.
func (h *VisitHandler) publishCompleted(ctx context.Context, v *model.Visit) {
	providerName := ""
	if p, err := h.Providers.GetAnyByID(ctx, v.ProviderID); err == nil {
		providerName = p.ProviderName
	}
	_ = queue_publisher.PublishVisitCompleted(ctx, queue.VisitCompletedEvent{
		VisitID:      v.ID,
		UserID:       v.UserID,
		ProviderID:   v.ProviderID,
		ProviderName: providerName,
		VisitDate:    utils.FormatDate(v.VisitDate),
		VisitReason:  v.VisitReason,
		CompletedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

// Delete soft-deletes a visit.
func (h *VisitHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Visits.SoftDelete(ctx, id, currentUserID(c)); err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Visit not found or you do not have access to it"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return successMsg(c, http.StatusOK, "Visit removed successfully")
}
