package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
)

// ProviderHandler bundles dependencies for provider endpoints.
type ProviderHandler struct {
	Providers *repository.ProviderRepo
}

func NewProviderHandler(p *repository.ProviderRepo) *ProviderHandler {
	return &ProviderHandler{Providers: p}
}

// ----- DTOs -----

type providerSummaryDTO struct {
	ID           uint64  `json:"id"`
	ProviderName string  `json:"provider_name"`
	ProviderType string  `json:"provider_type"`
	Specialty    *string `json:"specialty"`
}

type providerDetailDTO struct {
	ID            uint64    `json:"id"`
	ProviderName  string    `json:"provider_name"`
	ProviderType  string    `json:"provider_type"`
	Specialty     *string   `json:"specialty"`
	Phone         string    `json:"phone"`
	Email         *string   `json:"email"`
	OfficeAddress *string   `json:"office_address"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProviderDetailDTO(p *model.Provider) providerDetailDTO {
	return providerDetailDTO{
		ID:            p.ID,
		ProviderName:  p.ProviderName,
		ProviderType:  p.ProviderType,
		Specialty:     p.Specialty,
		Phone:         p.Phone,
		Email:         p.Email,
		OfficeAddress: p.OfficeAddress,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// List returns the caller's active providers, alphabetical by name, in a
// trimmed summary shape.
func (h *ProviderHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	providers, err := h.Providers.ListActiveByUser(ctx, currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]providerSummaryDTO, 0, len(providers))
	for _, p := range providers {
		out = append(out, providerSummaryDTO{
			ID:           p.ID,
			ProviderName: p.ProviderName,
			ProviderType: p.ProviderType,
			Specialty:    p.Specialty,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one provider in detail.
func (h *ProviderHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Providers.GetByIDAndUser(ctx, id, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProviderDetailDTO(p))
}

type createProviderReq struct {
	ProviderName  string  `json:"provider_name"`
	ProviderType  string  `json:"provider_type"`
	Specialty     *string `json:"specialty"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email"`
	OfficeAddress *string `json:"office_address"`
	Notes         *string `json:"notes"`
}

// Create adds a provider for the caller and returns it in detail.
func (h *ProviderHandler) Create(c echo.Context) error {
	var req createProviderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var fields []string
	if req.ProviderName == "" {
		fields = append(fields, "provider_name is required")
	}
	if !model.ValidProviderType(req.ProviderType) {
		fields = append(fields, "provider_type must be one of personal_doctor, walk_in_clinic, emergency_room, urgent_care, specialist")
	}
	if req.Phone == "" {
		fields = append(fields, "phone is required")
	}
	if req.Email != nil && !emailRx.MatchString(*req.Email) {
		fields = append(fields, "email must be a valid email address")
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.Provider{
		UserID:        currentUserID(c),
		ProviderName:  req.ProviderName,
		ProviderType:  req.ProviderType,
		Specialty:     req.Specialty,
		Phone:         req.Phone,
		Email:         req.Email,
		OfficeAddress: req.OfficeAddress,
		Notes:         req.Notes,
	}
	if err := h.Providers.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create provider failed"})
	}
	return c.JSON(http.StatusCreated, toProviderDetailDTO(p))
}

type updateProviderReq struct {
	ProviderName  *string `json:"provider_name"`
	ProviderType  *string `json:"provider_type"`
	Specialty     *string `json:"specialty"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	OfficeAddress *string `json:"office_address"`
	Notes         *string `json:"notes"`
}

// Update applies the fields present in the request and returns the updated
// provider.
func (h *ProviderHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
	}
	var req updateProviderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Providers.GetByIDAndUser(ctx, id, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var fields []string
	if req.ProviderName != nil {
		if *req.ProviderName == "" {
			fields = append(fields, "provider_name must not be empty")
		} else {
			p.ProviderName = *req.ProviderName
		}
	}
	if req.ProviderType != nil {
		if !model.ValidProviderType(*req.ProviderType) {
			fields = append(fields, "provider_type must be one of personal_doctor, walk_in_clinic, emergency_room, urgent_care, specialist")
		} else {
			p.ProviderType = *req.ProviderType
		}
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			fields = append(fields, "phone must not be empty")
		} else {
			p.Phone = *req.Phone
		}
	}
	if req.Email != nil && *req.Email != "" && !emailRx.MatchString(*req.Email) {
		fields = append(fields, "email must be a valid email address")
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}
	if req.Specialty != nil {
		p.Specialty = req.Specialty
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.OfficeAddress != nil {
		p.OfficeAddress = req.OfficeAddress
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if err := h.Providers.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toProviderDetailDTO(p))
}

// Delete soft-deletes a provider. Visits and medications referencing it
// keep their rows; their read views react to the deletion instead.
func (h *ProviderHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Providers.SoftDelete(ctx, id, currentUserID(c)); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return successMsg(c, http.StatusOK, "Provider deleted successfully")
}
