package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthlog/healthlog/internal/config"
	"github.com/healthlog/healthlog/internal/model"
	"github.com/healthlog/healthlog/internal/repository"
	"github.com/healthlog/healthlog/internal/utils"
)

// UserHandler bundles dependencies for account and session endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Email              string  `json:"email"`
	Password           string  `json:"password"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	DateOfBirth        string  `json:"date_of_birth"`
	Phone              *string `json:"phone"`
	ExistingConditions *string `json:"existing_conditions"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID                 uint64  `json:"id"`
	Email              string  `json:"email"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	DateOfBirth        string  `json:"date_of_birth"`
	Phone              *string `json:"phone,omitempty"`
	ExistingConditions *string `json:"existing_conditions,omitempty"`
}

type authResp struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

func toUserDTO(u *model.User) userDTO {
	return userDTO{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		DateOfBirth:        utils.FormatDate(u.DateOfBirth),
		Phone:              u.Phone,
		ExistingConditions: u.ExistingConditions,
	}
}

// Register creates an account and returns it with a fresh token. Email
// uniqueness spans deactivated accounts as well; their addresses stay
// reserved forever.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var fields []string
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRx.MatchString(req.Email) {
		fields = append(fields, "email must be a valid email address")
	}
	if len(req.Password) < 8 {
		fields = append(fields, "password must be at least 8 characters")
	}
	if req.FirstName == "" || len(req.FirstName) > 100 {
		fields = append(fields, "first_name is required and must be at most 100 characters")
	}
	if req.LastName == "" || len(req.LastName) > 100 {
		fields = append(fields, "last_name is required and must be at most 100 characters")
	}
	dob, err := utils.ParseDate(req.DateOfBirth)
	if err != nil {
		fields = append(fields, "date_of_birth must be a valid date in YYYY-MM-DD format")
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := &model.User{
		Email:              req.Email,
		PasswordHash:       hash,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		DateOfBirth:        dob,
		Phone:              req.Phone,
		ExistingConditions: req.ExistingConditions,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.TokenTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, authResp{User: toUserDTO(u), Token: tok.Token})
}

// Login verifies credentials and returns the user with a fresh token.
// Checks run existence, then deactivation, then password; unknown email and
// wrong password share one message so accounts cannot be enumerated, while
// a deactivated account gets its own message even with a correct password.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return validationFail(c, "email and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.SoftDeletedAt != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "This account has been deactivated"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.TokenTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{User: toUserDTO(u), Token: tok.Token})
}

// GetProfile returns the caller's profile. Deactivated accounts get 401
// even with an otherwise valid token.
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetActiveByID(ctx, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "This account has been deactivated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserDTO(u))
}

type updateProfileReq struct {
	Email              *string `json:"email"`
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	DateOfBirth        *string `json:"date_of_birth"`
	Phone              *string `json:"phone"`
	ExistingConditions *string `json:"existing_conditions"`
}

// UpdateProfile applies the fields present in the request to the caller's
// account. Changing email fails with Conflict when ANY other row holds the
// address, deactivated accounts included.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetActiveByID(ctx, currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "This account has been deactivated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var fields []string
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRx.MatchString(email) {
			fields = append(fields, "email must be a valid email address")
		} else if email != u.Email {
			inUse, err := h.Users.EmailInUseByOther(ctx, email, u.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			if inUse {
				return c.JSON(http.StatusConflict, echo.Map{"error": "Email is already in use"})
			}
			u.Email = email
		}
	}
	if req.FirstName != nil {
		if *req.FirstName == "" || len(*req.FirstName) > 100 {
			fields = append(fields, "first_name must be 1-100 characters")
		} else {
			u.FirstName = *req.FirstName
		}
	}
	if req.LastName != nil {
		if *req.LastName == "" || len(*req.LastName) > 100 {
			fields = append(fields, "last_name must be 1-100 characters")
		} else {
			u.LastName = *req.LastName
		}
	}
	if req.DateOfBirth != nil {
		dob, err := utils.ParseDate(*req.DateOfBirth)
		if err != nil {
			fields = append(fields, "date_of_birth must be a valid date in YYYY-MM-DD format")
		} else {
			u.DateOfBirth = dob
		}
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.ExistingConditions != nil {
		u.ExistingConditions = req.ExistingConditions
	}
	if len(fields) > 0 {
		return validationFail(c, fields...)
	}

	if err := h.Users.UpdateProfile(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email is already in use"})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "This account has been deactivated"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, toUserDTO(u))
}

// Deactivate soft-deletes the caller's account. A repeat call reports
// success=false instead of failing; the guarded UPDATE in the repository
// keeps concurrent calls from double-firing.
func (h *UserHandler) Deactivate(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Users.Deactivate(ctx, currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "Account is already deactivated"})
	}
	return successMsg(c, http.StatusOK, "Account deactivated successfully")
}
