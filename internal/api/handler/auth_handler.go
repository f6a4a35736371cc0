package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/staffhub/auth-service/internal/api/metrics"
	"github.com/staffhub/auth-service/internal/core/domain"
	"github.com/staffhub/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

func (r *signupRequest) validationError(ve validator.ValidationErrors) error {
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return domain.NewValidationError(domain.MsgSignupFieldsRequired)
		}
	}
	return domain.CheckPassword(r.Password)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (r *loginRequest) validationError(validator.ValidationErrors) error {
	return domain.NewValidationError(domain.MsgCredentialsRequired)
}

// Signup creates an employee account and logs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  ports.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues(outcome(err)).Inc()
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), req.Name, req.UserID, req.Password)
	metrics.SignupsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, res)
}

// Login authenticates by empId, clientId or email and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(outcome(err)).Inc()
		return err
	}

	res, err := h.authService.Authenticate(c.Request().Context(), req.Identifier, req.Password)
	metrics.LoginAttemptsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func outcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &ve):
		return metrics.OutcomeValidation
	case errors.Is(err, domain.ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, domain.ErrAccountInactive):
		return metrics.OutcomeInactive
	case errors.Is(err, domain.ErrDuplicateAccount):
		return metrics.OutcomeDuplicate
	default:
		return metrics.OutcomeError
	}
}
