package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/auth-service/internal/core/domain"
	"github.com/staffhub/auth-service/internal/core/ports"
)

type UserHandler struct {
	accounts ports.AccountReader
}

func NewUserHandler(accounts ports.AccountReader) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type userResponse struct {
	User *domain.PublicUser `json:"user"`
}

// Me returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.accounts.Me(c.Request().Context(), userID)
	if err != nil {
		// The token outlived its account.
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// GetByEmpID looks up an account by employee id.
//
// @Summary      Get user by empId
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        empId  path      string  true  "Employee id"
// @Success      200    {object}  userResponse
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /users/{empId} [get]
func (h *UserHandler) GetByEmpID(c echo.Context) error {
	user, err := h.accounts.LookupByEmpID(c.Request().Context(), c.Param("empId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}
