package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/useradmin/internal/api/metrics"
	"github.com/sirpyerre/useradmin/internal/api/middleware"
	"github.com/sirpyerre/useradmin/internal/core/domain"
	"github.com/sirpyerre/useradmin/internal/core/ports"
)

const (
	usersPath = "/admin/users"

	// HeaderDeleteToken may carry the anti-forgery token instead of the body.
	HeaderDeleteToken = "X-Delete-Token"
)

// UserHandler serves the administration endpoints for regular users. Errors
// are returned to the echo error handler, which maps them to status codes.
// Successful writes are logged with the acting admin taken from the token.
type UserHandler struct {
	service ports.UserService
	log     zerolog.Logger
}

func NewUserHandler(service ports.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

// List handles GET /admin/users.
//
// @Summary      List regular users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return c.JSON(http.StatusOK, listUsersResponse{Data: views, Total: len(views)})
}

// Create handles POST /admin/users. The new account is always a regular user.
//
// @Summary      Create a regular user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User fields"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in, err := ports.NewCreateUserInput(req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.Inc()
	h.audit(c, "create", user.ID)
	c.Response().Header().Set(echo.HeaderLocation, usersPath+"/"+user.ID)
	return c.JSON(http.StatusCreated, userResponse{User: toUserView(user)})
}

// Get handles GET /admin/users/:id.
//
// @Summary      Load a regular user for editing
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return observeGuard(err, "view")
	}
	return c.JSON(http.StatusOK, userResponse{User: toUserView(user)})
}

// Update handles PUT /admin/users/:id.
//
// @Summary      Edit a regular user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to overwrite; omit password to keep it"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /admin/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in, err := ports.NewUpdateUserInput(c.Param("id"), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return observeGuard(err, "edit")
	}

	metrics.UsersUpdatedTotal.Inc()
	h.audit(c, "update", user.ID)
	return c.JSON(http.StatusOK, userResponse{User: toUserView(user)})
}

// DeleteToken handles GET /admin/users/:id/delete-token.
//
// @Summary      Issue the anti-forgery token for deleting a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  deleteTokenResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /admin/users/{id}/delete-token [get]
func (h *UserHandler) DeleteToken(c echo.Context) error {
	id := c.Param("id")
	token, err := h.service.IssueDeleteToken(c.Request().Context(), id)
	if err != nil {
		return observeGuard(err, "delete")
	}
	return c.JSON(http.StatusOK, deleteTokenResponse{
		Token:     token,
		DeleteURL: usersPath + "/" + id + "/delete",
	})
}

// Delete handles POST /admin/users/:id/delete. On success and on a token
// mismatch alike the client is redirected to the list.
//
// @Summary      Delete a regular user
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Security     BearerAuth
// @Param        id     path      string  true   "User ID"
// @Param        _token formData  string  false  "Anti-forgery token"
// @Success      303
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /admin/users/{id}/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" {
		req.Token = c.Request().Header.Get(HeaderDeleteToken)
	}

	deleted, err := h.service.Delete(c.Request().Context(), ports.DeleteUserInput{
		ID:    c.Param("id"),
		Token: req.Token,
	})
	if err != nil {
		return observeGuard(err, "delete")
	}

	if deleted {
		metrics.UsersDeletedTotal.WithLabelValues("deleted").Inc()
		h.audit(c, "delete", c.Param("id"))
	} else {
		metrics.UsersDeletedTotal.WithLabelValues("token_mismatch").Inc()
	}
	return c.Redirect(http.StatusSeeOther, usersPath)
}

// audit records who performed a write. The actor claims are set by
// middleware.Auth.
func (h *UserHandler) audit(c echo.Context, action, targetID string) {
	actorID, _ := c.Get(middleware.CtxUserID).(string)
	actor, _ := c.Get(middleware.CtxUsername).(string)
	h.log.Info().
		Str("action", action).
		Str("user_id", targetID).
		Str("actor_id", actorID).
		Str("actor", actor).
		Msg("user administration")
}

// observeGuard counts refusals caused by the admin guard and passes err on.
func observeGuard(err error, action string) error {
	if errors.Is(err, domain.ErrForbidden) {
		metrics.AdminGuardDeniedTotal.WithLabelValues(action).Inc()
	}
	return err
}
