package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
)

// MembershipQueue accepts membership changes for asynchronous processing.
type MembershipQueue interface {
	EnqueueBatch(ctx context.Context, changes []ports.MembershipChange) error
}

// RoleHandler serves role administration and membership routes.
type RoleHandler struct {
	service ports.RoleService
	queue   MembershipQueue
}

func NewRoleHandler(service ports.RoleService, queue MembershipQueue) *RoleHandler {
	return &RoleHandler{service: service, queue: queue}
}

// Create handles POST /api/roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleRequest  true  "Role name"
// @Success      201   {object}  domain.Role
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.service.CreateRole(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// Get handles GET /api/roles/:name.
//
// @Summary      Get a role by name
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Role name (any casing)"
// @Success      200   {object}  domain.Role
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{name} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.service.GetRole(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Rename handles PUT /api/roles/id/:id.
//
// @Summary      Rename a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Role ID"
// @Param        body  body      roleRequest  true  "New name"
// @Success      200   {object}  domain.Role
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles/id/{id} [put]
func (h *RoleHandler) Rename(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.service.RenameRole(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Delete handles DELETE /api/roles/id/:id. Users keep the role name.
//
// @Summary      Delete a role
// @Tags         roles
// @Security     BearerAuth
// @Param        id  path  string  true  "Role ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/id/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Users handles GET /api/roles/:name/users.
//
// @Summary      List users holding a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Role name as stored on users"
// @Success      200   {object}  usersResponse
// @Router       /api/roles/{name}/users [get]
func (h *RoleHandler) Users(c echo.Context) error {
	users, err := h.service.UsersInRole(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, usersResponse{Items: users, Total: len(users)})
}

// Members handles POST /api/roles/:name/members. Changes are queued and
// applied in order per user.
//
// @Summary      Queue bulk membership changes
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string          true  "Role name"
// @Param        body  body      membersRequest  true  "Users and operation"
// @Success      202   {object}  membersResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{name}/members [post]
func (h *RoleHandler) Members(c echo.Context) error {
	var req membersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	op := ports.MembershipOp(req.Op)

	var roleName string
	if op == ports.MembershipAdd {
		role, err := h.service.GetRole(ctx, c.Param("name"))
		if err != nil {
			return err
		}
		roleName = role.Name
	} else {
		name, err := h.service.MembershipName(ctx, c.Param("name"))
		if err != nil {
			return err
		}
		roleName = name
	}

	changes := make([]ports.MembershipChange, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		changes = append(changes, ports.MembershipChange{UserID: id, RoleName: roleName, Op: op})
	}
	if err := h.queue.EnqueueBatch(ctx, changes); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, membersResponse{Queued: len(changes)})
}

// AddUser handles PUT /api/users/:id/roles/:name.
//
// @Summary      Add a user to a role
// @Tags         roles
// @Security     BearerAuth
// @Param        id    path  string  true  "User ID"
// @Param        name  path  string  true  "Role name"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id}/roles/{name} [put]
func (h *RoleHandler) AddUser(c echo.Context) error {
	if err := h.service.AddUserToRole(c.Request().Context(), c.Param("id"), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveUser handles DELETE /api/users/:id/roles/:name.
//
// @Summary      Remove a user from a role
// @Tags         roles
// @Security     BearerAuth
// @Param        id    path  string  true  "User ID"
// @Param        name  path  string  true  "Role name"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id}/roles/{name} [delete]
func (h *RoleHandler) RemoveUser(c echo.Context) error {
	if err := h.service.RemoveUserFromRole(c.Request().Context(), c.Param("id"), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
