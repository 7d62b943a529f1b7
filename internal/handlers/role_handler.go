package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "gastos/internal/errors"
	"gastos/internal/services"
)

// RoleHandler exposes the roles. Reads are open to any caller, writes to admins.
type RoleHandler struct {
	roleService  services.RoleServicer
	auditService services.AuditServicer
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roleService services.RoleServicer, auditService services.AuditServicer) *RoleHandler {
	return &RoleHandler{roleService: roleService, auditService: auditService}
}

// UpdateRoleRequest represents a role update. Only the description is editable.
type UpdateRoleRequest struct {
	Description string `json:"description" binding:"max=500"`
}

// ListRoles returns all roles
// @Summary     List roles
// @Tags        roles
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  RoleResponse "Roles"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles()
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, newRoleResponse(&roles[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetRole returns one role
// @Summary     Get role by ID
// @Tags        roles
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Role ID"
// @Success     200 {object} RoleResponse "Role"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Role not found"
// @Router      /roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	roleID, err := parsePathID(c, "id", apperrors.ErrRoleNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	role, err := h.roleService.GetRoleByID(roleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRoleResponse(role))
}

// UpdateRole changes a role's description (admin only)
// @Summary     Update role
// @Tags        roles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Role ID"
// @Param       request body UpdateRoleRequest true "New description"
// @Success     200 {object} RoleResponse "Updated role"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Role not found"
// @Router      /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	roleID, err := parsePathID(c, "id", apperrors.ErrRoleNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	role, err := h.roleService.UpdateRoleDescription(roleID, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		UserID:    userID,
		Action:    services.ActionUpdateRole,
		IPAddress: c.ClientIP(),
		Resource:  services.RoleResource(role),
	})

	c.JSON(http.StatusOK, newRoleResponse(role))
}
