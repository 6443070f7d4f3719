package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	"github.com/dropDatabas3/rolbazli/internal/http/helpers"
	svc "github.com/dropDatabas3/rolbazli/internal/http/services/admin"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

// RolesController handles /api/roles.
type RolesController struct {
	service svc.RolesService
}

// NewRolesController builds a RolesController.
func NewRolesController(service svc.RolesService) *RolesController {
	return &RolesController{service: service}
}

// Create handles POST /api/roles/create-role.
func (c *RolesController) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RolesController.Create"))

	var req dto.CreateRoleRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	created, err := c.service.Create(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	log.Info("role created", logger.RoleID(created.ID), logger.RoleName(created.Name))
	helpers.WriteJSON(w, http.StatusOK, created)
}

// List handles GET /api/roles/get-roles.
func (c *RolesController) List(w http.ResponseWriter, r *http.Request) {
	roles, err := c.service.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, roles)
}

// Update handles PUT /api/roles/{id}.
func (c *RolesController) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RolesController.Update"))

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var req dto.UpdateRoleRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	changed, err := c.service.Rename(r.Context(), id, req)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if !changed {
		helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Role name is the same, no update needed."})
		return
	}
	log.Info("role renamed", logger.RoleID(id), logger.RoleName(req.Name))
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Role updated successfully."})
}

// Delete handles DELETE /api/roles/{id}.
func (c *RolesController) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RolesController.Delete"))

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := c.service.Delete(r.Context(), id); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	log.Info("role deleted", logger.RoleID(id))
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Role deleted successfully."})
}

// Assign handles POST /api/roles/assign-role.
func (c *RolesController) Assign(w http.ResponseWriter, r *http.Request) {
	var req dto.MembershipRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Assign(r.Context(), req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Role assigned successfully."})
}

// Revoke handles POST /api/roles/revoke-role.
func (c *RolesController) Revoke(w http.ResponseWriter, r *http.Request) {
	var req dto.MembershipRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Revoke(r.Context(), req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Role revoked successfully."})
}
