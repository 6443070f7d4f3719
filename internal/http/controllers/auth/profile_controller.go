package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	"github.com/dropDatabas3/rolbazli/internal/http/helpers"
	mw "github.com/dropDatabas3/rolbazli/internal/http/middlewares"
	svc "github.com/dropDatabas3/rolbazli/internal/http/services/auth"
)

// ProfileController handles the authenticated account reads.
type ProfileController struct {
	service svc.ProfileService
}

// NewProfileController builds a ProfileController.
func NewProfileController(service svc.ProfileService) *ProfileController {
	return &ProfileController{service: service}
}

// UserDetail handles GET /api/account/user-detail for the token subject.
func (c *ProfileController) UserDetail(w http.ResponseWriter, r *http.Request) {
	if !helpers.RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := mw.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	detail, err := c.service.UserDetail(r.Context(), userID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, detail)
}

// ListUsers handles GET /api/account/get-users.
func (c *ProfileController) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !helpers.RequireMethod(w, r, http.MethodGet) {
		return
	}

	users, err := c.service.ListUsers(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, users)
}
