package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	"github.com/dropDatabas3/rolbazli/internal/http/helpers"
	svc "github.com/dropDatabas3/rolbazli/internal/http/services/auth"
)

// RegisterController handles POST /api/account/register.
type RegisterController struct {
	service svc.RegisterService
}

// NewRegisterController builds a RegisterController.
func NewRegisterController(service svc.RegisterService) *RegisterController {
	return &RegisterController{service: service}
}

func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	if !helpers.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Register(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	resp := dto.AuthResponse{IsSuccess: true, Message: "Your account has been created."}
	if len(res.FailedRoles) > 0 {
		resp.Message = "Your account has been created, but some roles could not be assigned."
		resp.FailedRoles = res.FailedRoles
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
