package auth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/rolbazli/internal/domain/errs"
	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/rolbazli/internal/http/errors"
	"github.com/dropDatabas3/rolbazli/internal/http/helpers"
	svc "github.com/dropDatabas3/rolbazli/internal/http/services/auth"
	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

// LoginController handles POST /api/account/login.
type LoginController struct {
	service svc.LoginService
}

// NewLoginController builds a LoginController.
func NewLoginController(service svc.LoginService) *LoginController {
	return &LoginController{service: service}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	if !helpers.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Login(r.Context(), req)
	if err != nil {
		writeLoginError(w, err)
		return
	}

	log.Debug("token issued", logger.UserID(res.UserID))
	expires := res.ExpiresAt.UTC()
	helpers.WriteJSON(w, http.StatusOK, dto.AuthResponse{
		Token:     res.Token,
		IsSuccess: true,
		Message:   "Login successful.",
		ExpiresAt: &expires,
	})
}

// writeLoginError answers every credential failure with 401, including the
// unknown account case that also carries the not-found kind.
func writeLoginError(w http.ResponseWriter, err error) {
	if errors.Is(err, errs.ErrCredential) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials.WithMessage(err.Error()).WithCause(err))
		return
	}
	httperrors.WriteError(w, err)
}
