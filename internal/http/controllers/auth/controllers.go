// Package auth holds the /api/account controllers.
package auth

import svc "github.com/dropDatabas3/rolbazli/internal/http/services/auth"

// Controllers groups the account controllers.
type Controllers struct {
	Login    *LoginController
	Register *RegisterController
	Profile  *ProfileController
}

// NewControllers builds the account controllers.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Login:    NewLoginController(s.Login),
		Register: NewRegisterController(s.Register),
		Profile:  NewProfileController(s.Profile),
	}
}
