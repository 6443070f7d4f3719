// Package auth holds the services behind /api/account.
package auth

import (
	"context"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	dto "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
	"github.com/dropDatabas3/rolbazli/internal/identity"
	jwtx "github.com/dropDatabas3/rolbazli/internal/jwt"
)

// TokenIssuer signs access tokens. *jwt.Issuer implements it.
type TokenIssuer interface {
	IssueToken(user repository.User, roles []string) (jwtx.Token, error)
}

// LoginService authenticates and signs a token.
type LoginService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error)
}

// RegisterService creates accounts.
type RegisterService interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error)
}

// ProfileService reads accounts.
type ProfileService interface {
	UserDetail(ctx context.Context, userID string) (*dto.UserDetail, error)
	ListUsers(ctx context.Context) ([]dto.UserItem, error)
}

// Deps holds the dependencies of the account services.
type Deps struct {
	Authenticator identity.Authenticator
	Access        identity.AccessController
	Issuer        TokenIssuer
	// UnifyLoginErrors answers unknown account and bad password with the
	// same error.
	UnifyLoginErrors bool
}

// Services groups the account services.
type Services struct {
	Login    LoginService
	Register RegisterService
	Profile  ProfileService
}

// NewServices builds the account services.
func NewServices(d Deps) Services {
	return Services{
		Login:    NewLoginService(d),
		Register: NewRegisterService(d),
		Profile:  NewProfileService(d),
	}
}
