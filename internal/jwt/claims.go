package jwt

import (
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
)

// Claims is the payload of an access token.
//
// Roles are a snapshot taken at issuance; later membership changes are not
// reflected until a new token is issued.
type Claims struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	NameID string   `json:"nameid"`
	Roles  []string `json:"role"`
	jwtv5.RegisteredClaims
}

// HasRole reports whether the snapshot contains role (exact match).
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// BuildClaims assembles the claim set for user and roles. It performs no I/O
// and does not touch the clock; IssueToken fills the time fields.
func BuildClaims(user repository.User, roles []string, issuer, audience string) Claims {
	rs := make([]string, len(roles))
	copy(rs, roles)
	return Claims{
		Email:  user.Email,
		Name:   user.Name,
		NameID: user.ID,
		Roles:  rs,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:  user.ID,
			Issuer:   issuer,
			Audience: jwtv5.ClaimStrings{audience},
		},
	}
}
