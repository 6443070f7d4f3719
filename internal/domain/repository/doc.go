// Package repository defines the credential store contracts.
//
// The identity core only talks to these interfaces. Adapters under
// internal/store/adapters implement them:
//
//	identity (roles, authenticator, access)
//	        │
//	        ▼
//	domain/repository  ── UserRepository, RoleRepository, MembershipRepository
//	        │
//	   ┌────┴─────┐
//	   ▼          ▼
//	  pg       memory
//
// Conventions:
//   - context.Context is always the first parameter
//   - a missing record is reported as ErrNotFound, never as (nil, nil)
//   - uniqueness violations are reported as ErrConflict
package repository
