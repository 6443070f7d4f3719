// Package identity is the credential and RBAC core: the role registry, the
// authenticator and the access controller. Token issuance lives in
// internal/jwt and is driven by the login service.
//
// Nothing here caches store records between calls and nothing holds a lock
// while waiting on the store; concurrent writers to the same (user, role)
// pair converge through the store's uniqueness constraint.
package identity
