// Package admin holds the request/response bodies of /api/roles.
package admin

// CreateRoleRequest is the body of POST /api/roles/create-role.
type CreateRoleRequest struct {
	RoleName string `json:"roleName"`
}

// UpdateRoleRequest is the body of PUT /api/roles/{id}.
type UpdateRoleRequest struct {
	Name string `json:"name"`
}

// MembershipRequest is the body of assign-role and revoke-role.
type MembershipRequest struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

// RoleItem is one element of GET /api/roles/get-roles.
type RoleItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalUsers int    `json:"totalUsers"`
}

// RoleCreated is returned by create-role.
type RoleCreated struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
