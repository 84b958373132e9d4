package dto

// AssignRoleRequest changes another user's role. Admin only.
type AssignRoleRequest struct {
	Role string `json:"rol" binding:"required,oneof=admin editor usuario"`
}
