package admin

import "encoding/json"

// LoginRequest represents the login form
type LoginRequest struct {
	UserName string `json:"user_name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// AdminResponse represents an admin in API responses
type AdminResponse struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
}

// CommandRequest is the envelope of POST /admin/commands
type CommandRequest struct {
	Type    Kind            `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// CommandResponse echoes the command kind with its result
type CommandResponse struct {
	Type   Kind `json:"type"`
	Result any  `json:"result,omitempty"`
}

// ToResponse converts an Admin model to an AdminResponse DTO
func (a *Admin) ToResponse() *AdminResponse {
	return &AdminResponse{ID: a.ID, UserName: a.UserName}
}
