package handler

import "github.com/99minutos/identity-store/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Account ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=100"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Roles ---

type roleRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

type membersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=1000,dive,uuid"`
	Op      string   `json:"op"       validate:"required,oneof=add remove"`
}

type membersResponse struct {
	Queued int `json:"queued"`
}

type usersResponse struct {
	Items []*domain.User `json:"items"`
	Total int            `json:"total"`
}
