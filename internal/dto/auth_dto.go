package dto

import "github.com/noah-isme/mathgrader-api/internal/models"

// RegisterRequest is the payload for creating a teacher account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest is the payload for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse exposes the session-safe view of a user.
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// NewUserResponse converts a user model into its public representation.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:    model.ID,
		Email: model.Email,
		Name:  model.Name,
		Role:  model.Role,
	}
}
