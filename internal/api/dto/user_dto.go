package dto

import "github.com/spec-kit/intranet-portal/internal/domain"

// LoginRequest is the body of POST /auth/login. The API expects "senha".
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string             `json:"token"`
	User  *domain.UserRecord `json:"user"`
}

// ProfileUpdateRequest is the body of PATCH /users/profile.
type ProfileUpdateRequest struct {
	Nome  string `json:"nome"`
	Senha string `json:"senha,omitempty"`
}

// ProfileUpdateResponse carries the updated user snapshot.
type ProfileUpdateResponse struct {
	User *domain.UserRecord `json:"user"`
}

// ErrorResponse is the failure body of the intranet API. Error holds either
// a plain message or an object with a message field.
type ErrorResponse struct {
	Error any `json:"error"`
}

// UserWriteRequest is the body of POST /users and PUT /users/:id. On update
// an empty Senha keeps the current password and is left out of the body.
type UserWriteRequest struct {
	Nome         string      `json:"nome" form:"nome"`
	Email        string      `json:"email" form:"email"`
	Senha        string      `json:"senha,omitempty" form:"senha"`
	Departamento string      `json:"departamento" form:"departamento"`
	Role         domain.Role `json:"role" form:"role"`
}

// UserStatusRequest is the body of PATCH /users/:id/status.
type UserStatusRequest struct {
	Ativo bool `json:"ativo" form:"ativo"`
}
