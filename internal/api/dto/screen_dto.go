package dto

import (
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
)

// PortalLoginRequest is posted by the login screen.
type PortalLoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResult is what the login screen shows after an attempt.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ProfileForm is posted by the profile screen.
type ProfileForm struct {
	Nome         string `json:"nome" form:"nome"`
	Senha        string `json:"senha" form:"senha"`
	ConfirmSenha string `json:"confirmSenha" form:"confirmSenha"`
}

// DashboardView is rendered for GET /dashboard.
type DashboardView struct {
	Greeting     string            `json:"greeting"`
	User         domain.UserRecord `json:"user"`
	Capabilities auth.Capabilities `json:"capabilities"`
	Menu         []auth.MenuItem   `json:"menu"`
}

// NoticeBoardView is rendered for GET /notices.
type NoticeBoardView struct {
	Notices   []domain.Notice `json:"notices"`
	CanManage bool            `json:"canManage"`
}
