package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// UserAdmin manages intranet accounts on behalf of the session.
type UserAdmin interface {
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	CreateUser(ctx context.Context, req dto.UserWriteRequest) (*domain.UserRecord, error)
	UpdateUser(ctx context.Context, id int64, req dto.UserWriteRequest) (*domain.UserRecord, error)
	SetUserStatus(ctx context.Context, id int64, ativo bool) (*domain.UserRecord, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UsersHandler serves the user administration screen. Routes sit behind the
// ManageUsers capability check.
type UsersHandler struct {
	sessions  auth.SessionReader
	admin     UserAdmin
	loginPath string
}

// NewUsersHandler constructs handler.
func NewUsersHandler(sessions auth.SessionReader, admin UserAdmin, loginPath string) *UsersHandler {
	return &UsersHandler{sessions: sessions, admin: admin, loginPath: loginPath}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admin.CreateUser(c.UserContext(), req)
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "Usuário criado com sucesso!",
	})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.UserWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admin.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(fiber.Map{
		"user":    user,
		"message": "Usuário atualizado com sucesso!",
	})
}

// SetStatus handles PATCH /users/:id/status.
func (h *UsersHandler) SetStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admin.SetUserStatus(c.UserContext(), id, req.Ativo)
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteUser(c.UserContext(), id); err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(fiber.Map{"message": "Usuário removido."})
}
