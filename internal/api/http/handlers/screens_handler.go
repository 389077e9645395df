package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	"github.com/spec-kit/intranet-portal/internal/service"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// ProfileUpdater edits the signed-in user's profile.
type ProfileUpdater interface {
	Update(ctx context.Context, form dto.ProfileForm) (domain.UserRecord, error)
}

// ScreensHandler serves the protected screens. Every route is expected to sit
// behind the access guard.
type ScreensHandler struct {
	sessions  auth.SessionReader
	profile   ProfileUpdater
	loginPath string
}

// NewScreensHandler constructs handler.
func NewScreensHandler(sessions auth.SessionReader, profile ProfileUpdater, loginPath string) *ScreensHandler {
	return &ScreensHandler{sessions: sessions, profile: profile, loginPath: loginPath}
}

// Dashboard handles GET /dashboard.
func (h *ScreensHandler) Dashboard(c *fiber.Ctx) error {
	user, role, ok := h.current()
	if !ok {
		return c.Redirect(h.loginPath, http.StatusFound)
	}
	return c.JSON(dto.DashboardView{
		Greeting:     "Bem-vindo, " + user.Nome + "!",
		User:         user,
		Capabilities: auth.CapabilitiesFor(role),
		Menu:         auth.MenuFor(role),
	})
}

// Menu handles GET /menu.
func (h *ScreensHandler) Menu(c *fiber.Ctx) error {
	_, role, ok := h.current()
	if !ok {
		return c.Redirect(h.loginPath, http.StatusFound)
	}
	return c.JSON(fiber.Map{"items": auth.MenuFor(role)})
}

// Profile handles GET /profile.
func (h *ScreensHandler) Profile(c *fiber.Ctx) error {
	user, _, ok := h.current()
	if !ok {
		return c.Redirect(h.loginPath, http.StatusFound)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfile handles POST /profile.
func (h *ScreensHandler) UpdateProfile(c *fiber.Ctx) error {
	var form dto.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.profile.Update(c.UserContext(), form)
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(fiber.Map{
		"user":    user,
		"message": "Perfil atualizado com sucesso!",
	})
}

func (h *ScreensHandler) current() (domain.UserRecord, domain.Role, bool) {
	state := h.sessions.State()
	if state.Status != domain.SessionAuthenticated {
		return domain.UserRecord{}, "", false
	}
	return state.Credential.User, state.Role(), true
}

// upstreamError sends the caller back to the login screen when the failed
// call ended the session, and renders the error otherwise.
func upstreamError(c *fiber.Ctx, sessions auth.SessionReader, loginPath string, err error) error {
	if errors.Is(err, service.ErrNotAuthenticated) || sessions.State().Status != domain.SessionAuthenticated {
		return c.Redirect(loginPath, http.StatusFound)
	}
	return err
}
