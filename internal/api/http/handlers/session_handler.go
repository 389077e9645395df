package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// SessionController is the slice of the session service the login screen uses.
type SessionController interface {
	Status() domain.SessionStatus
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
}

// SessionHandler serves the public login and logout screens.
type SessionHandler struct {
	sessions  SessionController
	homePath  string
	loginPath string
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions SessionController, homePath, loginPath string) *SessionHandler {
	return &SessionHandler{sessions: sessions, homePath: homePath, loginPath: loginPath}
}

// Index handles GET /. A signed-in user is sent straight to the home screen.
func (h *SessionHandler) Index(c *fiber.Ctx) error {
	switch auth.Decide(h.sessions.Status()) {
	case auth.DecisionAdmit:
		return c.Redirect(h.homePath, http.StatusFound)
	case auth.DecisionLoading:
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "loading", "message": "Carregando..."})
	}
	return c.JSON(fiber.Map{
		"screen": "login",
		"fields": []string{"email", "password"},
	})
}

// Login handles POST /login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.PortalLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(dto.LoginResult{Message: "Informe email e senha."})
	}

	if err := h.sessions.Login(c.UserContext(), req.Email, req.Password); err != nil {
		de := apperrors.ToDomainError(err)
		status := http.StatusUnauthorized
		if de.Code == apperrors.CodeServiceUnreachable {
			status = de.HTTPStatus
		}
		return c.Status(status).JSON(dto.LoginResult{Message: de.Message})
	}
	return c.JSON(dto.LoginResult{Success: true})
}

// Logout handles POST and GET /logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Logout(c.UserContext())
	return c.Redirect(h.loginPath, http.StatusSeeOther)
}
