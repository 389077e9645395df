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

// NoticeBoard reads and edits the notice board on behalf of the session.
type NoticeBoard interface {
	ListNotices(ctx context.Context) ([]domain.Notice, error)
	CreateNotice(ctx context.Context, req dto.NoticeCreateRequest) (*domain.Notice, error)
	DeleteNotice(ctx context.Context, id int64) error
}

// NoticesHandler serves the notice board screen.
type NoticesHandler struct {
	sessions  auth.SessionReader
	board     NoticeBoard
	loginPath string
}

// NewNoticesHandler constructs handler.
func NewNoticesHandler(sessions auth.SessionReader, board NoticeBoard, loginPath string) *NoticesHandler {
	return &NoticesHandler{sessions: sessions, board: board, loginPath: loginPath}
}

// List handles GET /notices.
func (h *NoticesHandler) List(c *fiber.Ctx) error {
	notices, err := h.board.ListNotices(c.UserContext())
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(dto.NoticeBoardView{
		Notices:   notices,
		CanManage: auth.CanManageUsers(h.sessions.State().Role()),
	})
}

// Create handles POST /notices.
func (h *NoticesHandler) Create(c *fiber.Ctx) error {
	var req dto.NoticeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	notice, err := h.board.CreateNotice(c.UserContext(), req)
	if err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"notice":  notice,
		"message": "Aviso publicado com sucesso!",
	})
}

// Delete handles DELETE /notices/:id.
func (h *NoticesHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.board.DeleteNotice(c.UserContext(), id); err != nil {
		return upstreamError(c, h.sessions, h.loginPath, err)
	}
	return c.JSON(fiber.Map{"message": "Aviso removido."})
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return int64(id), nil
}
