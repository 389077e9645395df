package devserver

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// Server is a development double of the intranet API, mounted under /api.
type Server struct {
	dir    *Directory
	tokens *auth.TokenManager
	logger *zap.Logger
}

// New builds the server.
func New(dir *Directory, tokens *auth.TokenManager, logger *zap.Logger) *Server {
	return &Server{dir: dir, tokens: tokens, logger: logger}
}

// App returns a fiber app serving the API.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	api := app.Group("/api")
	api.Post("/auth/login", s.login)

	authMiddleware := auth.NewAuthMiddleware(s.tokens)
	protected := api.Group("", authMiddleware.Handle)
	protected.Patch("/users/profile", s.updateProfile)
	protected.Get("/notices", s.listNotices)

	privileged := auth.RequireRole(domain.RoleAdmin, domain.RoleSuporte)
	protected.Get("/users", privileged, s.listUsers)
	protected.Post("/users", privileged, s.createUser)
	protected.Put("/users/:id", privileged, s.updateUser)
	protected.Patch("/users/:id/status", privileged, s.setUserStatus)
	protected.Delete("/users/:id", privileged, s.deleteUser)
	protected.Post("/notices", privileged, s.createNotice)
	protected.Delete("/notices/:id", privileged, s.deleteNotice)
	return app
}

// handleError renders failures as {"error": message}, the shape the portal
// client reads.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	de := apperrors.ToDomainError(err)
	if de.HTTPStatus >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Message})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Payload inválido")
	}
	if req.Email == "" || req.Senha == "" {
		return fiber.NewError(http.StatusBadRequest, "Email e senha são obrigatórios")
	}

	user, err := s.dir.Authenticate(req.Email, req.Senha)
	switch {
	case errors.Is(err, errInactiveUser):
		return apperrors.NewForbidden("Usuário inativo")
	case err != nil:
		return apperrors.NewUnauthorized("Credenciais inválidas")
	}

	token, _, err := s.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.LoginResponse{Token: token, User: &user})
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Token não fornecido")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil || req.Nome == "" {
		return fiber.NewError(http.StatusBadRequest, "Nome é obrigatório")
	}

	user, err := s.dir.UpdateProfile(claims.UserID, req.Nome, req.Senha)
	if errors.Is(err, errUserNotFound) {
		return apperrors.NewDomainError(apperrors.CodeNotFound, "Usuário não encontrado", http.StatusNotFound, nil)
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.ProfileUpdateResponse{User: &user})
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	return c.JSON(s.dir.Users())
}

func (s *Server) listNotices(c *fiber.Ctx) error {
	return c.JSON(s.dir.Notices())
}

func (s *Server) createNotice(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)

	var req dto.NoticeCreateRequest
	if err := c.BodyParser(&req); err != nil || req.Titulo == "" || req.Mensagem == "" {
		return fiber.NewError(http.StatusBadRequest, "Título e mensagem são obrigatórios")
	}
	if req.Tipo != "" && !req.Tipo.Known() {
		return fiber.NewError(http.StatusBadRequest, "Tipo de aviso inválido")
	}

	autor, err := s.dir.User(claims.UserID)
	if err != nil {
		return apperrors.NewUnauthorized("Usuário não encontrado")
	}
	notice, err := s.dir.AddNotice(domain.Notice{
		Titulo:        req.Titulo,
		Mensagem:      req.Mensagem,
		Tipo:          req.Tipo,
		DataExpiracao: req.DataExpiracao,
	}, autor.Nome)
	if errors.Is(err, errBadExpiry) {
		return fiber.NewError(http.StatusBadRequest, "Data de expiração inválida")
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(notice)
}

func (s *Server) deleteNotice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "ID inválido")
	}
	if err := s.dir.DeleteNotice(int64(id)); err != nil {
		return fiber.NewError(http.StatusNotFound, "Aviso não encontrado")
	}
	return c.JSON(fiber.Map{"message": "Aviso removido"})
}

// parseUserWrite validates a user form. The password is required only when
// requirePassword is set.
func parseUserWrite(c *fiber.Ctx, requirePassword bool) (domain.UserRecord, string, error) {
	var req dto.UserWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.UserRecord{}, "", fiber.NewError(http.StatusBadRequest, "Payload inválido")
	}
	if req.Nome == "" || req.Email == "" {
		return domain.UserRecord{}, "", fiber.NewError(http.StatusBadRequest, "Nome e email são obrigatórios")
	}
	role, ok := domain.ParseRole(string(req.Role))
	if !ok {
		return domain.UserRecord{}, "", fiber.NewError(http.StatusBadRequest, "Role inválida")
	}
	if req.Senha != "" || requirePassword {
		if err := auth.ValidatePassword(req.Senha); err != nil {
			return domain.UserRecord{}, "", fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return domain.UserRecord{
		Nome:         req.Nome,
		Email:        req.Email,
		Departamento: req.Departamento,
		Role:         role,
		Ativo:        true,
	}, req.Senha, nil
}

func (s *Server) createUser(c *fiber.Ctx) error {
	u, senha, err := parseUserWrite(c, true)
	if err != nil {
		return err
	}
	created, err := s.dir.AddUser(u, senha)
	if errors.Is(err, errEmailTaken) {
		return fiber.NewError(http.StatusConflict, "Email já cadastrado")
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(created)
}

func (s *Server) updateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "ID inválido")
	}
	u, senha, err := parseUserWrite(c, false)
	if err != nil {
		return err
	}
	updated, err := s.dir.UpdateUser(int64(id), u, senha)
	return s.userResult(c, updated, err)
}

func (s *Server) setUserStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "ID inválido")
	}
	var req dto.UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Payload inválido")
	}
	updated, err := s.dir.SetActive(int64(id), req.Ativo)
	return s.userResult(c, updated, err)
}

func (s *Server) deleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "ID inválido")
	}
	if err := s.dir.DeleteUser(int64(id)); err != nil {
		return fiber.NewError(http.StatusNotFound, "Usuário não encontrado")
	}
	return c.JSON(fiber.Map{"message": "Usuário removido"})
}

func (s *Server) userResult(c *fiber.Ctx, u domain.UserRecord, err error) error {
	switch {
	case errors.Is(err, errUserNotFound):
		return fiber.NewError(http.StatusNotFound, "Usuário não encontrado")
	case errors.Is(err, errEmailTaken):
		return fiber.NewError(http.StatusConflict, "Email já cadastrado")
	case err != nil:
		return apperrors.NewInternalError(err)
	}
	return c.JSON(u)
}
