package service

import (
	"context"
	"strings"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// DirectoryClient is the part of the intranet API behind the notice board and
// the user administration screens.
type DirectoryClient interface {
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	ListNotices(ctx context.Context) ([]domain.Notice, error)
	CreateNotice(ctx context.Context, req dto.NoticeCreateRequest) (*domain.Notice, error)
	DeleteNotice(ctx context.Context, id int64) error
	CreateUser(ctx context.Context, req dto.UserWriteRequest) (*domain.UserRecord, error)
	UpdateUser(ctx context.Context, id int64, req dto.UserWriteRequest) (*domain.UserRecord, error)
	SetUserStatus(ctx context.Context, id int64, ativo bool) (*domain.UserRecord, error)
	DeleteUser(ctx context.Context, id int64) error
}

// DirectoryService validates notice and user forms before they reach the API.
// Permission checks stay with the API.
type DirectoryService struct {
	client   DirectoryClient
	sessions *SessionService
}

// NewDirectoryService builds the service.
func NewDirectoryService(client DirectoryClient, sessions *SessionService) *DirectoryService {
	return &DirectoryService{client: client, sessions: sessions}
}

func (d *DirectoryService) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	if !d.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	users, err := d.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.UserRecord{}
	}
	return users, nil
}

func (d *DirectoryService) ListNotices(ctx context.Context) ([]domain.Notice, error) {
	if !d.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	notices, err := d.client.ListNotices(ctx)
	if err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []domain.Notice{}
	}
	return notices, nil
}

// CreateNotice posts a notice. An empty tipo is sent as Geral; an empty
// expiry is left to the API's default.
func (d *DirectoryService) CreateNotice(ctx context.Context, req dto.NoticeCreateRequest) (*domain.Notice, error) {
	if !d.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	req.Titulo = strings.TrimSpace(req.Titulo)
	req.Mensagem = strings.TrimSpace(req.Mensagem)
	req.DataExpiracao = strings.TrimSpace(req.DataExpiracao)
	if req.Titulo == "" {
		return nil, apperrors.NewValidationError("O título é obrigatório.", map[string]any{"field": "titulo"})
	}
	if req.Mensagem == "" {
		return nil, apperrors.NewValidationError("A mensagem é obrigatória.", map[string]any{"field": "mensagem"})
	}
	if req.Tipo == "" {
		req.Tipo = domain.NoticeGeral
	}
	if !req.Tipo.Known() {
		return nil, apperrors.NewValidationError("Tipo de aviso inválido.", map[string]any{"field": "tipo"})
	}
	return d.client.CreateNotice(ctx, req)
}

func (d *DirectoryService) DeleteNotice(ctx context.Context, id int64) error {
	if !d.sessions.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return d.client.DeleteNotice(ctx, id)
}

// CreateUser registers a user; the password is mandatory.
func (d *DirectoryService) CreateUser(ctx context.Context, req dto.UserWriteRequest) (*domain.UserRecord, error) {
	if !d.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	req, err := normalizeUserForm(req, true)
	if err != nil {
		return nil, err
	}
	return d.client.CreateUser(ctx, req)
}

// UpdateUser edits a user. An empty senha keeps the current password.
func (d *DirectoryService) UpdateUser(ctx context.Context, id int64, req dto.UserWriteRequest) (*domain.UserRecord, error) {
	if !d.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	req, err := normalizeUserForm(req, false)
	if err != nil {
		return nil, err
	}
	return d.client.UpdateUser(ctx, id, req)
}

func (d *DirectoryService) SetUserStatus(ctx context.Context, id int64, ativo bool) (*domain.UserRecord, error) {
	if !d.sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return d.client.SetUserStatus(ctx, id, ativo)
}

func (d *DirectoryService) DeleteUser(ctx context.Context, id int64) error {
	if !d.sessions.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return d.client.DeleteUser(ctx, id)
}

func normalizeUserForm(req dto.UserWriteRequest, requirePassword bool) (dto.UserWriteRequest, error) {
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.TrimSpace(req.Email)
	req.Departamento = strings.TrimSpace(req.Departamento)
	if req.Nome == "" {
		return req, apperrors.NewValidationError("O nome é obrigatório.", map[string]any{"field": "nome"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return req, apperrors.NewValidationError("Email inválido.", map[string]any{"field": "email"})
	}
	role, ok := domain.ParseRole(string(req.Role))
	if !ok {
		return req, apperrors.NewValidationError("Perfil de acesso inválido.", map[string]any{"field": "role"})
	}
	req.Role = role
	if req.Senha != "" || requirePassword {
		if err := auth.ValidatePassword(req.Senha); err != nil {
			return req, apperrors.NewValidationError(err.Error(), map[string]any{"field": "senha"})
		}
	}
	return req, nil
}
