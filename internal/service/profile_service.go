package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// ProfileClient is the part of the intranet API the profile screen needs.
type ProfileClient interface {
	UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error)
}

// ProfileService edits the signed-in user's own profile.
type ProfileService struct {
	client   ProfileClient
	sessions *SessionService
}

// NewProfileService builds the service.
func NewProfileService(client ProfileClient, sessions *SessionService) *ProfileService {
	return &ProfileService{client: client, sessions: sessions}
}

// Update validates the form, sends it to the API and merges the returned
// name into the session.
func (p *ProfileService) Update(ctx context.Context, form dto.ProfileForm) (domain.UserRecord, error) {
	if !p.sessions.IsAuthenticated() {
		return domain.UserRecord{}, ErrNotAuthenticated
	}

	nome := strings.TrimSpace(form.Nome)
	if nome == "" {
		return domain.UserRecord{}, apperrors.NewValidationError("O nome é obrigatório.", map[string]any{"field": "nome"})
	}
	if form.Senha != "" && form.Senha != form.ConfirmSenha {
		return domain.UserRecord{}, apperrors.NewValidationError("As senhas não coincidem.", map[string]any{"field": "confirmSenha"})
	}
	if form.Senha != "" {
		if err := auth.ValidatePassword(form.Senha); err != nil {
			return domain.UserRecord{}, apperrors.NewValidationError(err.Error(), map[string]any{"field": "senha"})
		}
	}

	resp, err := p.client.UpdateProfile(ctx, dto.ProfileUpdateRequest{Nome: nome, Senha: form.Senha})
	if err != nil {
		return domain.UserRecord{}, err
	}
	if resp == nil || resp.User == nil || strings.TrimSpace(resp.User.Nome) == "" {
		return domain.UserRecord{}, apperrors.NewServiceUnreachable(errors.New("profile response without user name"))
	}

	if err := p.sessions.UpdateDisplayName(ctx, resp.User.Nome); err != nil {
		return domain.UserRecord{}, err
	}
	user, _ := p.sessions.User()
	return user, nil
}
