package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/devserver"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

type stubProfileClient struct {
	calls int
	resp  *dto.ProfileUpdateResponse
	err   error
}

func (s *stubProfileClient) UpdateProfile(_ context.Context, req dto.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &dto.ProfileUpdateResponse{User: &domain.UserRecord{Nome: req.Nome}}, nil
}

func TestProfileValidation(t *testing.T) {
	tests := []struct {
		name string
		form dto.ProfileForm
		want string
	}{
		{"blank name", dto.ProfileForm{Nome: "   "}, "O nome é obrigatório."},
		{"mismatch", dto.ProfileForm{Nome: "Bea", Senha: "abcdef", ConfirmSenha: "abcdeg"}, "As senhas não coincidem."},
		{"short", dto.ProfileForm{Nome: "Bea", Senha: "abc", ConfirmSenha: "abc"}, "A senha deve ter pelo menos 6 caracteres."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "http://127.0.0.1:1")
			h.seed(t, "t2", `{"id":2,"nome":"Bea","role":"Suporte"}`)
			h.sessions.Initialize(context.Background())

			stub := &stubProfileClient{}
			_, err := NewProfileService(stub, h.sessions).Update(context.Background(), tt.form)
			de := apperrors.ToDomainError(err)
			if de == nil || de.Code != apperrors.CodeValidationFailed || de.Message != tt.want {
				t.Fatalf("unexpected error %+v", de)
			}
			if stub.calls != 0 {
				t.Fatal("invalid form reached the API")
			}
		})
	}
}

func TestProfileUpdateRequiresSession(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	h.sessions.Initialize(context.Background())

	_, err := NewProfileService(&stubProfileClient{}, h.sessions).Update(context.Background(), dto.ProfileForm{Nome: "X"})
	if err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestProfileUpdateKeepsSessionOnAPIError(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	h.seed(t, "t2", `{"id":2,"nome":"Bea","role":"Suporte"}`)
	h.sessions.Initialize(context.Background())

	stub := &stubProfileClient{err: apperrors.NewValidationError("Nome inválido", nil)}
	if _, err := NewProfileService(stub, h.sessions).Update(context.Background(), dto.ProfileForm{Nome: "Beatriz"}); err == nil {
		t.Fatal("expected API error")
	}
	if user, _ := h.sessions.User(); user.Nome != "Bea" {
		t.Fatalf("name changed despite API error: %q", user.Nome)
	}
}

func TestProfileUpdateRejectsResponseWithoutName(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty body", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }},
		{"no user", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"ok":true}`)) }},
		{"blank nome", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"user":{"id":2,"nome":""}}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			h := newHarness(t, srv.URL)
			h.seed(t, "t2", `{"id":2,"nome":"Bea","role":"Suporte"}`)
			ctx := context.Background()
			h.sessions.Initialize(ctx)

			_, err := NewProfileService(h.api, h.sessions).Update(ctx, dto.ProfileForm{Nome: "Beatriz"})
			if !apperrors.HasCode(err, apperrors.CodeServiceUnreachable) {
				t.Fatalf("expected SERVICE_UNREACHABLE, got %v", err)
			}
			if user, _ := h.sessions.User(); user.Nome != "Bea" {
				t.Fatalf("live name changed to %q", user.Nome)
			}
			if cred, ok := h.store.Load(ctx); !ok || cred.User.Nome != "Bea" {
				t.Fatalf("persisted credential changed: %+v", cred)
			}
		})
	}
}

// TestDevServerRoundTrip drives login, profile update, restart and a
// server-side token rejection against the development API.
func TestDevServerRoundTrip(t *testing.T) {
	dir, err := devserver.NewSeededDirectory(4, "secret")
	if err != nil {
		t.Fatalf("NewSeededDirectory: %v", err)
	}
	api := devserver.New(dir, auth.NewTokenManager("dev-secret", 60), zap.NewNop())
	srv := httptest.NewServer(adaptor.FiberApp(api.App()))
	defer srv.Close()

	ctx := context.Background()
	h := newHarness(t, srv.URL+"/api")
	h.authn.OnUnauthorized(h.sessions.HandleUnauthorized)
	h.sessions.Initialize(ctx)

	if err := h.sessions.Login(ctx, "bea@x.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !h.sessions.Capabilities().ManageUsers {
		t.Fatal("Suporte should manage users")
	}

	users, err := h.api.ListUsers(ctx)
	if err != nil || len(users) == 0 {
		t.Fatalf("ListUsers: %v (%d users)", err, len(users))
	}

	updated, err := NewProfileService(h.api, h.sessions).Update(ctx, dto.ProfileForm{Nome: "Beatriz"})
	if err != nil {
		t.Fatalf("profile update: %v", err)
	}
	if updated.Nome != "Beatriz" || updated.Role != domain.RoleSuporte {
		t.Fatalf("unexpected user after update %+v", updated)
	}

	// A new process over the same store restores without logging in.
	restarted := newHarness(t, srv.URL+"/api")
	restarted.sessions.store = h.store
	if status := restarted.sessions.Initialize(ctx); status != domain.SessionAuthenticated {
		t.Fatalf("restart status = %s", status)
	}
	if user, _ := restarted.sessions.User(); user.Nome != "Beatriz" {
		t.Fatalf("restored name = %q", user.Nome)
	}

	// A token the API no longer accepts ends the session.
	h.sessions.Logout(ctx)
	h.seed(t, "not-a-valid-token", `{"id":2,"nome":"Bea","role":"Suporte"}`)
	h.sessions.Initialize(ctx)
	if !h.sessions.IsAuthenticated() {
		t.Fatal("opaque token should be restored as-is")
	}
	if _, err := h.api.ListNotices(ctx); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if h.sessions.IsAuthenticated() {
		t.Fatal("401 on the current token should invalidate the session")
	}
	if _, ok := h.store.Load(ctx); ok {
		t.Fatal("store should be cleared after invalidation")
	}
}
