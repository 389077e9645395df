package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

func TestLoginOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode string
		wantMsg  string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req dto.LoginRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Email != "a@x.com" || req.Senha != "secret" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				_, _ = w.Write([]byte(`{"token":"t1","user":{"id":1,"nome":"Ana","role":"Admin","ativo":true}}`))
			},
		},
		{
			name: "flat error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Credenciais inválidas"}`))
			},
			wantCode: apperrors.CodeAuthenticationFailed,
			wantMsg:  "Credenciais inválidas",
		},
		{
			name: "nested error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"Usuário inativo"}}`))
			},
			wantCode: apperrors.CodeAuthenticationFailed,
			wantMsg:  "Usuário inativo",
		},
		{
			name: "no structured body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`<html>bad gateway</html>`))
			},
			wantCode: apperrors.CodeServiceUnreachable,
			wantMsg:  apperrors.ServiceUnreachableMessage,
		},
		{
			name: "success without token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"user":{"id":1}}`))
			},
			wantCode: apperrors.CodeServiceUnreachable,
			wantMsg:  apperrors.ServiceUnreachableMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewPortalClient(srv.URL+"/", NewAuthenticator(nil), time.Second)
			resp, err := c.Login(context.Background(), "a@x.com", "secret")

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Login: %v", err)
				}
				if resp.Token != "t1" || resp.User.Nome != "Ana" || resp.User.Role != domain.RoleAdmin {
					t.Fatalf("unexpected response %+v", resp)
				}
				return
			}

			de := apperrors.ToDomainError(err)
			if de == nil || de.Code != tt.wantCode || de.Message != tt.wantMsg {
				t.Fatalf("got %+v, want %s/%q", de, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewPortalClient(url, NewAuthenticator(nil), time.Second)
	_, err := c.Login(context.Background(), "a@x.com", "secret")
	if !apperrors.HasCode(err, apperrors.CodeServiceUnreachable) {
		t.Fatalf("expected SERVICE_UNREACHABLE, got %v", err)
	}
}

func TestLoginHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewPortalClient(srv.URL, NewAuthenticator(nil), 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Login(ctx, "a@x.com", "secret")
	if !apperrors.HasCode(err, apperrors.CodeServiceUnreachable) {
		t.Fatalf("expected SERVICE_UNREACHABLE on timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("login did not stop at the deadline")
	}
}

func TestUpdateProfileCarriesToken(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		if r.Method != http.MethodPatch || r.URL.Path != "/api/users/profile" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req dto.ProfileUpdateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(dto.ProfileUpdateResponse{User: &domain.UserRecord{ID: 1, Nome: req.Nome}})
	}))
	defer srv.Close()

	authn := NewAuthenticator(nil)
	authn.Arm("t1")
	c := NewPortalClient(srv.URL+"/api", authn, time.Second)

	resp, err := c.UpdateProfile(context.Background(), dto.ProfileUpdateRequest{Nome: "Beatriz"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if resp.User == nil || resp.User.Nome != "Beatriz" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if seen != "Bearer t1" {
		t.Fatalf("Authorization = %q", seen)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Acesso negado"}`))
	}))
	defer srv.Close()

	c := NewPortalClient(srv.URL, NewAuthenticator(nil), time.Second)
	_, err := c.ListUsers(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestListNoticesDecodesAuthorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7,"titulo":"Queda de energia","mensagem":"Sábado","tipo":"Manutencao","data_expiracao":"2026-10-20","autor":{"nome":"Ana"}}]`))
	}))
	defer srv.Close()

	c := NewPortalClient(srv.URL, NewAuthenticator(nil), time.Second)
	notices, err := c.ListNotices(context.Background())
	if err != nil {
		t.Fatalf("ListNotices: %v", err)
	}
	if len(notices) != 1 {
		t.Fatalf("got %d notices", len(notices))
	}
	n := notices[0]
	if n.ID != 7 || n.Tipo != domain.NoticeManutencao || n.DataExpiracao != "2026-10-20" || n.Autor == nil || n.Autor.Nome != "Ana" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestWriteCallsUseExpectedRoutes(t *testing.T) {
	type seenRequest struct {
		method, path, body string
	}
	var seen []seenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = append(seen, seenRequest{r.Method, r.URL.Path, string(raw)})
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{"id":3,"nome":"Eva"}`))
		}
	}))
	defer srv.Close()

	c := NewPortalClient(srv.URL, NewAuthenticator(nil), time.Second)
	ctx := context.Background()

	if _, err := c.CreateNotice(ctx, dto.NoticeCreateRequest{Titulo: "t", Mensagem: "m"}); err != nil {
		t.Fatalf("CreateNotice: %v", err)
	}
	if err := c.DeleteNotice(ctx, 9); err != nil {
		t.Fatalf("DeleteNotice: %v", err)
	}
	if _, err := c.CreateUser(ctx, dto.UserWriteRequest{Nome: "Eva", Email: "eva@x.com", Senha: "secret1", Role: domain.RoleUsuarioComum}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := c.UpdateUser(ctx, 3, dto.UserWriteRequest{Nome: "Eva", Email: "eva@x.com", Role: domain.RoleUsuarioComum}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if _, err := c.SetUserStatus(ctx, 3, false); err != nil {
		t.Fatalf("SetUserStatus: %v", err)
	}
	if err := c.DeleteUser(ctx, 3); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/notices"},
		{http.MethodDelete, "/notices/9"},
		{http.MethodPost, "/users"},
		{http.MethodPut, "/users/3"},
		{http.MethodPatch, "/users/3/status"},
		{http.MethodDelete, "/users/3"},
	}
	if len(seen) != len(want) {
		t.Fatalf("got %d requests, want %d", len(seen), len(want))
	}
	for i, w := range want {
		if seen[i].method != w.method || seen[i].path != w.path {
			t.Fatalf("request %d = %s %s, want %s %s", i, seen[i].method, seen[i].path, w.method, w.path)
		}
	}

	var update map[string]any
	if err := json.Unmarshal([]byte(seen[3].body), &update); err != nil {
		t.Fatalf("decode update body: %v", err)
	}
	if _, ok := update["senha"]; ok {
		t.Fatalf("empty senha sent on update: %s", seen[3].body)
	}
	if seen[4].body != `{"ativo":false}` {
		t.Fatalf("status body = %s", seen[4].body)
	}
}

func TestConflictMapsToValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Email já cadastrado"}`))
	}))
	defer srv.Close()

	c := NewPortalClient(srv.URL, NewAuthenticator(nil), time.Second)
	_, err := c.CreateUser(context.Background(), dto.UserWriteRequest{Nome: "Eva", Email: "a@x.com", Senha: "secret1"})
	de := apperrors.ToDomainError(err)
	if de.Code != apperrors.CodeValidationFailed || de.Message != "Email já cadastrado" {
		t.Fatalf("unexpected error %+v", de)
	}
}
