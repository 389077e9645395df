package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/domain"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

const maxBodyBytes = 1 << 20

// PortalClient calls the remote intranet API. Every request goes through the
// Authenticator installed as its transport.
type PortalClient struct {
	baseURL string
	http    *http.Client
}

// NewPortalClient builds a client rooted at baseURL (e.g. http://host/api).
func NewPortalClient(baseURL string, authn *Authenticator, timeout time.Duration) *PortalClient {
	return &PortalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: authn, Timeout: timeout},
	}
}

// Login exchanges credentials for a token and user snapshot. Any structured
// rejection becomes AUTHENTICATION_FAILED with the server's message.
func (c *PortalClient) Login(ctx context.Context, email, senha string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(WithPublic(ctx), http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Senha: senha}, &out)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeServiceUnreachable) {
			return nil, err
		}
		de := apperrors.ToDomainError(err)
		return nil, apperrors.NewAuthenticationFailed(de.Message, de.HTTPStatus)
	}
	if out.Token == "" || out.User == nil {
		return nil, apperrors.NewServiceUnreachable(errors.New("login response without token or user"))
	}
	return &out, nil
}

// UpdateProfile sends PATCH /users/profile.
func (c *PortalClient) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error) {
	var out dto.ProfileUpdateResponse
	if err := c.do(ctx, http.MethodPatch, "/users/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers sends GET /users.
func (c *PortalClient) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	var out []domain.UserRecord
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotices sends GET /notices.
func (c *PortalClient) ListNotices(ctx context.Context) ([]domain.Notice, error) {
	var out []domain.Notice
	if err := c.do(ctx, http.MethodGet, "/notices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNotice sends POST /notices.
func (c *PortalClient) CreateNotice(ctx context.Context, req dto.NoticeCreateRequest) (*domain.Notice, error) {
	var out domain.Notice
	if err := c.do(ctx, http.MethodPost, "/notices", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNotice sends DELETE /notices/:id.
func (c *PortalClient) DeleteNotice(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notices/%d", id), nil, nil)
}

// CreateUser sends POST /users.
func (c *PortalClient) CreateUser(ctx context.Context, req dto.UserWriteRequest) (*domain.UserRecord, error) {
	var out domain.UserRecord
	if err := c.do(ctx, http.MethodPost, "/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser sends PUT /users/:id. An empty Senha is omitted from the body
// so the API keeps the current password.
func (c *PortalClient) UpdateUser(ctx context.Context, id int64, req dto.UserWriteRequest) (*domain.UserRecord, error) {
	var out domain.UserRecord
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserStatus sends PATCH /users/:id/status.
func (c *PortalClient) SetUserStatus(ctx context.Context, id int64, ativo bool) (*domain.UserRecord, error) {
	var out domain.UserRecord
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/status", id), dto.UserStatusRequest{Ativo: ativo}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser sends DELETE /users/:id.
func (c *PortalClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

func (c *PortalClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("encode %s %s: %w", method, path, err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewServiceUnreachable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewServiceUnreachable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw)
		if msg == "" {
			return apperrors.NewServiceUnreachable(fmt.Errorf("%s %s: status %d without error body", method, path, resp.StatusCode))
		}
		return statusError(resp.StatusCode, msg)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewServiceUnreachable(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// errorMessage extracts {"error":"msg"} or {"error":{"message":"msg"}}.
func errorMessage(raw []byte) string {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch v := body.Error.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

func statusError(status int, msg string) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.NewValidationError(msg, nil)
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorized(msg)
	case http.StatusForbidden:
		return apperrors.NewForbidden(msg)
	case http.StatusNotFound:
		return apperrors.NewDomainError(apperrors.CodeNotFound, msg, status, nil)
	case http.StatusConflict:
		return apperrors.NewDomainError(apperrors.CodeValidationFailed, msg, status, nil)
	default:
		return apperrors.NewDomainError("UPSTREAM_ERROR", msg, http.StatusBadGateway, nil)
	}
}
