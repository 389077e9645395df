package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/domain"
	"github.com/spec-kit/intranet-portal/internal/persistence"
)

// CredentialRepository persists the current session's credential across
// restarts. It performs no validation of the token.
type CredentialRepository interface {
	Save(ctx context.Context, cred domain.Credential) error
	Load(ctx context.Context) (*domain.Credential, bool)
	Clear(ctx context.Context) error
}

type credentialRepository struct {
	kv       persistence.KV
	tokenKey string
	userKey  string
	logger   *zap.Logger
}

// NewCredentialRepository stores the credential as two entries,
// "<namespace>:token" and "<namespace>:user".
func NewCredentialRepository(kv persistence.KV, namespace string, logger *zap.Logger) CredentialRepository {
	return &credentialRepository{
		kv:       kv,
		tokenKey: namespace + ":token",
		userKey:  namespace + ":user",
		logger:   logger,
	}
}

func (r *credentialRepository) Save(ctx context.Context, cred domain.Credential) error {
	user, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.kv.SetMany(ctx, map[string]string{
		r.tokenKey: cred.Token,
		r.userKey:  string(user),
	})
}

// Load never fails: a missing, partial or unreadable credential is reported
// as absent.
func (r *credentialRepository) Load(ctx context.Context) (*domain.Credential, bool) {
	token, ok, err := r.kv.Get(ctx, r.tokenKey)
	if err != nil {
		r.logger.Warn("credential store read failed", zap.String("key", r.tokenKey), zap.Error(err))
		return nil, false
	}
	if !ok || token == "" {
		return nil, false
	}

	rawUser, ok, err := r.kv.Get(ctx, r.userKey)
	if err != nil {
		r.logger.Warn("credential store read failed", zap.String("key", r.userKey), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var user domain.UserRecord
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		r.logger.Debug("discarding unreadable persisted user", zap.Error(err))
		return nil, false
	}
	return &domain.Credential{Token: token, User: user}, true
}

func (r *credentialRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, r.tokenKey, r.userKey)
}
