package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/taiwoajasa245/verse-courier/pkg/util"
)

type AuthService struct {
	repo   Repository
	secret string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(repo Repository, secret string, ttl time.Duration, logger *zap.Logger) AuthService {
	return AuthService{
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

// IssueToken exchanges a gateway's API key for a signed bearer token.
func (s *AuthService) IssueToken(ctx context.Context, gateway, key string) (*TokenResponse, error) {
	if gateway == "" || key == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.repo.KeyHash(ctx, gateway)
	if err != nil {
		if !errors.Is(err, ErrGatewayNotFound) {
			s.logger.Error("looking up gateway key", zap.String("gateway", gateway), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	if err := util.CompareKeyBcrypt(hash, key); err != nil {
		s.logger.Warn("gateway key mismatch", zap.String("gateway", gateway))
		return nil, ErrInvalidCredentials
	}

	expires := s.now().Add(s.ttl)
	token, err := util.GenerateJWT(s.secret, gateway, s.ttl)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{Gateway: gateway, Token: token, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}
