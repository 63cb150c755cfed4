package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/jwt"
)

var tracer = otel.Tracer("auth")

const tokenCacheTTL = 5 * time.Minute

type AuthService struct {
	config domain.Config
	tokens *gocache.Cache
}

func NewAuthService(config domain.Config) *AuthService {
	return &AuthService{
		config: config,
		tokens: gocache.New(tokenCacheTTL, 10*time.Minute),
	}
}

type AuthResult struct {
	Address string
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	if cached, ok := s.tokens.Get(token); ok {
		return &AuthResult{Address: cached.(string)}, nil
	}

	header, claims, err := jwt.Validate(token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if claims.Audience != s.config.FQDN {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.config.FQDN, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject != "spaceport" {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	keyID := header.KeyID
	if keyID == "" {
		keyID = claims.Issuer
	}

	if !spaceport.IsAddress(keyID) {
		span.RecordError(fmt.Errorf("invalid issuer"))
		return nil, fmt.Errorf("invalid issuer")
	}

	// Cache no longer than the token itself stays valid.
	ttl := tokenCacheTTL
	if claims.ExpirationTime != "" {
		if exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64); err == nil {
			if remain := time.Until(time.Unix(exp, 0)); remain < ttl {
				ttl = remain
			}
		}
	}
	s.tokens.Set(token, keyID, ttl)

	return &AuthResult{Address: keyID}, nil
}
