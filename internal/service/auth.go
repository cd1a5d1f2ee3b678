package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecg-academy/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService verifies bearer tokens issued by the identity provider.
// CreateJWT exists for the admin CLI and tests; the API never mints tokens.
type AuthService interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, uid, role string, ttl time.Duration) (string, error)
}

type authServiceImpl struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewAuthService creates an HS256 verifier. An empty issuer disables the issuer check.
func NewAuthService(secret, issuer string, logger *zap.Logger) (AuthService, error) {
	if secret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	return &authServiceImpl{secret: []byte(secret), issuer: issuer, logger: logger}, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, uid, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("JWT token expired", zap.Error(err))
		} else {
			s.logger.Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	if claims.UID == "" {
		claims.UID = claims.Subject
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("%w: token carries no uid", ErrInvalidJWTToken)
	}
	return claims, nil
}
