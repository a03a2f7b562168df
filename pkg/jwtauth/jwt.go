// Package jwtauth проверяет и выпускает HS256 access токены с идентичностью вызывающего.
// Токены выпускает внешний провайдер аутентификации; Generate нужен локальной разработке и тестам.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"notesflow/pkg/logger"
	"notesflow/pkg/workflow"
)

// Константы для работы с JWT.
const (
	methodValidateToken = "ValidateAccessToken"
	msgValidatingToken  = "validating token"
	msgTokenValidated   = "token validated successfully"
	msgInvalidToken     = "invalid token format"
	msgTokenExpired     = "token has expired"
	msgErrParsingToken  = "error parsing token" //nolint:gosec
	msgEmptyUserID      = "user_id claim is empty"
	msgUnknownRole      = "role claim is unknown"
	errCtxValidating    = "validating token"
	errCtxSigning       = "signing token"
)

// Ошибки проверки токена.
var (
	ErrInvalidToken     = errors.New("invalid JWT token")
	ErrExpiredToken     = errors.New("JWT token has expired")
	ErrInvalidAlgorithm = errors.New("invalid signing algorithm")
)

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ParentID string `json:"parent_id,omitempty"`
	jwt.RegisteredClaims
}

// Service проверяет токены общим секретом.
type Service struct {
	secretKey []byte
}

// New создает новый экземпляр сервиса JWT.
func New(secretKey string) *Service {
	return &Service{secretKey: []byte(secretKey)}
}

// ValidateAccessToken проверяет JWT токен и возвращает идентичность вызывающего.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenString string) (workflow.Principal, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateToken))
	log.Debug(ctx, msgValidatingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return workflow.Principal{}, fmt.Errorf("%s: %w", errCtxValidating, ErrExpiredToken)
		}
		log.Warn(ctx, msgErrParsingToken, zap.Error(err))
		return workflow.Principal{}, fmt.Errorf("%s: %w", errCtxValidating, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, msgInvalidToken)
		return workflow.Principal{}, fmt.Errorf("%s: %w", errCtxValidating, ErrInvalidToken)
	}

	if claims.UserID == "" {
		log.Debug(ctx, msgEmptyUserID)
		return workflow.Principal{}, fmt.Errorf("%s: %w", errCtxValidating, ErrInvalidToken)
	}

	role := workflow.Role(claims.Role)
	if !role.Valid() {
		log.Debug(ctx, msgUnknownRole, zap.String("role", claims.Role))
		return workflow.Principal{}, fmt.Errorf("%s: %w", errCtxValidating, ErrInvalidToken)
	}

	log.Debug(ctx, msgTokenValidated, zap.String("userID", claims.UserID), zap.String("role", claims.Role))

	return workflow.Principal{
		UserID:   claims.UserID,
		Name:     claims.Username,
		Role:     role,
		ParentID: claims.ParentID,
	}, nil
}

// GenerateAccessToken выпускает подписанный токен для principal со сроком жизни ttl.
func (s *Service) GenerateAccessToken(p workflow.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   p.UserID,
		Username: p.Name,
		Role:     string(p.Role),
		ParentID: p.ParentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtxSigning, err)
	}
	return signed, nil
}
