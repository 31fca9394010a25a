package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	participantrepo "github.com/sahanw/arogya-backend/internal/data/repos/participant"
	"github.com/sahanw/arogya-backend/internal/domain/participant"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/platform/env"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

// AuthService issues and verifies access tokens for participants.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName, language string) (*participant.Participant, string, error)
	Login(ctx context.Context, email, password string) (*participant.Participant, string, error)
	ParticipantFromToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	participants participantrepo.Repo
	log          *logger.Logger
	secret       []byte
	accessTTL    time.Duration
}

func NewAuthService(participants participantrepo.Repo, baseLog *logger.Logger) (AuthService, error) {
	log := baseLog.With("service", "Auth")
	secret := env.GetEnv("JWT_SECRET", "", log)
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is not set", apperrors.ErrInvalidArgument)
	}
	ttlMinutes := env.GetEnvAsInt("JWT_ACCESS_TTL_MINUTES", 60, log)
	if ttlMinutes < 1 {
		ttlMinutes = 60
	}
	return &authService{
		participants: participants,
		log:          log,
		secret:       []byte(secret),
		accessTTL:    time.Duration(ttlMinutes) * time.Minute,
	}, nil
}

func (s *authService) Register(ctx context.Context, email, password, displayName, language string) (*participant.Participant, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", apperrors.ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}

	existing, err := s.participants.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: email is already registered", apperrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	if language == "" {
		language = "en"
	}
	p := &participant.Participant{
		Email:             email,
		Password:          string(hash),
		DisplayName:       strings.TrimSpace(displayName),
		PreferredLanguage: language,
	}
	if err := s.participants.Create(dbctx.Context{Ctx: ctx}, p); err != nil {
		return nil, "", err
	}

	token, err := s.signToken(p.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("Participant registered", "participant_id", p.ID)
	return p, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*participant.Participant, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := s.participants.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.signToken(p.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("Participant logged in", "participant_id", p.ID)
	return p, token, nil
}

func (s *authService) ParticipantFromToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method", apperrors.ErrUnauthorized)
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid or expired token", apperrors.ErrUnauthorized)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid token subject", apperrors.ErrUnauthorized)
	}
	return id, nil
}

func (s *authService) signToken(participantID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   participantID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
