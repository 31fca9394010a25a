package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
)

func testAuth(secret string, ttl time.Duration) *authService {
	return &authService{secret: []byte(secret), accessTTL: ttl}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testAuth("test-secret", time.Hour)
	participantID := uuid.New()

	token, err := svc.signToken(participantID)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	got, err := svc.ParticipantFromToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if got != participantID {
		t.Fatalf("expected %s, got %s", participantID, got)
	}
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	issuer := testAuth("secret-one", time.Hour)
	verifier := testAuth("secret-two", time.Hour)

	token, err := issuer.signToken(uuid.New())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := verifier.ParticipantFromToken(token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a foreign secret, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := testAuth("test-secret", -time.Minute)

	token, err := svc.signToken(uuid.New())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.ParticipantFromToken(token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for an expired token, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := testAuth("test-secret", time.Hour)
	if _, err := svc.ParticipantFromToken("not.a.token"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
