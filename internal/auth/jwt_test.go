package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

var testUser = &entities.User{ID: "42", Email: "asha@example.com", Role: entities.RoleUser}

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := m.GenerateToken(testUser, "tok-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiresAt too soon: %v", expiresAt)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "42" || claims.Email != "asha@example.com" || claims.TokenID != "tok-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if id := claims.Identity(); id.ID != "42" || id.Email != "asha@example.com" {
		t.Errorf("Identity() = %+v", id)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)
	expired := NewJWTManager("test-secret", -time.Minute)

	foreign, _, _ := other.GenerateToken(testUser, "t")
	stale, _, _ := expired.GenerateToken(testUser, "t")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrNoToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"wrong key", foreign, ErrInvalidToken},
		{"expired", stale, ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateTokenRejectsNoneAlg(t *testing.T) {
	claims := Claims{
		UserID: "42",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}
	if _, err := NewJWTManager("k", time.Hour).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestParseUnverified(t *testing.T) {
	token, _, err := NewJWTManager("server-only-secret", time.Hour).GenerateToken(testUser, "tok-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseUnverified(token)
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.UserID != "42" || claims.TokenID != "tok-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	stale, _, _ := NewJWTManager("k", -time.Minute).GenerateToken(testUser, "t")
	if _, err := ParseUnverified(stale); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
	if _, err := ParseUnverified(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
	if _, err := ParseUnverified("abc"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGenerateTokenID(t *testing.T) {
	a, err := GenerateTokenID()
	if err != nil {
		t.Fatalf("GenerateTokenID: %v", err)
	}
	b, _ := GenerateTokenID()
	if a == b || len(a) < 40 {
		t.Errorf("token ids should be long and unique: %q %q", a, b)
	}
}

func TestUserContext(t *testing.T) {
	if _, err := GetUserFromContext(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "1", Role: "user"})
	if err := RequireAdmin(ctx); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	ctx = SetUserInContext(context.Background(), &UserContext{UserID: "1", Role: "admin"})
	if err := RequireAdmin(ctx); err != nil {
		t.Errorf("admin should pass, got %v", err)
	}
}
