package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "15m", "24h")
	teamID := "01890a5d-ac96-7f5e-8b3c-2a1f4e6d7c10"

	token, exp, err := svc.GenerateAccessToken(user.User{
		ID:       "u-1",
		Email:    "lead@example.com",
		FullName: "Team Lead",
		Role:     user.RoleTeamLead,
		TeamID:   &teamID,
	})
	require.NoError(t, err)
	assert.Greater(t, exp, int64(0))

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	actor, err := ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "u-1", actor.UserID)
	assert.Equal(t, user.RoleTeamLead, actor.Role)
	assert.Equal(t, "Team Lead", actor.FullName)
	require.NotNil(t, actor.TeamID)
	assert.Equal(t, teamID, *actor.TeamID)
}

func TestActorFromClaims_RejectsOtherTokenTypes(t *testing.T) {
	svc := NewJWTService("test-secret", "15m", "24h")

	refresh, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), refresh)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	_, err = ActorFromClaims(claims)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = ActorFromClaims(map[string]interface{}{"type": "access", "user_id": "u-1", "role": "admin"})
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestParseRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m", "24h")

	refresh, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	userID, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	access, _, err := svc.GenerateAccessToken(user.User{ID: "u-1", Role: user.RoleHRProv})
	require.NoError(t, err)
	_, err = svc.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	other := NewJWTService("other-secret", "15m", "24h")
	_, err = other.ParseRefreshToken(refresh)
	assert.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", "15m", "24h")
	a, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	b, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m", "24h")

	token, expiresIn, err := svc.GenerateSSEToken("u-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	refresh, _, _ := svc.GenerateRefreshToken("u-1")
	_, err = svc.ValidateSSEToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m", "24h")
	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}
