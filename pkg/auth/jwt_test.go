package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		Secret:      "test-secret",
		ExpiryHours: 1,
		Issuer:      "clinic-api",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	actor := model.Actor{ID: uuid.New(), Role: model.RoleDoctor}

	token, err := svc.GenerateToken(actor)
	require.NoError(t, err)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)
}

func TestValidateToken(t *testing.T) {
	svc := newTestService()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{Secret: "other-secret", ExpiryHours: 1})
		token, err := other.GenerateToken(model.Actor{ID: uuid.New(), Role: model.RolePatient})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTService(JWTConfig{Secret: "test-secret", ExpiryHours: -1, Issuer: "clinic-api"})
		token, err := expired.GenerateToken(model.Actor{ID: uuid.New(), Role: model.RolePatient})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := svc.GenerateToken(model.Actor{ID: uuid.New(), Role: "superuser"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})
}
