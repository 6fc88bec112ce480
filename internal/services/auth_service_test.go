package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hopehands/volunteer-backend/internal/config"
	"github.com/hopehands/volunteer-backend/internal/dto"
	"github.com/hopehands/volunteer-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
}

func TestRegister(t *testing.T) {
	t.Run("returns a token pair for a new admin", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		resp, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "admin@example.com", resp.User.Email)
		assert.Equal(t, "admin", resp.User.Role)
	})

	t.Run("access token carries the user claims", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		resp, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
		require.NoError(t, err)

		token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, resp.User.ID.String(), claims["sub"])
		assert.Equal(t, "admin@example.com", claims["email"])
		assert.Equal(t, "admin", claims["role"])
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		_, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
		require.NoError(t, err)

		_, err = svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		_, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "short"})
		assert.Error(t, err)
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		_, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
		require.NoError(t, err)

		var user models.User
		require.NoError(t, db.First(&user, "email = ?", "admin@example.com").Error)
		assert.NotEqual(t, "supersecret", user.Password)
	})
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
	require.NoError(t, err)

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		resp, err := svc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "supersecret"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is rejected with the same error", func(t *testing.T) {
		_, err := svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("a live refresh token is rotated", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		initial, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
		require.NoError(t, err)

		rotated, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: initial.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, rotated.AccessToken)
		assert.NotEqual(t, initial.RefreshToken, rotated.RefreshToken)

		// The presented token is single use.
		_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: initial.RefreshToken})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("an expired token is rejected and revoked", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := testConfig()
		cfg.JWTRefreshExpiry = -time.Minute
		svc := NewAuthService(db, cfg)

		initial, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
		require.NoError(t, err)

		_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: initial.RefreshToken})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewAuthService(db, testConfig())

		_, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: "not-a-real-token"})
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	initial, err := svc.Register(&dto.RegisterRequest{Email: "admin@example.com", Password: "supersecret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: initial.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: initial.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
