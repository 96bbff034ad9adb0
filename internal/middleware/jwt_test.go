package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = JWTConfig{Secret: "s3cret", Issuer: "foxops-dashboard", ExpiresIn: time.Hour}

func testUser() *domain.User {
	return &domain.User{ID: "u-1", TokenFingerprint: "abc123"}
}

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWT)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testJWT)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "abc123", claims.Fingerprint)
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT(testUser(), JWTConfig{Issuer: "x"})
	assert.Error(t, err)
}

func TestValidateJWT_Failures(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWT)
	require.NoError(t, err)

	expired, err := GenerateJWT(testUser(), JWTConfig{Secret: testJWT.Secret, Issuer: testJWT.Issuer, ExpiresIn: -time.Minute})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		cfg   JWTConfig
		want  error
	}{
		{"format", "abc", testJWT, port.ErrTokenInvalid},
		{"signature", token, JWTConfig{Secret: "other", Issuer: testJWT.Issuer}, port.ErrTokenInvalid},
		{"issuer", token, JWTConfig{Secret: testJWT.Secret, Issuer: "other"}, port.ErrTokenInvalid},
		{"expired", expired, testJWT, port.ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token, tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTMiddleware(testJWT))
	app.Get("/me", func(c fiber.Ctx) error {
		return c.SendString(GetUserContext(c).UserID)
	})
	return app
}

func TestJWTMiddleware_Header(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWT)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newProtectedApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "u-1", string(body))
}

func TestJWTMiddleware_QueryToken(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWT)
	require.NoError(t, err)

	resp, err := newProtectedApp().Test(httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "token invalid"))
}
