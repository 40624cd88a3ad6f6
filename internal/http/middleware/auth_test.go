package middleware

import (
	"bytes"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomescape/internal/model"
)

const testSecret = "test-secret"

var (
	memberAlice = model.Member{ID: 7, Name: "alice", Role: model.RoleUser}
	memberAdmin = model.Member{ID: 1, Name: "admin", Role: model.RoleAdmin}
)

func mustToken(t *testing.T, m model.Member) string {
	t.Helper()
	tok, err := NewToken(testSecret, m, time.Hour)
	require.NoError(t, err)
	return tok
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(Auth(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, ok := MemberID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		role := c.Locals(MemberRoleLocalKey).(model.Role)
		return c.SendString(strconv.FormatInt(id, 10) + ":" + string(role))
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuth(t *testing.T) {
	app := newAuthApp()

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+mustToken(t, memberAlice))

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, "7:USER", buf.String())
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "bearer "+mustToken(t, memberAlice))

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	cases := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"missing header", func(*testing.T) string { return "" }},
		{"wrong scheme", func(t *testing.T) string { return "Basic " + mustToken(t, memberAlice) }},
		{"empty token", func(*testing.T) string { return "Bearer " }},
		{"garbage token", func(*testing.T) string { return "Bearer not.a.jwt" }},
		{"wrong secret", func(t *testing.T) string {
			tok, err := NewToken("other-secret", memberAlice, time.Hour)
			require.NoError(t, err)
			return "Bearer " + tok
		}},
		{"expired", func(t *testing.T) string {
			tok, err := NewToken(testSecret, memberAlice, -time.Minute)
			require.NoError(t, err)
			return "Bearer " + tok
		}},
		{"no expiry", func(t *testing.T) string {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
			}).SignedString([]byte(testSecret))
			require.NoError(t, err)
			return "Bearer " + tok
		}},
		{"non numeric subject", func(t *testing.T) string {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			}).SignedString([]byte(testSecret))
			require.NoError(t, err)
			return "Bearer " + tok
		}},
		{"other algorithm", func(t *testing.T) string {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "7", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			}).SignedString([]byte(testSecret))
			require.NoError(t, err)
			return "Bearer " + tok
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if h := tc.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}

			resp, _ := app.Test(req)

			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newAuthApp()

	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+mustToken(t, memberAdmin))

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("regular member", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+mustToken(t, memberAlice))

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("without auth", func(t *testing.T) {
		bare := fiber.New()
		bare.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

		resp, _ := bare.Test(httptest.NewRequest("GET", "/admin", nil))

		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestNewToken_Claims(t *testing.T) {
	tok := mustToken(t, memberAdmin)

	var claims Claims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })

	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "admin", claims.Name)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}
