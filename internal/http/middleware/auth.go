package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"roomescape/internal/model"
)

const (
	// MemberIDLocalKey holds the authenticated member's id (int64).
	MemberIDLocalKey = "member_id"
	// MemberRoleLocalKey holds the authenticated member's role (model.Role).
	MemberRoleLocalKey = "member_role"
)

var (
	errMissingToken = fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	errInvalidToken = fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	errAdminOnly    = fiber.NewError(fiber.StatusForbidden, "admin role required")
)

// Claims is the payload of a member access token. Subject is the member id.
type Claims struct {
	Name string     `json:"name"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 access token for m that expires after ttl.
func NewToken(secret string, m model.Member, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: m.Name,
		Role: m.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(m.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth verifies the bearer token and stores the member id and role in locals.
// Failures are returned as 401 fiber errors for the global error handler.
func Auth(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *fiber.Ctx) error {
		raw, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return errMissingToken
		}

		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
			return errInvalidToken
		}
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil || id <= 0 {
			return errInvalidToken
		}
		role := claims.Role
		if role == "" {
			role = model.RoleUser
		}

		c.Locals(MemberIDLocalKey, id)
		c.Locals(MemberRoleLocalKey, role)
		return c.Next()
	}
}

// RequireAdmin rejects members without the ADMIN role. It must run after Auth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(MemberRoleLocalKey).(model.Role); role != model.RoleAdmin {
			return errAdminOnly
		}
		return c.Next()
	}
}

// MemberID returns the member authenticated by Auth.
func MemberID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(MemberIDLocalKey).(int64)
	return id, ok
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
