package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID string          `json:"uid"`
	Email  string          `json:"email"`
	Type   models.UserType `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() (*session.Session, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, err
	}
	return &session.Session{UserID: id, Email: c.Email, Type: c.Type}, nil
}

func GenerateTokens(user *models.User, secret string) (string, string, error) {
	access, err := signToken(user, secret, 15*time.Minute)
	if err != nil {
		return "", "", err
	}
	refresh, err := signToken(user, secret, 7*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func signToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Type:   user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

var errMissingHeader = errors.New("Missing authorization header")

func sessionFromHeader(c *fiber.Ctx, secret string) (*session.Session, error) {
	auth := c.Get("Authorization")
	if auth == "" {
		// Browsers cannot set headers on WebSocket upgrades.
		if q := c.Query("token"); q != "" {
			auth = "Bearer " + q
		} else {
			return nil, errMissingHeader
		}
	}

	tokenStr := strings.TrimPrefix(auth, "Bearer ")
	if tokenStr == auth {
		return nil, errors.New("Invalid authorization format")
	}

	claims, err := ParseToken(tokenStr, secret)
	if err != nil {
		return nil, errors.New("Invalid or expired token")
	}
	sess, err := claims.Session()
	if err != nil {
		return nil, errors.New("Invalid or expired token")
	}
	return sess, nil
}

func attach(c *fiber.Ctx, sess *session.Session) {
	c.Locals("session", sess)
	c.Locals("user_id", sess.UserID.String())
	c.SetUserContext(session.WithContext(c.UserContext(), sess))
}

func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessionFromHeader(c, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		}
		attach(c, sess)
		return c.Next()
	}
}

// OptionalSession attaches the session when a valid token is present and
// lets the request through either way.
func OptionalSession(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess, err := sessionFromHeader(c, secret); err == nil {
			attach(c, sess)
		}
		return c.Next()
	}
}

// CurrentSession returns the session attached by JWTProtected or
// OptionalSession.
func CurrentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals("session").(*session.Session)
	return s
}
