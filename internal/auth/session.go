package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the session credential.
const CookieName = "token"

// DefaultSessionTTL is how long a session credential stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

const minSecretLength = 32

// ErrInvalidSession is returned when a credential is missing, expired or tampered with.
var ErrInvalidSession = errors.New("invalid session")

// SessionUser is the identity embedded in a session credential.
type SessionUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type sessionClaims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies signed session cookies.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	issuer string
	now    func() time.Time
}

// NewSessionManager validates the secret and builds a manager.
func NewSessionManager(secret string, ttl time.Duration, secure bool) (*SessionManager, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		issuer: "mathgrader",
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued credentials.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a credential for the given user.
func (m *SessionManager) Issue(user SessionUser) (string, error) {
	now := m.now()
	claims := sessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return signed, nil
}

// Verify parses a credential and returns the embedded user.
func (m *SessionManager) Verify(tokenString string) (SessionUser, error) {
	if tokenString == "" {
		return SessionUser{}, ErrInvalidSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return SessionUser{}, ErrInvalidSession
	}
	if claims.UserID == 0 {
		return SessionUser{}, ErrInvalidSession
	}

	return SessionUser{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

// SetCookie attaches the credential to the response.
func (m *SessionManager) SetCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  m.now().Add(m.ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// ClearCookie expires the session cookie on the client with Max-Age=0. fasthttp omits
// Max-Age when it is not positive, so the header is formatted by net/http instead.
func (m *SessionManager) ClearCookie(c *fiber.Ctx) {
	cleared := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
	c.Response().Header.Set(fiber.HeaderSetCookie, cleared.String())
}
