package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	manager, err := NewSessionManager(testSecret, 0, false)
	require.NoError(t, err)
	return manager
}

func TestNewSessionManagerRejectsShortSecret(t *testing.T) {
	_, err := NewSessionManager("short", time.Hour, false)
	require.Error(t, err)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	require.Equal(t, DefaultSessionTTL, manager.TTL())

	token, err := manager.Issue(SessionUser{ID: 7, Email: "teacher@example.com", Name: "Test Teacher", Role: "teacher"})
	require.NoError(t, err)

	user, err := manager.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), user.ID)
	require.Equal(t, "teacher@example.com", user.Email)
	require.Equal(t, "Test Teacher", user.Name)
	require.Equal(t, "teacher", user.Role)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := newTestManager(t)
	manager.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }

	token, err := manager.Issue(SessionUser{ID: 1})
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	manager := newTestManager(t)

	token, err := manager.Issue(SessionUser{ID: 1})
	require.NoError(t, err)

	_, err = manager.Verify(token + "x")
	require.ErrorIs(t, err, ErrInvalidSession)

	other, err := NewSessionManager(strings.Repeat("z", 40), time.Hour, false)
	require.NoError(t, err)
	foreign, err := other.Issue(SessionUser{ID: 1})
	require.NoError(t, err)
	_, err = manager.Verify(foreign)
	require.ErrorIs(t, err, ErrInvalidSession)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1, "iss": "mathgrader", "exp": time.Now().Add(time.Hour).Unix()})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = manager.Verify(noneToken)
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = manager.Verify("")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCookieAttributes(t *testing.T) {
	manager := newTestManager(t)
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		manager.SetCookie(c, "abc")
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		manager.ClearCookie(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/set", nil))
	require.NoError(t, err)
	cookie := strings.ToLower(resp.Header.Get("Set-Cookie"))
	require.Contains(t, cookie, "token=abc")
	require.Contains(t, cookie, "max-age=604800")
	require.Contains(t, cookie, "path=/")
	require.Contains(t, cookie, "httponly")
	require.Contains(t, cookie, "samesite=strict")

	resp, err = app.Test(httptest.NewRequest("GET", "/clear", nil))
	require.NoError(t, err)
	cleared := strings.ToLower(resp.Header.Get("Set-Cookie"))
	require.Contains(t, cleared, "token=;")
	require.Contains(t, cleared, "max-age=0")
	require.Contains(t, cleared, "1970")
	require.Contains(t, cleared, "path=/")
	require.Contains(t, cleared, "httponly")
	require.Contains(t, cleared, "samesite=strict")
}
