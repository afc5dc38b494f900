package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/utils"
)

const testSecret = "test-secret"

func do(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "ORGANIZER", 15)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		require.EqualValues(t, 42, c.Get("user_id"))
		require.Equal(t, "ORGANIZER", c.Get("role"))
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		rec := do(t, JWTAuth(testSecret), "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		rec := do(t, JWTAuth(testSecret), "Basic dXNlcjpwdw==")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(t, JWTAuth(testSecret), "Bearer not.a.jwt")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, "ADMIN", 15)
		require.NoError(t, err)
		rec := do(t, JWTAuth(testSecret), "Bearer "+tok.Token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, "ADMIN", -1)
		require.NoError(t, err)
		rec := do(t, JWTAuth(testSecret), "Bearer "+tok.Token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(role interface{}, allowed ...string) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		handler := RequireRole(allowed...)(func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		require.NoError(t, handler(c))
		return rec
	}

	require.Equal(t, http.StatusOK, run("ORGANIZER", "ORGANIZER", "ADMIN").Code)
	require.Equal(t, http.StatusForbidden, run("PARTICIPANT", "ORGANIZER", "ADMIN").Code)
	require.Equal(t, http.StatusForbidden, run(nil, "ADMIN").Code)
	require.Equal(t, http.StatusForbidden, run(123, "ADMIN").Code)
}
