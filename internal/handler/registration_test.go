package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/repository"
)

// stubAuthorizer answers CanDecide with a fixed verdict.
type stubAuthorizer struct {
	ok  bool
	err error
}

func (a stubAuthorizer) CanDecide(context.Context, uint64, uint64) (bool, error) {
	return a.ok, a.err
}

func organizerScopedContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(42))
	c.SetParamNames("id")
	c.SetParamValues("1")
	return c, rec
}

func TestListByEvent_DeniedCallerGetsOnlyForbidden(t *testing.T) {
	// The repo is never reached on the denied path; a nil DB handle would
	// panic if the handler kept executing past the 403.
	h := &RegistrationHandler{
		Regs: repository.NewRegistrationRepo(nil),
		Auth: stubAuthorizer{ok: false},
	}
	c, rec := organizerScopedContext(t, "/v1/events/1/registrations")

	require.NoError(t, h.ListByEvent(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "{\"error\":\"forbidden\"}\n", rec.Body.String(),
		"the 403 must be the only body written")
}

func TestStats_DeniedCallerGetsOnlyForbidden(t *testing.T) {
	h := &RegistrationHandler{
		Regs: repository.NewRegistrationRepo(nil),
		Auth: stubAuthorizer{ok: false},
	}
	c, rec := organizerScopedContext(t, "/v1/events/1/registrations/stats")

	require.NoError(t, h.Stats(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "{\"error\":\"forbidden\"}\n", rec.Body.String(),
		"the 403 must be the only body written")
}

func TestListByEvent_UnknownEventIsNotFound(t *testing.T) {
	h := &RegistrationHandler{
		Regs: repository.NewRegistrationRepo(nil),
		Auth: stubAuthorizer{err: repository.ErrEventNotFound},
	}
	c, rec := organizerScopedContext(t, "/v1/events/1/registrations")

	require.NoError(t, h.ListByEvent(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "{\"error\":\"event not found\"}\n", rec.Body.String())
}
