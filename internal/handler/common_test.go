package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/workflow"
)

func testContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  uint64
		ok    bool
	}{
		{"uint64", uint64(7), 7, true},
		{"int", 7, 7, true},
		{"int64", int64(7), 7, true},
		{"float64 from json claims", float64(7), 7, true},
		{"numeric string", "7", 7, true},
		{"garbage string", "seven", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := testContext(t, "/")
			if tc.value != nil {
				c.Set("user_id", tc.value)
			}
			got, err := getUserID(c)
			if tc.ok {
				require.NoError(t, err)
				require.Equal(t, tc.want, got)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	c, _ := testContext(t, "/")
	c.SetParamNames("id")
	c.SetParamValues("15")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	require.Equal(t, uint64(15), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		c, _ := testContext(t, "/")
		c.SetParamNames("id")
		c.SetParamValues(bad)
		_, err := pathID(c, "id")
		require.Error(t, err, "value %q", bad)
	}
}

func TestPagination(t *testing.T) {
	c, _ := testContext(t, "/")
	limit, offset := pagination(c)
	require.Equal(t, 20, limit)
	require.Zero(t, offset)

	c, _ = testContext(t, "/?limit=50&offset=10")
	limit, offset = pagination(c)
	require.Equal(t, 50, limit)
	require.Equal(t, 10, offset)

	c, _ = testContext(t, "/?limit=5000")
	limit, _ = pagination(c)
	require.Equal(t, 100, limit, "limit is clamped to the maximum page size")

	c, _ = testContext(t, "/?limit=-1&offset=-1")
	limit, offset = pagination(c)
	require.Equal(t, 20, limit)
	require.Zero(t, offset)
}

func TestRegistrationErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{repository.ErrEventNotFound, http.StatusNotFound},
		{repository.ErrRegistrationNotFound, http.StatusNotFound},
		{repository.ErrDuplicateRegistration, http.StatusConflict},
		{repository.ErrConflictStale, http.StatusConflict},
		{workflow.ErrEventFull, http.StatusConflict},
		{workflow.ErrInvalidTransition, http.StatusConflict},
		{workflow.ErrEventInactive, http.StatusBadRequest},
		{workflow.ErrRegistrationClosed, http.StatusBadRequest},
		{workflow.ErrNotAuthorized, http.StatusForbidden},
		{errors.New("broken pipe"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := testContext(t, "/")
		require.NoError(t, registrationError(c, tc.err))
		require.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}
