package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

func TestHealth(t *testing.T) {
	cases := []struct {
		name    string
		pingErr error
		code    int
		db      string
	}{
		{"up", nil, http.StatusOK, `"db":"up"`},
		{"down", errors.New("gone"), http.StatusServiceUnavailable, `"db":"down"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			mock.ExpectPing().WillReturnError(tc.pingErr)

			h := &HealthHandler{DB: db}
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
			if err := h.Health(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.code || !strings.Contains(rec.Body.String(), tc.db) {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), `"redis":"disabled"`) {
				t.Fatalf("body = %s", rec.Body)
			}
		})
	}
}
