package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/tokens"
)

func TestIdentity(t *testing.T) {
	secret := []byte("secret")
	valid, _, err := tokens.SignAccessToken(7, "admin", secret, time.Now())
	require.NoError(t, err)
	foreign, _, err := tokens.SignAccessToken(7, "admin", []byte("other"), time.Now())
	require.NoError(t, err)

	e := echo.New()
	e.Use(Identity(secret))
	e.GET("/whoami", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		role, _ := c.Get(ContextRole).(string)
		return c.JSON(http.StatusOK, map[string]any{"id": id, "role": role})
	})

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"no token", func(*http.Request) {}, "anonymous"},
		{"bearer header", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+valid) }, `{"id":7,"role":"admin"}`},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: valid}) }, `{"id":7,"role":"admin"}`},
		{"wrong secret", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+foreign) }, "anonymous"},
		{"not bearer", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic abc") }, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			if tt.want == "anonymous" {
				assert.Equal(t, tt.want, rec.Body.String())
				return
			}
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}
