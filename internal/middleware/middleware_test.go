package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/metrics"
)

func TestRequestLogger_LogsStatusAndCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/items/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inner, done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inner))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))

	assert.Equal(t, "inside_handler", inner["msg"])
	assert.Equal(t, "rid-1", inner["request_id"])
	assert.Equal(t, "WARN", done["level"])
	assert.Equal(t, float64(404), done["status"])
	assert.Equal(t, "/items/:id", done["path"])
}

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(Metrics(m))
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "nope") })

	for _, path := range []string{"/items/1", "/items/2", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/fail", "409")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestInFlight))
}
