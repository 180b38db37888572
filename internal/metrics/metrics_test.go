package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistriesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.OrdersCreated.Inc()
	a.ProductEvents.WithLabelValues("product_created").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.OrdersCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OrdersCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.ProductEvents.WithLabelValues("product_created")))
}

func TestHandler_ExposesDomainCounters(t *testing.T) {
	m := New()
	m.OrderItemsRejected.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_order_items_rejected_total 3")
}
