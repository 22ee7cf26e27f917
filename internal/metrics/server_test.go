package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/metrics"
)

func TestNewServer(t *testing.T) {
	assert.Nil(t, metrics.NewServer(""))

	srv := metrics.NewServer(":0")
	require.NotNil(t, srv)

	metrics.ReconcileRuns.WithLabelValues("MM", "ok").Inc()

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `nftsync_reconcile_runs_total{collection="MM",result="ok"}`)

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
