package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerCountsRequests(t *testing.T) {
	server := newTestServer()
	counter := requestsTotal.WithLabelValues("get", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/v1/system/epoch", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if after := testutil.ToFloat64(counter); after != before+1 {
		t.Fatalf("expected request counter %v, got %v", before+1, after)
	}
}
