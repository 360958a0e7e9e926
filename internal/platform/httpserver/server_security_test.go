package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	daoregistry "quorum/contexts/governance/dao-registry"
	powerledger "quorum/contexts/governance/power-ledger"
	proposalservice "quorum/contexts/governance/proposal-service"
	fundingescrow "quorum/contexts/treasury/funding-escrow"
	"quorum/internal/platform/chainclock"
)

func newTestServer() *Server {
	return New(
		daoregistry.NewInMemoryModule(slog.Default()),
		powerledger.NewInMemoryModule(slog.Default()),
		proposalservice.NewInMemoryModule(slog.Default()),
		fundingescrow.NewInMemoryModule(slog.Default()),
		chainclock.New(0),
		slog.Default(),
		":0",
	)
}

func TestRegisterOrganizationRequiresAccountHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"org_id":"org-1","name":"Collective"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/orgs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateProposalRequiresAccountHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"org_id":"org-1","title":"Fund the node","voting_start_epoch":1,"voting_end_epoch":5,"min_approval_percent":50}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/proposals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCastVoteRequiresAccountHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"kind":"yes"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/proposals/prop-1/votes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestContributeRequiresAccountHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"amount":100,"asset":"native"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/proposals/prop-1/funding/contributions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownOrganizationReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/orgs/no-such-org", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestEpochEndpointRejectsRegression(t *testing.T) {
	server := newTestServer()

	advance := httptest.NewRequest(http.MethodPost, "/v1/system/epoch", bytes.NewReader([]byte(`{"epoch":10}`)))
	advance.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, advance)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	regress := httptest.NewRequest(http.MethodPost, "/v1/system/epoch", bytes.NewReader([]byte(`{"epoch":4}`)))
	regress.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, regress)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}

	read := httptest.NewRequest(http.MethodGet, "/v1/system/epoch", nil)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, read)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload epochPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode epoch payload: %v", err)
	}
	if payload.Epoch != 10 {
		t.Fatalf("expected epoch 10 after rejected regression, got %d", payload.Epoch)
	}
}
