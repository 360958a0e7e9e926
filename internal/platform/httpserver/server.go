package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	daoregistry "quorum/contexts/governance/dao-registry"
	powerledger "quorum/contexts/governance/power-ledger"
	proposalservice "quorum/contexts/governance/proposal-service"
	fundingescrow "quorum/contexts/treasury/funding-escrow"
	"quorum/internal/platform/chainclock"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

// X-Account-Id carries the caller's account handle; authentication itself is
// the host environment's concern.
const accountHeader = "X-Account-Id"

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	registry  daoregistry.Module
	powers    powerledger.Module
	proposals proposalservice.Module
	escrow    fundingescrow.Module
	clock     *chainclock.Counter
}

func New(
	registry daoregistry.Module,
	powers powerledger.Module,
	proposals proposalservice.Module,
	escrow fundingescrow.Module,
	clock *chainclock.Counter,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		registry:  registry,
		powers:    powers,
		proposals: proposals,
		escrow:    escrow,
		clock:     clock,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, instrument(s.mux))
}

// Handler exposes the instrumented mux for tests.
func (s *Server) Handler() http.Handler {
	return instrument(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /v1/system/epoch", s.handleGetEpoch)
	s.mux.HandleFunc("POST /v1/system/epoch", s.handleSetEpoch)

	s.registerRegistryRoutes()
	s.registerPowerRoutes()
	s.registerProposalRoutes()
	s.registerEscrowRoutes()
}

type epochPayload struct {
	Epoch uint64 `json:"epoch"`
}

func (s *Server) handleGetEpoch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, epochPayload{Epoch: s.clock.Epoch()})
}

// handleSetEpoch is the host environment's clock hook. Regressions are
// rejected so every module observes a non-decreasing epoch.
func (s *Server) handleSetEpoch(w http.ResponseWriter, r *http.Request) {
	var req epochPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.clock.Set(req.Epoch); err != nil {
		if errors.Is(err, chainclock.ErrClockRegression) {
			writeError(w, http.StatusConflict, "clock_regression", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, epochPayload{Epoch: s.clock.Epoch()})
}

func callerAccount(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(accountHeader))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
