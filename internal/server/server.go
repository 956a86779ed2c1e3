// Package server exposes the engine over a JSON HTTP API for the
// presentation layer. The engine itself stays pure; this is the transport
// shell around it.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/buyerboard/finance-engine/internal/config"
	"github.com/buyerboard/finance-engine/internal/engine"
	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/projection"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	engine        *engine.Engine
	projector     *projection.Projector
	conf          *config.Configuration
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the report API.
func NewHandler(logger *zap.Logger, conf *config.Configuration, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = &config.Configuration{}
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		engine:        engine.New(logger),
		projector:     projection.NewProjector(logger),
		conf:          conf,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/report", h.handleReport).Methods(http.MethodPost)
	router.HandleFunc("/api/projection", h.handleProjection).Methods(http.MethodPost)
	router.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	router.HandleFunc("/api/config/export", h.handleConfigExport).Methods(http.MethodGet)

	return router
}

type reportResponse struct {
	Report   engine.Report `json:"report"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration string        `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var in engine.Input
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	report, err := h.engine.Run(in, h.conf)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := reportResponse{
		Report:   report,
		Warnings: h.conf.ValidateConfiguration(),
		Duration: time.Since(start).String(),
	}

	h.logger.Info("report computed",
		zap.String("op", "server.handleReport"),
		zap.Int("records", len(in.Records)),
		zap.String("duration", resp.Duration),
	)

	h.writeJSON(w, http.StatusOK, resp)
}

// projectionRequest is a snapshot plus the projection knobs, without the
// record batch the full report endpoint requires.
type projectionRequest struct {
	Snapshot        projection.Snapshot `json:"snapshot"`
	Now             time.Time           `json:"now,omitempty"`
	HorizonDays     int                 `json:"horizonDays,omitempty"`
	DailyMediaSpend float64             `json:"dailyMediaSpend,omitempty"`
}

type projectionResponse struct {
	Projection []projection.Day `json:"projection"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req projectionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = h.conf.HorizonDays()
	}

	series := h.projector.Project(projection.Input{
		StartingBalance: req.Snapshot.TotalCash(),
		Today:           now,
		HorizonDays:     horizon,
		DailyMediaSpend: req.DailyMediaSpend,
		Snapshot:        req.Snapshot,
	})

	h.logger.Info("projection computed",
		zap.String("op", "server.handleProjection"),
		zap.Int("horizonDays", len(series)),
	)

	h.writeJSON(w, http.StatusOK, projectionResponse{Projection: series})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, _ *http.Request) {
	data, err := yaml.Marshal(h.conf)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to serialize config: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.logger.Warn("request failed",
		zap.String("op", "server.writeError"),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, errorResponse{Error: msg})
}
