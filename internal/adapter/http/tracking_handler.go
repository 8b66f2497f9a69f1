package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/app/tracking"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/google/uuid"
)

type TrackingHandler struct {
	service interfaces.TrackingService
	logger  logger.Logger
}

func NewTrackingHandler(service interfaces.TrackingService, logger logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TrackingHandler) GetShelves(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetShelves(r.Context())
	if err != nil {
		h.logger.Error("snapshot_failed", "Failed to read shelves", requestID(r), nil, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *TrackingHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, "Invalid order id", http.StatusBadRequest, nil)
		return
	}

	history, err := h.service.GetOrderHistory(r.Context(), id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		respondError(w, "Order not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		h.logger.Error("history_failed", "Failed to read order history", requestID(r), nil, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// GetStats serves in-process counters, or ledger totals with ?source=ledger
func (h *TrackingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats map[domain.Action]int
		err   error
	)
	switch r.URL.Query().Get("source") {
	case "", "memory":
		stats, err = h.service.GetStats(r.Context())
	case "ledger":
		stats, err = h.service.GetLedgerStats(r.Context())
	default:
		respondError(w, "source must be memory or ledger", http.StatusBadRequest, nil)
		return
	}

	if errors.Is(err, tracking.ErrLedgerDisabled) {
		respondError(w, err.Error(), http.StatusNotFound, nil)
		return
	}
	if err != nil {
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *TrackingHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, message string, status int, validationErrors []ValidationError) {
	respondJSON(w, status, ErrorResponse{
		Error:  message,
		Errors: validationErrors,
	})
}
