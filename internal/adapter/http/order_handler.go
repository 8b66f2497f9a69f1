package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/app/kitchen"
	"github.com/YelzhanWeb/ckitchens/internal/domain"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/google/uuid"
)

type OrderHandler struct {
	kitchen interfaces.KitchenService
	logger  logger.Logger
}

func NewOrderHandler(kitchen interfaces.KitchenService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		kitchen: kitchen,
		logger:  logger,
	}
}

type CreateOrderResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Temperature string `json:"temperature"`
	Status      string `json:"status"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// CreateOrder accepts one order definition and queues it for cooking
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req interfaces.OrderMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateOrderMessage(req); len(validationErrors) > 0 {
		h.logger.Error("validation_failed", "Order validation failed", requestID(r), map[string]interface{}{
			"errors": validationErrors,
		}, fmt.Errorf("validation failed"))

		respondError(w, "Validation failed", http.StatusBadRequest, validationErrors)
		return
	}

	o, err := req.ToOrder()
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.kitchen.Submit(r.Context(), o); err != nil {
		h.logger.Error("order_submit_failed", "Failed to submit order", requestID(r), nil, err)
		if errors.Is(err, kitchen.ErrClosed) {
			respondError(w, "Kitchen is closed", http.StatusServiceUnavailable, nil)
			return
		}
		if errors.Is(err, kitchen.ErrDuplicateOrder) {
			respondError(w, "Order already submitted", http.StatusConflict, nil)
			return
		}
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	respondJSON(w, http.StatusAccepted, CreateOrderResponse{
		ID:          o.ID.String(),
		Name:        o.Name,
		Temperature: string(o.Temp),
		Status:      "accepted",
	})
}

func validateOrderMessage(req interfaces.OrderMessage) []ValidationError {
	var errs []ValidationError

	if id := strings.TrimSpace(req.ID); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			errs = append(errs, ValidationError{Field: "id", Message: "id must be a UUID"})
		}
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 1 {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	} else if len(name) > 100 {
		errs = append(errs, ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}

	if _, err := domain.ParseTemperature(req.Temp); err != nil {
		errs = append(errs, ValidationError{Field: "temp", Message: "temp must be one of: hot, cold, frozen"})
	}

	if req.ShelfLife < 1 {
		errs = append(errs, ValidationError{Field: "shelfLife", Message: "shelf life must be at least 1 second"})
	}

	if req.DecayRate < 0 || math.IsNaN(req.DecayRate) {
		errs = append(errs, ValidationError{Field: "decayRate", Message: "decay rate must not be negative"})
	}

	return errs
}
