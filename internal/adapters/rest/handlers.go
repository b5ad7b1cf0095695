package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/contracts"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
)

const (
	maxRequestBodyBytes = 1 << 20
	invalidBodyMessage  = "Invalid request body"
)

type ValuationHandlers struct {
	predictUC usecases_port.PredictPriceUseCasePort
	modelID   string
	metrics   *Metrics
}

func NewValuationHandlers(predictUC usecases_port.PredictPriceUseCasePort, modelID string, metrics *Metrics) *ValuationHandlers {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &ValuationHandlers{
		predictUC: predictUC,
		modelID:   modelID,
		metrics:   metrics,
	}
}

// HandlePredict serves POST /predict. The API key has already been checked
// by APIKeyMiddleware.
func (h *ValuationHandlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandlePredict"})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		h.metrics.observe(OutcomeBadRequest, 0)
		logger.Warn("Failed to read request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}
	if len(body) == 0 {
		h.metrics.observe(OutcomeBadRequest, 0)
		logger.Warn("Request body is empty", nil)
		WriteJSONError(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	err = contracts.ValidateRequest(constants.SchemaPropertyInfoRequest, constants.SchemaPropertyInfoRequestVersion, body)
	switch {
	case err == nil:
	case errors.Is(err, contracts.ErrMalformedJSON):
		h.metrics.observe(OutcomeBadRequest, 0)
		logger.Warn("Malformed request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, invalidBodyMessage)
		return
	case errors.Is(err, contracts.ErrSchemaMismatch):
		h.metrics.observe(OutcomeInvalidPayload, 0)
		logger.Warn("Request does not match schema", port.Fields{"violations": err.Error()})
		WriteJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid property info: %v", err))
		return
	default:
		h.metrics.observe(OutcomeFailure, 0)
		logger.Error("Schema validation unavailable", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	var reqDTO PropertyInfoRequestDTO
	if err := json.Unmarshal(body, &reqDTO); err != nil {
		h.metrics.observe(OutcomeInvalidPayload, 0)
		logger.Warn("Failed to decode property info", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusUnprocessableEntity, "Invalid property info")
		return
	}

	started := time.Now()
	price, err := h.predictUC.Execute(r.Context(), reqDTO.ToDomain())
	if err != nil {
		h.metrics.observe(OutcomeFailure, 0)
		logger.Error("Prediction failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}
	h.metrics.observe(OutcomeSuccess, time.Since(started).Seconds())

	RespondWithJSON(w, http.StatusOK, PredictionResponseDTO{EstimatedPrice: price})
}

// HandleHealth serves GET /healthz.
func (h *ValuationHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, HealthResponseDTO{Status: "ok", ModelID: h.modelID})
}
