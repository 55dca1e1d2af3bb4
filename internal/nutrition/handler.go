package nutrition

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/metrics"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type AggregateRequest struct {
	Components []Profile `json:"components"`
	Beverage   *Profile  `json:"beverage,omitempty"`
	// StarRating is produced elsewhere and echoed back untouched.
	StarRating json.RawMessage `json:"starRating,omitempty"`
}

type AggregateResponse struct {
	Total      Profile         `json:"total"`
	StarRating json.RawMessage `json:"starRating,omitempty"`
}

type Handler struct {
	metricsManager *metrics.Manager
}

func NewHandler(metricsManager *metrics.Manager) *Handler {
	return &Handler{
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleScale(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.scale")
	defer span.End()

	if !isJSON(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req ScalingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("scale, unmarshal json params: %s", err)
		http.Error(w, "invalid scaling request", http.StatusBadRequest)
		return
	}

	result, err := Scale(req)
	if err != nil {
		if isBadInput(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to scale nutrition profile: %s", err)
		http.Error(w, "failed to scale", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(
		attribute.Float64("multiplier", result.Multiplier),
		attribute.Bool("invalid_reference", result.InvalidReference),
	)
	if result.InvalidReference {
		handler.metricsManager.CounterInvalidReferenceScaling.Inc()
		log.Warnf("scale: zero reference quantity, returning reference profile unscaled")
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal scale result: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resultJson)
}

func (handler *Handler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.aggregate")
	defer span.End()

	if !isJSON(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("aggregate, unmarshal json params: %s", err)
		http.Error(w, "invalid aggregate request", http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.Int("components", len(req.Components)),
		attribute.Bool("beverage", req.Beverage != nil),
	)

	total, err := Aggregate(req.Components, req.Beverage)
	if err != nil {
		if isBadInput(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to aggregate nutrition: %s", err)
		http.Error(w, "failed to aggregate", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(AggregateResponse{
		Total:      total,
		StarRating: req.StarRating,
	})
	if err != nil {
		log.Errorf("failed to marshal aggregate response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON)
}

func isBadInput(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrInvalidProfile)
}
