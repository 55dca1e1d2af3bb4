package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type AddMeasurementResponse struct {
	ID int64 `json:"id"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleTrend serves GET /clients/{client}/trends/{metric}?period=&mode=&polarity=
func (handler *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.trend")
	defer span.End()

	vars := mux.Vars(r)
	clientID := vars["client"]
	metricKey := vars["metric"]
	if clientID == "" || metricKey == "" {
		http.Error(w, "error, client or metric empty", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	period, mode, ok := parsePeriodAndMode(w, query.Get("period"), query.Get("mode"))
	if !ok {
		return
	}
	polarity, err := trends.ParsePolarity(query.Get("polarity"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := handler.service.Trend(ctx, TrendParams{
		ClientID:  clientID,
		MetricKey: metricKey,
		Period:    period,
		Mode:      mode,
		Polarity:  polarity,
	})
	if err != nil {
		if trends.IsValidationErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to get trend [%s/%s]: %s", clientID, metricKey, err)
		http.Error(w, "failed to get trend", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("points", len(view.Series.Points)))

	viewJson, err := json.Marshal(view)
	if err != nil {
		log.Errorf("failed to marshal trend: %s", err)
		http.Error(w, "failed to marshal trend", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, viewJson, http.StatusOK)
}

// HandleOverlay serves GET /clients/{client}/overlay?metric=a&metric=b&period=&mode=&lower=b
// Metrics listed under "lower" are summarized as lowerIsBetter.
func (handler *Handler) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.overlay")
	defer span.End()

	clientID := mux.Vars(r)["client"]
	if clientID == "" {
		http.Error(w, "error, client empty", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	metricKeys := splitList(query["metric"])
	if len(metricKeys) == 0 {
		http.Error(w, "error, no metrics requested", http.StatusBadRequest)
		return
	}
	period, mode, ok := parsePeriodAndMode(w, query.Get("period"), query.Get("mode"))
	if !ok {
		return
	}

	polarities := make(map[string]trends.Polarity)
	for _, metricKey := range splitList(query["lower"]) {
		polarities[metricKey] = trends.LowerIsBetter
	}

	view, err := handler.service.Overlay(ctx, OverlayParams{
		ClientID:   clientID,
		MetricKeys: metricKeys,
		Period:     period,
		Mode:       mode,
		Polarities: polarities,
	})
	if err != nil {
		if trends.IsValidationErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to get overlay [%s] %v: %s", clientID, metricKeys, err)
		http.Error(w, "failed to get overlay", http.StatusInternalServerError)
		return
	}

	viewJson, err := json.Marshal(view)
	if err != nil {
		log.Errorf("failed to marshal overlay: %s", err)
		http.Error(w, "failed to marshal overlay", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, viewJson, http.StatusOK)
}

// HandleAddMeasurement serves POST /clients/{client}/measurements
func (handler *Handler) HandleAddMeasurement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.add_measurement")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	clientID := mux.Vars(r)["client"]
	if clientID == "" {
		http.Error(w, "error, client empty", http.StatusBadRequest)
		return
	}

	var m trends.Measurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		log.Tracef("add measurement, unmarshal json params: %s", err)
		http.Error(w, "invalid measurement", http.StatusBadRequest)
		return
	}

	id, err := handler.service.AddMeasurement(ctx, clientID, m)
	if err != nil {
		if trends.IsValidationErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add measurement [%s/%s]: %s", clientID, m.MetricKey, err)
		http.Error(w, "failed to add measurement", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(AddMeasurementResponse{ID: id})
	if err != nil {
		log.Errorf("failed to marshal add measurement response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	log.Debugf("measurement added [%s/%s]: %d", clientID, m.MetricKey, id)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

// parsePeriodAndMode writes a 400 and returns false on bad input. The period is
// required, an empty mode means carry forward.
func parsePeriodAndMode(w http.ResponseWriter, rawPeriod, rawMode string) (trends.Period, trends.Mode, bool) {
	if rawPeriod == "" {
		http.Error(w, "error, period empty", http.StatusBadRequest)
		return "", "", false
	}
	period, err := trends.ParsePeriod(rawPeriod)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}

	mode := trends.ModeCarryForward
	if rawMode != "" {
		mode, err = trends.ParseMode(rawMode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return "", "", false
		}
	}

	return period, mode, true
}

// splitList accepts both repeated params and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
