package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"fillout-webhook/internal/utils"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Fillout to Supabase Webhook"

// Prober checks connectivity to the backing store.
type Prober interface {
	Probe(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	store Prober
	now   func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store Prober) *HealthHandler {
	return &HealthHandler{store: store, now: time.Now}
}

// StoreStatus reports store connectivity.
type StoreStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Service   string      `json:"service"`
	Supabase  StoreStatus `json:"supabase"`
}

// Check probes the store and builds the health response.
func (h *HealthHandler) Check(ctx context.Context) (int, HealthResponse) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Service:   ServiceName,
		Supabase:  StoreStatus{Connected: true},
	}

	if err := h.store.Probe(ctx); err != nil {
		utils.GetLogger().Warn("Health probe failed", zap.Error(err))
		response.Status = "error"
		response.Supabase = StoreStatus{Connected: false, Error: err.Error()}
		return http.StatusInternalServerError, response
	}

	return http.StatusOK, response
}

// ServeHTTP handles GET health requests.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "Method not allowed"})
		return
	}

	status, response := h.Check(r.Context())
	writeJSON(w, status, response)
}

// Handle processes API Gateway health requests.
func (h *HealthHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	status, response := h.Check(ctx)
	return lambdaJSON(headers, status, response)
}
