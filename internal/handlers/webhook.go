package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fillout-webhook/internal/metrics"
	"fillout-webhook/internal/middleware"
	"fillout-webhook/internal/models"
	"fillout-webhook/internal/services/intake"
	"fillout-webhook/internal/utils"
)

// MaxBodyBytes caps the size of an accepted webhook body.
const MaxBodyBytes = 10 << 20

// invalidPayloadMessage is returned for bodies that cannot be normalized.
const invalidPayloadMessage = "Invalid form data structure"

// Processor handles one webhook body.
type Processor interface {
	Process(ctx context.Context, requestID string, body []byte) (*intake.Result, error)
}

// WebhookHandler receives Fillout form submissions.
type WebhookHandler struct {
	processor Processor
	metrics   *metrics.Metrics
}

// NewWebhookHandler creates a webhook handler. m may be nil.
func NewWebhookHandler(p Processor, m *metrics.Metrics) *WebhookHandler {
	return &WebhookHandler{processor: p, metrics: m}
}

// ServeHTTP handles POST and OPTIONS on the webhook route.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		setHeaders(w, corsHeaders())
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		h.metrics.ObserveRequest(metrics.OutcomeMethodNotAllowed)
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, Response{
			Success: false,
			Error:   "Method not allowed",
		})
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.metrics.ObserveRequest(metrics.OutcomeInvalidPayload)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, Response{
				Success: false,
				Error:   "Request body too large",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: invalidPayloadMessage})
		return
	}

	status, resp := h.process(r.Context(), requestID, body)
	writeJSON(w, status, resp)
}

// Handle processes API Gateway requests. A panic in the pipeline is answered
// with a 500 envelope, matching the HTTP server's recovery middleware.
func (h *WebhookHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	headers := corsHeaders()

	defer func() {
		if rec := recover(); rec != nil {
			utils.GetLogger().Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("request_id", request.RequestContext.RequestID),
				zap.Stack("stack"),
			)
			h.metrics.ObserveRequest(metrics.OutcomeError)
			resp, err = lambdaJSON(headers, http.StatusInternalServerError, Response{
				Success: false,
				Error:   fmt.Sprint(rec),
			})
		}
	}()

	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	if request.HTTPMethod != http.MethodPost {
		h.metrics.ObserveRequest(metrics.OutcomeMethodNotAllowed)
		return lambdaJSON(headers, http.StatusMethodNotAllowed, Response{
			Success: false,
			Error:   "Method not allowed",
		})
	}

	requestID := request.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			h.metrics.ObserveRequest(metrics.OutcomeInvalidPayload)
			return lambdaJSON(headers, http.StatusBadRequest, Response{Success: false, Error: invalidPayloadMessage})
		}
		body = decoded
	}

	status, envelope := h.process(ctx, requestID, body)
	return lambdaJSON(headers, status, envelope)
}

// process runs the pipeline and maps its outcome onto a status and envelope.
func (h *WebhookHandler) process(ctx context.Context, requestID string, body []byte) (int, Response) {
	logger := utils.GetLogger().With(zap.String("request_id", requestID))

	result, err := h.processor.Process(ctx, requestID, body)
	if err == nil {
		h.metrics.ObserveRequest(metrics.OutcomeOK)
		return http.StatusOK, Response{Success: true, Data: result}
	}

	var persistErr *models.PersistenceError
	switch {
	case errors.Is(err, models.ErrInvalidPayload):
		logger.Warn("Rejected webhook payload", zap.Error(err))
		h.metrics.ObserveRequest(metrics.OutcomeInvalidPayload)
		return http.StatusBadRequest, Response{Success: false, Error: invalidPayloadMessage}

	case errors.As(err, &persistErr):
		logger.Error("Failed to store form submission",
			zap.String("step", persistErr.Step),
			zap.Error(err),
		)
		h.metrics.ObserveRequest(metrics.OutcomePersistence)
		return http.StatusInternalServerError, Response{Success: false, Error: persistErr.Message()}

	default:
		logger.Error("Webhook processing failed", zap.Error(err))
		h.metrics.ObserveRequest(metrics.OutcomeError)
		return http.StatusInternalServerError, Response{Success: false, Error: err.Error()}
	}
}
