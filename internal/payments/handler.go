package payments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/internal/telemetry/tracing"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Stripe events are well under this; anything larger is refused, not cut.
const maxWebhookPayloadBytes = 1 << 20

type Handler struct {
	provider Provider
	metrics  *metrics.Manager
}

func NewHandler(provider Provider, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		provider: provider,
		metrics:  metricsManager,
	}
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
}

type urlResponse struct {
	URL string `json:"url"`
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}

func (h *Handler) HandleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.payments.checkout")
	defer span.End()

	var req checkoutRequest
	if err := decode(r, &req); err != nil || req.PriceID == "" {
		pkg.WriteJSONError(w, "Price ID is required", http.StatusBadRequest)
		return
	}

	url, err := h.provider.CreateCheckoutSession(ctx, req.PriceID)
	if err != nil {
		log.Errorf("create checkout session for price %s: %s", req.PriceID, err)
		pkg.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, urlResponse{URL: url}, http.StatusOK)
}

func (h *Handler) HandleVerifySubscription(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.payments.verify")
	defer span.End()

	var req verifyRequest
	if err := decode(r, &req); err != nil || req.SessionID == "" {
		pkg.WriteJSONError(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	verification, err := h.provider.VerifySubscription(ctx, req.SessionID)
	if errors.Is(err, ErrSessionIncomplete) {
		pkg.WriteJSONError(w, "Subscription not completed", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("verify subscription for session %s: %s", req.SessionID, err)
		pkg.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, verification, http.StatusOK)
}

func (h *Handler) HandleCustomerPortal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.payments.portal")
	defer span.End()

	var req PortalRequest
	if err := decode(r, &req); err != nil || req.CustomerID == "" {
		pkg.WriteJSONError(w, "Customer ID is required", http.StatusBadRequest)
		return
	}

	url, err := h.provider.CreatePortalSession(ctx, req)
	if err != nil {
		log.Errorf("create portal session for customer %s: %s", req.CustomerID, err)
		pkg.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, urlResponse{URL: url}, http.StatusOK)
}

// HandleWebhook verifies and acknowledges provider events. Nothing is
// persisted, the events are logged and counted.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.payments.webhook")
	defer span.End()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookPayloadBytes))
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		log.Warnf("webhook rejected: payload over %d bytes", maxBytesErr.Limit)
		pkg.WriteJSONError(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		pkg.WriteJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	event, err := h.provider.ConstructWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warnf("webhook rejected: %s", err)
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.metrics.CounterWebhookEvents.WithLabelValues(event.Type).Inc()

	switch event.Type {
	case EventCheckoutCompleted:
		log.Infof("checkout session completed: %s", event.ObjectID)
	case EventSubscriptionCreated:
		log.Infof("subscription created: %s", event.ObjectID)
	case EventSubscriptionUpdated, EventSubscriptionDeleted, EventTrialWillEnd:
		log.Infof("subscription event [%s]: %s", event.Type, event.ObjectID)
	case EventInvoicePaid:
		log.Infof("invoice paid: %s", event.ObjectID)
	case EventInvoicePaymentFailed:
		log.Warnf("invoice payment failed: %s", event.ObjectID)
	default:
		log.Debugf("unhandled webhook event type: %s", event.Type)
	}

	pkg.WriteJSON(w, map[string]bool{"received": true}, http.StatusOK)
}

// RegisterRoutes mounts the UI facing routes behind limiter. The webhook is
// called by the provider and is not rate limited.
func (h *Handler) RegisterRoutes(router *mux.Router, limiter mux.MiddlewareFunc) {
	limited := router.NewRoute().Subrouter()
	if limiter != nil {
		limited.Use(limiter)
	}
	limited.HandleFunc("/create-checkout-session", h.HandleCreateCheckoutSession).Methods("POST")
	limited.HandleFunc("/verify-subscription", h.HandleVerifySubscription).Methods("POST")
	limited.HandleFunc("/customer-portal", h.HandleCustomerPortal).Methods("POST")

	router.HandleFunc("/webhook", h.HandleWebhook).Methods("POST")
}
