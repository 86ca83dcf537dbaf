package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/weeklyfit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultPriceAmount   = "1.00"
	defaultPriceCurrency = "USD"
	defaultInterval      = "month"
)

type StripeParams struct {
	SecretKey     string
	WebhookSecret string
	// Domain is the UI origin checkout redirects back to.
	Domain          string
	TrialPeriodDays int64
	TracingEnabled  bool
}

type StripeProvider struct {
	api             *client.API
	webhookSecret   string
	domain          string
	trialPeriodDays int64
}

var _ Provider = (*StripeProvider)(nil)

func NewStripeProvider(params StripeParams) (*StripeProvider, error) {
	if params.SecretKey == "" {
		return nil, errors.New("stripe secret key not set")
	}
	if params.Domain == "" {
		return nil, errors.New("payments domain not set")
	}

	httpClient := &http.Client{Timeout: 80 * time.Second}
	if params.TracingEnabled {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	backendConfig := &stripe.BackendConfig{
		HTTPClient:    httpClient,
		LeveledLogger: log.StandardLogger(),
	}

	api := client.New(params.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	})

	return &StripeProvider{
		api:             api,
		webhookSecret:   params.WebhookSecret,
		domain:          strings.TrimSuffix(params.Domain, "/"),
		trialPeriodDays: params.TrialPeriodDays,
	}, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, priceID string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripe.checkout.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(p.trialPeriodDays),
		},
		SuccessURL: stripe.String(p.domain + "/success"),
		CancelURL:  stripe.String(p.domain + "/cancel"),
	}
	params.Context = ctx

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	return session.URL, nil
}

func (p *StripeProvider) VerifySubscription(ctx context.Context, sessionID string) (_ *Verification, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripe.subscription.verify")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	sessionParams := &stripe.CheckoutSessionParams{}
	sessionParams.Context = ctx
	session, err := p.api.CheckoutSessions.Get(sessionID, sessionParams)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", sessionID, err)
	}
	if session.Status != stripe.CheckoutSessionStatusComplete {
		return nil, ErrSessionIncomplete
	}

	verification := &Verification{
		Success: true,
		Pricing: Pricing{
			TrialPeriod: "First month FREE",
			AfterTrial:  "$" + defaultPriceAmount + "/" + defaultInterval,
		},
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return verification, nil
	}
	verification.SubscriptionID = session.Subscription.ID

	subParams := &stripe.SubscriptionParams{}
	subParams.Context = ctx
	sub, err := p.api.Subscriptions.Get(session.Subscription.ID, subParams)
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", session.Subscription.ID, err)
	}

	verification.Trial = &Trial{
		IsInTrial: sub.Status == stripe.SubscriptionStatusTrialing,
		TrialEnd:  unixTime(sub.TrialEnd),
		TrialDays: p.trialPeriodDays,
	}
	verification.Subscription = subscriptionDetails(sub)
	verification.Pricing.AfterTrial = fmt.Sprintf(
		"$%s/%s", verification.Subscription.PriceAmount, verification.Subscription.Interval,
	)

	return verification, nil
}

// subscriptionDetails reads the price off the first subscription item,
// falling back to the advertised plan.
func subscriptionDetails(sub *stripe.Subscription) *Subscription {
	details := &Subscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: unixTime(sub.CurrentPeriodEnd),
		PriceAmount:      defaultPriceAmount,
		PriceCurrency:    defaultPriceCurrency,
		Interval:         defaultInterval,
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return details
	}

	price := sub.Items.Data[0].Price
	if price.UnitAmount > 0 {
		details.PriceAmount = fmt.Sprintf("%d.%02d", price.UnitAmount/100, price.UnitAmount%100)
	}
	if price.Currency != "" {
		details.PriceCurrency = strings.ToUpper(string(price.Currency))
	}
	if price.Recurring != nil && price.Recurring.Interval != "" {
		details.Interval = string(price.Recurring.Interval)
	}
	return details
}

type PortalRequest struct {
	CustomerID string `json:"customerId"`
	ReturnURL  string `json:"returnUrl"`
	// SubscriptionID, when set, opens the portal directly on the cancel flow.
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, req PortalRequest) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stripe.portal.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = p.domain
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(req.CustomerID),
		ReturnURL: stripe.String(returnURL),
	}
	if req.SubscriptionID != "" {
		params.FlowData = &stripe.BillingPortalSessionFlowDataParams{
			Type: stripe.String("subscription_cancel"),
			SubscriptionCancel: &stripe.BillingPortalSessionFlowDataSubscriptionCancelParams{
				Subscription: stripe.String(req.SubscriptionID),
			},
		}
	}
	params.Context = ctx

	session, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return session.URL, nil
}

func (p *StripeProvider) ConstructWebhookEvent(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	e := Event{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if event.Data != nil {
		if id, ok := event.Data.Object["id"].(string); ok {
			e.ObjectID = id
		}
	}
	return e, nil
}
