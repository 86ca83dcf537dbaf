package payments

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=payments_test

var (
	// ErrSessionIncomplete is returned when a checkout session exists but was not paid for.
	ErrSessionIncomplete = errors.New("subscription not completed")
	// ErrInvalidSignature is returned for webhook payloads that fail signature verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Provider is the payment processor the UI subscribes through.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, priceID string) (string, error)
	VerifySubscription(ctx context.Context, sessionID string) (*Verification, error)
	CreatePortalSession(ctx context.Context, req PortalRequest) (string, error)
	ConstructWebhookEvent(payload []byte, signature string) (Event, error)
}

type Verification struct {
	Success        bool          `json:"success"`
	SubscriptionID string        `json:"subscriptionId,omitempty"`
	Trial          *Trial        `json:"trial,omitempty"`
	Subscription   *Subscription `json:"subscription,omitempty"`
	Pricing        Pricing       `json:"pricing"`
}

type Trial struct {
	IsInTrial bool       `json:"isInTrial"`
	TrialEnd  *time.Time `json:"trialEnd"`
	TrialDays int64      `json:"trialDays"`
}

type Subscription struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	PriceAmount      string     `json:"priceAmount"`
	PriceCurrency    string     `json:"priceCurrency"`
	Interval         string     `json:"interval"`
}

type Pricing struct {
	TrialPeriod string `json:"trialPeriod"`
	AfterTrial  string `json:"afterTrial"`
}

// Event is the part of a verified webhook event the service acts on.
type Event struct {
	ID       string
	Type     string
	ObjectID string
}

const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionCreated  = "customer.subscription.created"
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventTrialWillEnd         = "customer.subscription.trial_will_end"
)

// unixTime turns a zero unix timestamp into nil.
func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
