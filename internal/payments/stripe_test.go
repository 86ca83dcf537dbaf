package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

const testWebhookSecret = "whsec_test_secret"

func newTestStripeProvider(t *testing.T) *StripeProvider {
	t.Helper()
	p, err := NewStripeProvider(StripeParams{
		SecretKey:       "sk_test_123",
		WebhookSecret:   testWebhookSecret,
		Domain:          "https://weeklyfit.app/",
		TrialPeriodDays: 30,
	})
	require.NoError(t, err)
	return p
}

func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts.Unix())))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestNewStripeProvider(t *testing.T) {
	_, err := NewStripeProvider(StripeParams{Domain: "https://weeklyfit.app"})
	assert.Error(t, err)
	_, err = NewStripeProvider(StripeParams{SecretKey: "sk_test_123"})
	assert.Error(t, err)

	p := newTestStripeProvider(t)
	assert.Equal(t, "https://weeklyfit.app", p.domain)
}

func TestStripeProvider_ConstructWebhookEvent(t *testing.T) {
	p := newTestStripeProvider(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","object":"checkout.session"}}}`)

	event, err := p.ConstructWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_1", event.ObjectID)

	_, err = p.ConstructWebhookEvent(payload, signPayload(payload, "whsec_other", time.Now()))
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	_, err = p.ConstructWebhookEvent(payload, "")
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	// outside the default tolerance
	_, err = p.ConstructWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestSubscriptionDetails(t *testing.T) {
	details := subscriptionDetails(&stripe.Subscription{
		ID:     "sub_1",
		Status: stripe.SubscriptionStatusActive,
	})
	assert.Equal(t, "1.00", details.PriceAmount)
	assert.Equal(t, "USD", details.PriceCurrency)
	assert.Equal(t, "month", details.Interval)
	assert.Equal(t, "active", details.Status)
	assert.Nil(t, details.CurrentPeriodEnd)

	details = subscriptionDetails(&stripe.Subscription{
		ID:               "sub_2",
		Status:           stripe.SubscriptionStatusTrialing,
		CurrentPeriodEnd: 1794873600,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					Price: &stripe.Price{
						UnitAmount: 499,
						Currency:   stripe.CurrencyEUR,
						Recurring:  &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalYear},
					},
				},
			},
		},
	})
	assert.Equal(t, "4.99", details.PriceAmount)
	assert.Equal(t, "EUR", details.PriceCurrency)
	assert.Equal(t, "year", details.Interval)
	require.NotNil(t, details.CurrentPeriodEnd)
	assert.Equal(t, int64(1794873600), details.CurrentPeriodEnd.Unix())
}

func TestUnixTime(t *testing.T) {
	assert.Nil(t, unixTime(0))
	ts := unixTime(1794873600)
	require.NotNil(t, ts)
	assert.Equal(t, time.UTC, ts.Location())
}
