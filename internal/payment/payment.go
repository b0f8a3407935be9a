// Package payment creates payment intents for the checkout flow. The Stripe
// implementation is behind a small interface so handler tests can fake it.
package payment

import "context"

// Provider creates a payment intent for the given amount (in the currency's
// smallest unit) and returns the client secret the frontend needs to confirm
// the payment.
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (clientSecret string, err error)
}
