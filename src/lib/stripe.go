package lib

import (
	"context"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreateBookingPaymentIntent opens a PaymentIntent for the booking total.
// Amount is in minor units. The booking id rides along as metadata so the
// webhook can resolve the booking without a lookup table.
func CreateBookingPaymentIntent(amount int64, currency string, bookingId uint) (*stripe.PaymentIntent, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"booking_id": fmt.Sprint(bookingId),
		},
	}
	intent, err := sc.V1PaymentIntents.Create(context.Background(), &params)
	if err != nil {
		return nil, err
	}
	return intent, nil
}

func CancelPaymentIntent(intentId string) error {
	sc := GetStripeClient()
	_, err := sc.V1PaymentIntents.Cancel(context.Background(), intentId, &stripe.PaymentIntentCancelParams{})
	return err
}

func RefundPaymentIntent(intentId string) (*stripe.Refund, error) {
	sc := GetStripeClient()
	refund, err := sc.V1Refunds.Create(context.Background(), &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(intentId),
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}
