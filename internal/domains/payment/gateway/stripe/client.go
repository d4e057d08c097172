package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"

	"payflow-backend/internal/domains/payment/gateway"
	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// STRIPE CLIENT IMPLEMENTATION
// =====================================================

type Client struct {
	sc *stripe.Client
}

// NewClient creates a Stripe-backed payment provider.
func NewClient(apiKey string) gateway.PaymentProvider {
	return &Client{sc: stripe.NewClient(apiKey, nil)}
}

// FetchPayment retrieves the current object state, dispatching by id prefix.
func (c *Client) FetchPayment(ctx context.Context, id model.ExternalID) (*gateway.FetchedPayment, error) {
	raw := id.String()
	switch {
	case strings.HasPrefix(raw, model.PrefixPaymentIntent):
		return c.fetchPaymentIntent(ctx, id)
	case strings.HasPrefix(raw, model.PrefixRefund):
		return c.fetchRefund(ctx, id)
	default:
		return nil, model.NewProviderError(fmt.Sprintf("unknown external_id prefix: %s", raw), nil)
	}
}

func (c *Client) fetchPaymentIntent(ctx context.Context, id model.ExternalID) (*gateway.FetchedPayment, error) {
	pi, err := c.sc.V1PaymentIntents.Retrieve(ctx, id.String(), &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, model.NewProviderError("failed to retrieve payment intent", err)
	}

	money, err := convertMoney(pi.Amount, pi.Currency)
	if err != nil {
		return nil, err
	}

	return &gateway.FetchedPayment{
		ExternalID: id,
		Direction:  model.DirectionInbound,
		Status:     ConvertPaymentIntentStatus(pi.Status),
		Money:      money,
		Metadata:   convertMetadata(pi.Metadata),
		Created:    pi.Created,
	}, nil
}

func (c *Client) fetchRefund(ctx context.Context, id model.ExternalID) (*gateway.FetchedPayment, error) {
	refund, err := c.sc.V1Refunds.Retrieve(ctx, id.String(), &stripe.RefundRetrieveParams{})
	if err != nil {
		return nil, model.NewProviderError("failed to retrieve refund", err)
	}

	money, err := convertMoney(refund.Amount, refund.Currency)
	if err != nil {
		return nil, err
	}

	// A refund points back at the payment intent it reverses.
	var parent *model.ExternalID
	if refund.PaymentIntent != nil && refund.PaymentIntent.ID != "" {
		parentID, err := model.NewExternalID(refund.PaymentIntent.ID)
		if err != nil {
			return nil, err
		}
		parent = &parentID
	}

	return &gateway.FetchedPayment{
		ExternalID:       id,
		Direction:        model.DirectionOutbound,
		Status:           ConvertRefundStatus(refund.Status),
		Money:            money,
		Metadata:         convertMetadata(refund.Metadata),
		ParentExternalID: parent,
		Created:          refund.Created,
	}, nil
}
