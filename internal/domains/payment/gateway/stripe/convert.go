package stripe

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"

	"payflow-backend/internal/domains/payment/model"
)

// =====================================================
// STRIPE TYPE CONVERSIONS
// =====================================================

func convertCurrency(c stripe.Currency) (model.Currency, error) {
	switch c {
	case stripe.CurrencyUSD:
		return model.CurrencyUSD, nil
	case stripe.CurrencyEUR:
		return model.CurrencyEUR, nil
	case stripe.CurrencyGBP:
		return model.CurrencyGBP, nil
	case stripe.CurrencyJPY:
		return model.CurrencyJPY, nil
	default:
		return "", model.NewValidationError(fmt.Sprintf("unsupported currency: %s", c))
	}
}

func convertMoney(amount int64, currency stripe.Currency) (model.Money, error) {
	cur, err := convertCurrency(currency)
	if err != nil {
		return model.Money{}, err
	}
	return model.NewMoney(amount, cur)
}

// ConvertPaymentIntentStatus collapses Stripe's payment intent lifecycle onto
// the local status set. Everything before settlement is pending.
func ConvertPaymentIntentStatus(s stripe.PaymentIntentStatus) model.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return model.StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return model.StatusFailed
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod:
		return model.StatusPending
	default:
		log.Warn().Str("status", string(s)).Msg("unknown PaymentIntent status, defaulting to pending")
		return model.StatusPending
	}
}

// ConvertRefundStatus maps a refund's lifecycle onto the local status set.
func ConvertRefundStatus(s stripe.RefundStatus) model.PaymentStatus {
	switch s {
	case stripe.RefundStatusSucceeded:
		return model.StatusRefunded
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		return model.StatusFailed
	default:
		return model.StatusPending
	}
}

func convertMetadata(m map[string]string) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
