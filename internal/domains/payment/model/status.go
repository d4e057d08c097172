package model

// PaymentStatus is the closed set of payment states.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSucceeded PaymentStatus = "succeeded"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

// ParsePaymentStatus maps a stored string back to a status.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "succeeded":
		return StatusSucceeded, nil
	case "failed":
		return StatusFailed, nil
	case "refunded":
		return StatusRefunded, nil
	default:
		return "", NewValidationError("unknown payment status: " + s)
	}
}

func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo is the exhaustive transition table. Every allowed edge is
// listed explicitly; if it's not here, it's not allowed.
//
// PI rows (pi_xxx):     Pending -> Succeeded | Failed
// Refund rows (re_xxx): Pending -> Refunded | Failed
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch {
	case s == StatusPending && next == StatusSucceeded:
		return true
	case s == StatusPending && next == StatusFailed:
		return true
	case s == StatusPending && next == StatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	return s != StatusPending
}
