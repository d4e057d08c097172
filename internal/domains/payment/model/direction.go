package model

// PaymentDirection distinguishes money in from money out.
type PaymentDirection string

const (
	DirectionInbound  PaymentDirection = "inbound"
	DirectionOutbound PaymentDirection = "outbound"
)

// ParsePaymentDirection maps a stored string back to a direction.
func ParsePaymentDirection(s string) (PaymentDirection, error) {
	switch s {
	case "inbound":
		return DirectionInbound, nil
	case "outbound":
		return DirectionOutbound, nil
	default:
		return "", NewValidationError("unknown payment direction: " + s)
	}
}

func (d PaymentDirection) String() string {
	return string(d)
}
