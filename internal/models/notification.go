package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NotificationService delivers payment events somewhere out of band.
// Best-effort; delivery failures never affect the recorded payment.
type NotificationService interface {
	PaymentAccepted(event *PaymentEvent)
}

// PaymentEvent describes an accepted payment for the ops channel.
type PaymentEvent struct {
	Kind      string          `json:"kind"`
	Payer     string          `json:"payer"`
	Payee     string          `json:"payee"`
	Amount    decimal.Decimal `json:"amount"`
	Signature string          `json:"signature"`
}

func (e *PaymentEvent) String() string {
	sig := e.Signature
	if len(sig) > 16 {
		sig = sig[:16] + "..."
	}
	return fmt.Sprintf("%s accepted: %s -> %s, amount %s (tx %s)", e.Kind, e.Payer, e.Payee, e.Amount.StringFixed(6), sig)
}
