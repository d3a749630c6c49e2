package notifier

import (
	"fmt"

	"ustat-be/internal/order"
)

// OrderMailer turns order lifecycle events into queued customer emails.
type OrderMailer struct {
	dispatcher *Dispatcher
}

func NewOrderMailer(d *Dispatcher) *OrderMailer {
	return &OrderMailer{dispatcher: d}
}

func (m *OrderMailer) OrderStatusChanged(orderNumber, email string, status order.OrderStatus) {
	m.dispatcher.Enqueue(Email{
		To:      email,
		Subject: fmt.Sprintf("Order %s is now %s", orderNumber, status.Label()),
		Body: fmt.Sprintf(
			"Your order %s has moved to %s.\n\nYou can follow its progress from your account page.\n\nUstat Furniture",
			orderNumber, status.Label(),
		),
	})
}

// VerificationMailer emails signup/login codes.
type VerificationMailer struct {
	dispatcher *Dispatcher
}

func NewVerificationMailer(d *Dispatcher) *VerificationMailer {
	return &VerificationMailer{dispatcher: d}
}

func (m *VerificationMailer) SendCode(email, code string) {
	m.dispatcher.Enqueue(Email{
		To:      email,
		Subject: "Your Ustat verification code",
		Body: fmt.Sprintf(
			"Your verification code is %s. It expires in 5 minutes.\n\nUstat Furniture",
			code,
		),
	})
}
