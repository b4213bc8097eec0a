package notify

import "context"

// Kind identifies what triggered a notification
type Kind string

const (
	KindOTP               Kind = "otp"
	KindOrderConfirmation Kind = "order_confirmation"
	KindOrderStatus       Kind = "order_status"
	KindLowStock          Kind = "low_stock"
	KindPasswordReset     Kind = "password_reset"
	KindEmailVerification Kind = "email_verification"
)

// Notification is one outbound message. Body is HTML for mail,
// Summary is a short plain-text line for chat alerts.
type Notification struct {
	Kind    Kind
	To      string
	Subject string
	Body    string
	Summary string
}

// Sender delivers a notification synchronously
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier accepts notifications for delivery outside the request cycle
type Notifier interface {
	Enqueue(n Notification)
}
