package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
)

// OTPCode builds the signup verification code email
func OTPCode(email, code string, ttl time.Duration) Notification {
	return Notification{
		Kind:    KindOTP,
		To:      email,
		Subject: "Your Pizza Delivery verification code",
		Body: fmt.Sprintf(`<h2>Verify your email</h2>
<p>Your verification code is <strong>%s</strong>.</p>
<p>The code expires in %d minutes.</p>`, html.EscapeString(code), int(ttl.Minutes())),
		Summary: fmt.Sprintf("verification code sent to %s", email),
	}
}

// OrderConfirmation builds the email sent when an order is placed
func OrderConfirmation(email string, order *models.Order) Notification {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%.2f</td></tr>\n",
			html.EscapeString(item.Name), item.Quantity, item.Price)
	}

	eta := "soon"
	if order.EstimatedDeliveryTime != nil {
		eta = order.EstimatedDeliveryTime.Format(time.Kitchen)
	}

	return Notification{
		Kind:    KindOrderConfirmation,
		To:      email,
		Subject: fmt.Sprintf("Order #%d confirmed", order.ID),
		Body: fmt.Sprintf(`<h2>Thanks for your order!</h2>
<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>
%s</table>
<p>Total: <strong>%.2f</strong></p>
<p>Estimated delivery: %s</p>`, rows.String(), order.TotalAmount, eta),
		Summary: fmt.Sprintf("new order #%d, %d line(s), total %.2f", order.ID, len(order.Items), order.TotalAmount),
	}
}

// OrderStatusChanged builds the email sent after a status transition
func OrderStatusChanged(email string, order *models.Order, from models.OrderStatus) Notification {
	label := strings.ReplaceAll(string(order.Status), "_", " ")
	return Notification{
		Kind:    KindOrderStatus,
		To:      email,
		Subject: fmt.Sprintf("Order #%d is %s", order.ID, label),
		Body: fmt.Sprintf(`<h2>Order update</h2>
<p>Your order #%d moved from <em>%s</em> to <strong>%s</strong>.</p>`,
			order.ID, strings.ReplaceAll(string(from), "_", " "), label),
		Summary: fmt.Sprintf("order #%d: %s -> %s", order.ID, from, order.Status),
	}
}

// LowStock builds the admin alert for an item below its threshold
func LowStock(adminEmail string, item *models.InventoryItem) Notification {
	return Notification{
		Kind:    KindLowStock,
		To:      adminEmail,
		Subject: fmt.Sprintf("Low stock: %s", item.Name),
		Body: fmt.Sprintf(`<h2>Low stock alert</h2>
<p><strong>%s</strong> (%s) is down to %d %s, below the threshold of %d.</p>`,
			html.EscapeString(item.Name), item.Category, item.Quantity, html.EscapeString(item.Unit), item.Threshold),
		Summary: fmt.Sprintf("%s: %d left (threshold %d)", item.Name, item.Quantity, item.Threshold),
	}
}

// PasswordReset builds the reset-link email
func PasswordReset(email, link string) Notification {
	return Notification{
		Kind:    KindPasswordReset,
		To:      email,
		Subject: "Reset your password",
		Body: fmt.Sprintf(`<h2>Password reset</h2>
<p>Follow <a href="%s">this link</a> to choose a new password. The link expires in one hour.</p>
<p>If you did not ask for a reset you can ignore this email.</p>`, html.EscapeString(link)),
		Summary: fmt.Sprintf("password reset requested for %s", email),
	}
}

// EmailVerification builds the email sent after an address change
func EmailVerification(email, link string) Notification {
	return Notification{
		Kind:    KindEmailVerification,
		To:      email,
		Subject: "Verify your email address",
		Body: fmt.Sprintf(`<h2>Confirm your email</h2>
<p>Follow <a href="%s">this link</a> to verify your new address.</p>`, html.EscapeString(link)),
		Summary: fmt.Sprintf("verification link sent to %s", email),
	}
}
