// internal/notification/notifier.go
// Outbound notices. Delivery is best effort: failures are logged and counted,
// never returned to the request that triggered them.

package notification

import (
	"context"
	"fmt"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

type Notifier struct {
	email        EmailSender
	sms          SMSSender
	supportInbox string
}

func NewNotifier(email EmailSender, sms SMSSender, supportInbox string) *Notifier {
	return &Notifier{email: email, sms: sms, supportInbox: supportInbox}
}

// SupportRequestReceived tells the support inbox about a new help request
func (n *Notifier) SupportRequestReceived(ctx context.Context, requestID int64, email, mobile, message string) {
	n.sendEmail(ctx, "support_received", n.supportInbox,
		fmt.Sprintf("New support request #%d", requestID),
		fmt.Sprintf("From: %s (%s)", email, mobile),
		message,
	)
}

// SupportRequestHandled tells the user their help request was dealt with,
// unless they turned email notifications off
func (n *Notifier) SupportRequestHandled(ctx context.Context, u *users.User) {
	if !u.EmailNotifications {
		notificationsSent.WithLabelValues("email", "opted_out").Inc()
		return
	}
	n.sendEmail(ctx, "support_handled", u.Email,
		"Your support request has been handled",
		fmt.Sprintf("Hi %s,", u.Name),
		"Our team has reviewed your support request. Reply from the help page if you need anything else.",
	)
}

// AccountRemoved texts a removed user, unless they turned SMS notifications off
func (n *Notifier) AccountRemoved(ctx context.Context, u *users.User, reason string) {
	if !u.SMSNotifications || u.Mobile == "" {
		notificationsSent.WithLabelValues("sms", "opted_out").Inc()
		return
	}
	body := "Your account has been removed by an administrator."
	if reason != "" {
		body += " Reason: " + reason
	}

	if err := n.sms.SendSMS(ctx, &SMS{To: u.Mobile, Body: body}); err != nil {
		notificationsSent.WithLabelValues("sms", "failed").Inc()
		logger.Warn(ctx, "failed to send account removal SMS", zap.Int64("user_id", u.ID), zap.Error(err))
		return
	}
	notificationsSent.WithLabelValues("sms", "sent").Inc()
}

func (n *Notifier) sendEmail(ctx context.Context, kind, to, title string, paragraphs ...string) {
	html, text, err := renderEmail(title, paragraphs...)
	if err != nil {
		notificationsSent.WithLabelValues("email", "failed").Inc()
		logger.Error(ctx, "failed to render email", zap.String("kind", kind), zap.Error(err))
		return
	}

	if err := n.email.SendEmail(ctx, &Email{To: to, Subject: title, Body: text, HTML: html}); err != nil {
		notificationsSent.WithLabelValues("email", "failed").Inc()
		logger.Warn(ctx, "failed to send email", zap.String("kind", kind), zap.String("to", to), zap.Error(err))
		return
	}
	notificationsSent.WithLabelValues("email", "sent").Inc()
	logger.Debug(ctx, "email sent", zap.String("kind", kind), zap.String("to", to))
}
