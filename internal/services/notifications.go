package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Message is a provider-neutral email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one email. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationService composes the emails this API sends.
type NotificationService struct {
	sender Sender
	log    logrus.FieldLogger
}

func NewNotificationService(sender Sender, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{sender: sender, log: log}
}

// SendPasswordReset mails the reset link to the account owner.
func (s *NotificationService) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	msg := Message{
		To:      to,
		Subject: "Password reset request",
		Text: strings.Join([]string{
			"You are receiving this because you (or someone else) requested a password reset for your account.",
			"",
			"Open the following link within one hour to choose a new password:",
			resetURL,
			"",
			"If you did not request this, ignore this email and your password will remain unchanged.",
		}, "\n"),
		HTML: fmt.Sprintf(
			`<p>You requested a password reset for your account.</p><p><a href="%s">Choose a new password</a> (valid for one hour).</p><p>If you did not request this, ignore this email.</p>`,
			resetURL,
		),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.WithError(err).Error("password reset email not sent")
		return fmt.Errorf("send password reset email: %w", err)
	}
	s.log.Info("password reset email sent")
	return nil
}
