package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/hospital-staff-api/internal/config"
)

// NewSender returns the Sender selected by cfg.Provider.
func NewSender(cfg config.Mail, log logrus.FieldLogger) (Sender, error) {
	switch cfg.Provider {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.From == "" {
			return nil, errors.New("invalid Mailgun configuration")
		}
		return &MailgunSender{client: mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey), from: cfg.From}, nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" || cfg.From == "" {
			return nil, errors.New("invalid SendGrid configuration")
		}
		return &SendGridSender{client: sendgrid.NewSendClient(cfg.SendGridAPIKey), from: cfg.From}, nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.From == "" {
			return nil, errors.New("invalid SMTP configuration")
		}
		return &SMTPSender{Host: cfg.SMTPHost, Port: cfg.SMTPPort, Username: cfg.SMTPUsername, Password: cfg.SMTPPassword, From: cfg.From}, nil
	case "log":
		return &LogSender{Log: log}, nil
	case "":
		return nil, errors.New("MAIL_PROVIDER is not configured")
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

type MailgunSender struct {
	client *mailgun.MailgunImpl
	from   string
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	message := s.client.NewMessage(s.from, msg.Subject, msg.Text)
	if err := message.AddRecipient(msg.To); err != nil {
		return err
	}
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	_, _, err := s.client.Send(ctx, message)
	return err
}

type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	message := mail.NewSingleEmail(mail.NewEmail("", s.from), msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)

	res, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status code %d", res.StatusCode)
	}
	return nil
}

// SMTPSender talks to a plain SMTP relay, upgrading to TLS when offered.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.Host, s.Port))
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(s.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMIME(s.From, msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Text, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogSender records that an email would have been sent. The body carries
// reset links, so only the envelope is logged.
type LogSender struct {
	Log logrus.FieldLogger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email not delivered by the log provider")
	return nil
}
