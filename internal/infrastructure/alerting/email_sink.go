package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/printstarter/printstarter/internal/config"
)

// EmailSink delivers alerts as templated plaintext email over SMTP.
type EmailSink struct {
	client        *mail.Client
	to            string
	from          string
	subjectPrefix string
}

// NewEmailSink creates the SMTP sink. Callers should check
// cfg.Configured() first; an unconfigured sink is not wired at all.
func NewEmailSink(smtp *config.SMTPConfig, email *config.EmailConfig) (*EmailSink, error) {
	opts := []mail.Option{
		mail.WithPort(smtp.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(smtp.Username),
		mail.WithPassword(smtp.Password),
	}
	if smtp.ImplicitTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(smtp.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := email.From
	if from == "" {
		from = smtp.Username
	}

	return &EmailSink{
		client:        client,
		to:            email.To,
		from:          from,
		subjectPrefix: email.SubjectPrefix,
	}, nil
}

func (s *EmailSink) Name() string {
	return "email"
}

func (s *EmailSink) Send(ctx context.Context, payload Payload) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set alert sender: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("set alert recipient: %w", err)
	}

	msg.Subject(fmt.Sprintf("%s %s on %s", s.subjectPrefix, payload.Type, payload.Route))
	msg.SetBodyString(mail.TypeTextPlain, formatAlertBody(payload))

	return s.client.DialAndSendWithContext(ctx, msg)
}

func formatAlertBody(payload Payload) string {
	context := payload.Context
	if context == nil {
		context = map[string]interface{}{}
	}
	contextJSON, _ := json.MarshalIndent(context, "", "  ")

	return strings.Join([]string{
		fmt.Sprintf("Alert Type: %s", payload.Type),
		fmt.Sprintf("Route: %s", payload.Route),
		fmt.Sprintf("Count: %d", payload.Count),
		fmt.Sprintf("Threshold: %d", payload.Threshold),
		fmt.Sprintf("Timestamp: %s", payload.Timestamp),
		"",
		"Context:",
		string(contextJSON),
	}, "\n")
}
