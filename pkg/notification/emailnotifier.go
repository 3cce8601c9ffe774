package notification

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP connection settings of the email notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

// EmailNotifier delivers notices as email over SMTP.
type EmailNotifier struct {
	config SMTPConfig
	client *mail.Client
}

// NewEmailNotifier creates an email notifier from the given SMTP settings.
func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30 * time.Second),
	}
	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}
	if config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		slog.Error("Failed to create mail client", "host", config.Host, "err", err)
		return nil, err
	}
	return &EmailNotifier{config: config, client: client}, nil
}

func (e *EmailNotifier) Send(noticeType NoticeType, data Data, template NoticeTemplate) error {
	if data.To == "" {
		return fmt.Errorf("email notice requires a recipient address")
	}

	msg := mail.NewMsg()
	if err := msg.From(e.config.From); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.To(data.To); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}
	subject, err := renderTemplate(string(noticeType)+"_subject", template.Subject, data.Data)
	if err != nil {
		return err
	}
	msg.Subject(subject)

	if template.Text != "" {
		body, err := renderTemplate(string(noticeType)+"_text", template.Text, data.Data)
		if err != nil {
			return err
		}
		msg.SetBodyString(mail.TypeTextPlain, body)
	}
	if template.Html != "" {
		body, err := renderTemplate(string(noticeType)+"_html", template.Html, data.Data)
		if err != nil {
			return err
		}
		if template.Text != "" {
			msg.AddAlternativeString(mail.TypeTextHTML, body)
		} else {
			msg.SetBodyString(mail.TypeTextHTML, body)
		}
	}

	if err := e.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email notice %s: %w", noticeType, err)
	}
	return nil
}

func renderTemplate(name, tmpl string, data map[string]string) (string, error) {
	parsed, err := texttemplate.New(name).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
