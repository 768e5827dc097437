package alert

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// Transport sends one rendered alert email. It is the seam
// SPEC_FULL.md's "SMTP as pluggable transport" design note calls for:
// the dispatcher depends on this interface, not on a concrete SMTP
// client, so tests can inject a recording fake instead of dialing a
// real server.
type Transport interface {
	Send(to, subject, text, html string) error
}

// SMTPConfig configures the implicit-TLS transport.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPTransport dials the submission host with implicit TLS
// (`crypto/tls.Dial`, matching `original_source`'s smtplib.SMTP_SSL
// usage) and authenticates with smtp.PlainAuth, mirroring the
// teacher's SendEmailOnFailure.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport builds a Transport backed by a real SMTP-over-TLS
// connection.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(to, subject, text, html string) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: t.cfg.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer func() { _ = client.Close() }()

	auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Password, t.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	from := t.cfg.FromAddress
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(t.cfg.FromName, from, to, subject, text, html)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

// buildMessage composes a multipart/alternative MIME message with a
// plain-text part and an HTML part, grounded on the teacher corpus's
// BuildEmailMessage.
func buildMessage(fromName, from, to, subject, text, html string) []byte {
	boundary := "pulse-" + fmt.Sprint(time.Now().UnixNano())

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", text)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", html)

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
