// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// DigestSubject formats the subject line for a full digest.
func DigestSubject(cfg types.EmailConfig, query string, date time.Time) string {
	return fmt.Sprintf("%s: %s (%s)", subjectPrefix(cfg), query, date.Format("2006-01-02"))
}

// SkippedSubject formats the subject line for the titles-only variant.
func SkippedSubject(cfg types.EmailConfig, query string, date time.Time, found int) string {
	return fmt.Sprintf("%s: LLM skipped - %d papers found (%s) (%s)",
		subjectPrefix(cfg), found, query, date.Format("2006-01-02"))
}

func subjectPrefix(cfg types.EmailConfig) string {
	if cfg.SubjectPrefix != "" {
		return cfg.SubjectPrefix
	}
	return "PaperFetch"
}

// Send delivers the HTML body over SMTP with STARTTLS and plain auth.
func Send(cfg types.EmailConfig, subject, htmlBody string) error {
	if cfg.SMTPHost == "" || cfg.Sender == "" || cfg.Recipient == "" {
		return fmt.Errorf("email not configured: smtp_host, sender, and recipient are required")
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: cfg.SMTPHost}); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.Sender, cfg.Password, cfg.SMTPHost)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("authenticating as %s: %w", cfg.Sender, err)
	}

	if err := c.Mail(cfg.Sender); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(cfg.Recipient); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := wc.Write(buildMessage(cfg, subject, htmlBody)); err != nil {
		wc.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return c.Quit()
}

// buildMessage assembles the RFC 5322 message with an HTML body.
func buildMessage(cfg types.EmailConfig, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", cfg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", cfg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
