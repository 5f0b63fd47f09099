package mailer

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"time"

	"github.com/ankityadav/sitewatch/internal/config"
	"github.com/ankityadav/sitewatch/internal/storage"
)

// CredentialSource hands out the admin mail account. Credentials are
// read on every send so a reconfiguration takes effect without a
// restart.
type CredentialSource interface {
	GetCredential(key string) (string, error)
}

type Mailer struct {
	creds CredentialSource
	relay config.MailRelay
}

func New(creds CredentialSource, relay config.MailRelay) *Mailer {
	return &Mailer{creds: creds, relay: relay}
}

// Send emails the admin a plain-text notification. It is best-effort:
// missing credentials disable mail, and relay failures are logged, so
// a check cycle never fails because of its notifications.
func (m *Mailer) Send(subject, body string) {
	email, err := m.creds.GetCredential(storage.KeyAdminEmail)
	if err != nil {
		log.Printf("Failed to read admin email: %v", err)
		return
	}
	password, err := m.creds.GetCredential(storage.KeyAdminPassword)
	if err != nil {
		log.Printf("Failed to read admin password: %v", err)
		return
	}
	if email == "" || password == "" {
		log.Printf("Email notifications disabled: admin credentials not configured")
		return
	}

	if err := m.send(email, password, subject, body); err != nil {
		log.Printf("Failed to send notification email: %v", err)
	}
}

// SendTest sends a test message with caller-supplied credentials and
// surfaces the outcome, for validating settings before saving them.
func (m *Mailer) SendTest(email, password string) error {
	subject := "Sitewatch test email"
	body := fmt.Sprintf("Your Sitewatch notification settings work. Sent %s.",
		time.Now().Format(time.RFC1123))
	return m.send(email, password, subject, body)
}

// send delivers a message through the configured relay, with the admin
// address as both sender and recipient.
func (m *Mailer) send(email, password, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.relay.Host, m.relay.Port)
	date := time.Now().Format(time.RFC1123Z)

	msg := []byte("From: " + email + "\r\n" +
		"To: " + email + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Date: " + date + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")

	c, err := m.dial(addr)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", email, password, m.relay.Host)
	if ok, _ := c.Extension("AUTH"); ok {
		if err := c.Auth(auth); err != nil {
			_ = c.Quit()
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(email); err != nil {
		_ = c.Quit()
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(email); err != nil {
		_ = c.Quit()
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		_ = c.Quit()
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		_ = c.Quit()
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		_ = c.Quit()
		return fmt.Errorf("close: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) dial(addr string) (*smtp.Client, error) {
	if !m.relay.StartTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.relay.Host})
		if err != nil {
			return nil, fmt.Errorf("dial tls: %w", err)
		}
		c, err := smtp.NewClient(conn, m.relay.Host)
		if err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
		return c, nil
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	c, err := smtp.NewClient(conn, m.relay.Host)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.relay.Host}); err != nil {
			_ = c.Quit()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	return c, nil
}
