// Package email sends the plain-text run report over SMTP.
package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	// To accepts several addresses separated by "," or ";".
	To string
}

func Enabled(cfg SMTPConfig) bool {
	return strings.TrimSpace(cfg.User) != "" &&
		strings.TrimSpace(cfg.Pass) != "" &&
		strings.TrimSpace(cfg.To) != ""
}

func (cfg SMTPConfig) addr() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

func parseRecipients(to string) ([]string, error) {
	fields := strings.FieldsFunc(to, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no mail recipients")
	}
	return out, nil
}

func buildMessage(from string, to []string, subject, body string, now time.Time) []byte {
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	msg.WriteString("\r\n")
	return []byte(msg.String())
}

func Send(cfg SMTPConfig, subject, body string) error {
	to, err := parseRecipients(cfg.To)
	if err != nil {
		return err
	}
	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	return smtp.SendMail(cfg.addr(), auth, cfg.User, to, buildMessage(cfg.User, to, subject, body, time.Now()))
}

// CheckConnection verifies that the server answers EHLO and NOOP.
func CheckConnection(cfg SMTPConfig) error {
	c, err := dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return fmt.Errorf("smtp noop: %w", err)
	}
	return c.Quit()
}

// CheckConnectionRequireAuth also authenticates, upgrading with STARTTLS when
// the server offers it.
func CheckConnectionRequireAuth(cfg SMTPConfig) error {
	c, err := dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if ok, _ := c.Extension("AUTH"); !ok {
		return errors.New("smtp server does not support AUTH")
	}
	if err := c.Auth(smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	return c.Quit()
}

func dial(cfg SMTPConfig) (*smtp.Client, error) {
	conn, err := net.DialTimeout("tcp", cfg.addr(), 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", cfg.addr(), err)
	}
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}
	if err := c.Hello("localhost"); err != nil {
		c.Close()
		return nil, fmt.Errorf("smtp ehlo: %w", err)
	}
	return c, nil
}
