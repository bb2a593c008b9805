// Package mailer delivers confirmation codes to users out of band.
// The SMTP sender is used in production; the log sender stands in for it
// in development and tests.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"ratehub/internal/config"
)

// Sender delivers a confirmation code to the given address.
type Sender interface {
	SendConfirmationCode(ctx context.Context, email, username, code string) error
}

// NewSender picks the SMTP sender when a host is configured and falls back
// to logging the code otherwise.
func NewSender(cfg *config.Config, logger *slog.Logger) Sender {
	if cfg.SMTPHost != "" {
		return &smtpSender{
			addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
			host:     cfg.SMTPHost,
			username: cfg.SMTPUsername,
			password: cfg.SMTPPassword,
			from:     cfg.EmailFrom,
		}
	}
	return &logSender{logger: logger}
}

type smtpSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

func (s *smtpSender) SendConfirmationCode(ctx context.Context, email, username, code string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your confirmation code\r\n\r\nHello %s,\r\n\r\nYour confirmation code is: %s\r\n",
		s.from, email, username, code,
	)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}

type logSender struct {
	logger *slog.Logger
}

func (s *logSender) SendConfirmationCode(ctx context.Context, email, username, code string) error {
	s.logger.Info("confirmation code issued",
		"email", email,
		"username", username,
		"code", code,
	)
	return nil
}
