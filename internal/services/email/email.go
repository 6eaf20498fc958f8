// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers plain-text notifications over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"github.com/wneessen/go-mail"
)

// Service sends mail through a single configured SMTP account.
type Service struct {
	cfg    *config.SMTPConfig
	client *mail.Client
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", config.ErrConfigurationMissing)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: SMTP from address is required", config.ErrConfigurationMissing)
	}

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	return &Service{cfg: cfg, client: client}, nil
}

// Send delivers a plain-text message. accepted reports whether the server
// took the message for delivery.
func (s *Service) Send(ctx context.Context, to, subject, body string) (bool, error) {
	msg, err := s.newMessage(to, subject, body)
	if err != nil {
		return false, err
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) {
			slog.Debug("smtp_send_error", "reason", sendErr.Reason, "temporary", sendErr.IsTemp())
		}
		return false, fmt.Errorf("sending email: %w", err)
	}

	return msg.IsDelivered(), nil
}

func (s *Service) newMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func clientOptions(cfg *config.SMTPConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	// Use implicit TLS (SSL) for port 465, STARTTLS for others
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return opts
}
