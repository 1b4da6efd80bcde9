package alerting

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// EmailConfig carries SMTP transport settings. Email is optional: leaving any
// non-port field empty disables dispatch.
type EmailConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Recipient string `mapstructure:"recipient"`
}

// Complete reports whether all fields required for dispatch are present.
func (c EmailConfig) Complete() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.Recipient != ""
}

// ErrEmailNotConfigured is the benign outcome when dispatch settings are
// missing. The text is user-facing copy.
var ErrEmailNotConfigured = errors.New("Email settings not configured")

// SendFunc is the transport boundary, replaceable in tests with a fake that
// records attempts.
type SendFunc func(cfg EmailConfig, subject, body string) error

// Dispatcher delivers plaintext alert emails on a best-effort basis.
type Dispatcher struct {
	cfg    EmailConfig
	send   SendFunc
	logger zerolog.Logger
}

// NewDispatcher constructs an SMTP-backed email dispatcher.
func NewDispatcher(cfg EmailConfig, logger zerolog.Logger) *Dispatcher {
	return NewDispatcherWithSender(cfg, smtpSend, logger)
}

// NewDispatcherWithSender constructs a dispatcher with a custom transport.
func NewDispatcherWithSender(cfg EmailConfig, send SendFunc, logger zerolog.Logger) *Dispatcher {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &Dispatcher{
		cfg:    cfg,
		send:   send,
		logger: logger.With().Str("component", "alert_email").Logger(),
	}
}

// Send delivers one plaintext email. A nil return means delivered.
//
// Incomplete configuration short-circuits with ErrEmailNotConfigured before
// any network use. Transport, auth, and send failures come back as descriptive
// errors; Send never panics, so callers need no recovery around it.
func (d *Dispatcher) Send(subject, body string) error {
	if !d.cfg.Complete() {
		return ErrEmailNotConfigured
	}

	if err := d.send(d.cfg, subject, body); err != nil {
		d.logger.Warn().Err(err).Str("subject", subject).Msg("email dispatch failed")
		return fmt.Errorf("send email: %w", err)
	}

	d.logger.Info().Str("to", d.cfg.Recipient).Str("subject", subject).Msg("email dispatched")
	return nil
}

// smtpSend dials the SMTP server, upgrades to TLS, authenticates, sends, and
// closes the connection on every exit path.
func smtpSend(cfg EmailConfig, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.Username)
	m.SetHeader("To", cfg.Recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return dialer.DialAndSend(m)
}
