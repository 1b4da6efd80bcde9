package alerting

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func fullEmailConfig() EmailConfig {
	return EmailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "alerts@example.com",
		Password:  "secret",
		Recipient: "me@example.com",
	}
}

func TestDispatcherNotConfigured(t *testing.T) {
	incomplete := []EmailConfig{
		{},
		{Host: "h", Username: "u", Password: "p"},
		{Host: "h", Username: "u", Recipient: "r"},
		{Host: "h", Password: "p", Recipient: "r"},
		{Username: "u", Password: "p", Recipient: "r"},
	}

	for _, cfg := range incomplete {
		attempts := 0
		d := NewDispatcher(cfg, zerolog.Nop())
		d.send = func(EmailConfig, string, string) error {
			attempts++
			return nil
		}

		err := d.Send("subject", "body")
		if err == nil {
			t.Fatalf("config %+v should be rejected", cfg)
		}
		if err.Error() != "Email settings not configured" {
			t.Fatalf("unexpected reason: %q", err.Error())
		}
		if attempts != 0 {
			t.Fatalf("no transport use expected, got %d attempts", attempts)
		}
	}
}

func TestDispatcherTransportFailure(t *testing.T) {
	d := NewDispatcher(fullEmailConfig(), zerolog.Nop())
	d.send = func(EmailConfig, string, string) error {
		return errors.New("535 authentication failed")
	}

	err := d.Send("subject", "body")
	if err == nil {
		t.Fatal("transport failure must surface as an error")
	}
	if !strings.Contains(err.Error(), "535 authentication failed") {
		t.Fatalf("reason must carry the transport description, got %q", err.Error())
	}
}

func TestDispatcherSuccess(t *testing.T) {
	var gotSubject, gotBody string
	var gotCfg EmailConfig

	d := NewDispatcher(fullEmailConfig(), zerolog.Nop())
	d.send = func(cfg EmailConfig, subject, body string) error {
		gotCfg = cfg
		gotSubject = subject
		gotBody = body
		return nil
	}

	if err := d.Send("Crypto Alert: BTC >= 50000 USD", "body"); err != nil {
		t.Fatalf("successful transport should return nil: %v", err)
	}
	if gotSubject != "Crypto Alert: BTC >= 50000 USD" || gotBody != "body" {
		t.Fatalf("subject/body not forwarded: %q %q", gotSubject, gotBody)
	}
	if gotCfg.Recipient != "me@example.com" {
		t.Fatalf("config not forwarded: %+v", gotCfg)
	}
}

func TestDispatcherDefaultPort(t *testing.T) {
	d := NewDispatcher(EmailConfig{Host: "h", Username: "u", Password: "p", Recipient: "r"}, zerolog.Nop())
	if d.cfg.Port != 587 {
		t.Fatalf("default port should be 587, got %d", d.cfg.Port)
	}
}
