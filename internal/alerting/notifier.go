package alerting

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-price-tracker/internal/format"
	"crypto-price-tracker/internal/rules"
)

// Severity grades a notification for the host to render.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the structured signal the host renders, e.g. as a toast.
type Notification struct {
	Message  string
	Severity Severity
}

// Sink receives notifications. Emitting never fails.
type Sink interface {
	Emit(n Notification)
}

// LogSink renders notifications through the logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink constructs a logger-backed sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "notifications").Logger()}
}

// Emit writes the notification at a level matching its severity.
func (s *LogSink) Emit(n Notification) {
	switch n.Severity {
	case SeverityError:
		s.logger.Error().Msg(n.Message)
	case SeverityWarning:
		s.logger.Warn().Msg(n.Message)
	default:
		s.logger.Info().Msg(n.Message)
	}
}

// Outcome describes what happened for one fired rule in one cycle.
type Outcome struct {
	Rule           rules.Rule
	Fired          bool
	EmailAttempted bool
	// EmailError is the human-readable failure reason; empty means either
	// success or no attempt.
	EmailError string
}

// Notifier turns a fired rule into an in-process notification and an optional
// email side effect.
type Notifier struct {
	sink   Sink
	email  *Dispatcher
	logger zerolog.Logger
}

// NewNotifier constructs a Notifier. The dispatcher may be nil when email is
// disabled entirely.
func NewNotifier(sink Sink, email *Dispatcher, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sink:   sink,
		email:  email,
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

// Notify emits the alert for one fired rule and, if the rule asks for it,
// attempts an email dispatch. It is invoked once per fired rule per cycle:
// a rule that stays satisfied across N cycles notifies N times. There is no
// cross-cycle suppression.
func (n *Notifier) Notify(rule rules.Rule, price decimal.Decimal) Outcome {
	msg := renderMessage(rule, price)
	n.sink.Emit(Notification{Message: "Alert hit: " + msg, Severity: SeverityInfo})
	n.logger.Info().
		Str("coin", rule.CoinID).
		Str("op", rule.Comparison.Symbol()).
		Str("threshold", rule.Threshold.String()).
		Str("price", price.String()).
		Msg("alert fired")

	outcome := Outcome{Rule: rule, Fired: true}
	if !rule.NotifyByEmail {
		return outcome
	}

	outcome.EmailAttempted = true
	if n.email == nil {
		outcome.EmailError = ErrEmailNotConfigured.Error()
		n.sink.Emit(Notification{Message: "Email failed: " + outcome.EmailError, Severity: SeverityWarning})
		return outcome
	}

	subject := fmt.Sprintf("Crypto Alert: %s %s %s %s",
		strings.ToUpper(rule.Symbol), rule.Comparison.Symbol(), rule.Threshold.String(), strings.ToUpper(rule.QuoteCurrency))
	body := fmt.Sprintf("Rule: %s %s %s %s\nCurrent price: %s %s",
		strings.ToUpper(rule.Symbol), rule.Comparison.Symbol(), rule.Threshold.String(), strings.ToUpper(rule.QuoteCurrency),
		price.String(), strings.ToUpper(rule.QuoteCurrency))

	if err := n.email.Send(subject, body); err != nil {
		outcome.EmailError = err.Error()
		n.sink.Emit(Notification{Message: "Email failed: " + outcome.EmailError, Severity: SeverityWarning})
		return outcome
	}

	n.sink.Emit(Notification{Message: "Email sent", Severity: SeverityInfo})
	return outcome
}

func renderMessage(rule rules.Rule, price decimal.Decimal) string {
	return fmt.Sprintf("%s %s %s — current: %s",
		strings.ToUpper(rule.Symbol),
		rule.Comparison.Symbol(),
		format.Currency(rule.Threshold, rule.QuoteCurrency),
		format.Currency(price, rule.QuoteCurrency))
}
