package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"slc-balance/internal/scrapers/slc"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("slc-balance/internal/notify")

type EmailConfig struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Address  string   `json:"address"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

func (c EmailConfig) Validate() error {
	switch {
	case c.Server == "":
		return fmt.Errorf("email: server is not set")
	case c.Port == 0:
		return fmt.Errorf("email: port is not set")
	case c.Address == "":
		return fmt.Errorf("email: address is not set")
	case len(c.To) == 0:
		return fmt.Errorf("email: no recipients")
	}
	return nil
}

func formatValue(field slc.Field, summary slc.Summary) string {
	if text, ok := summary.Text(field); ok {
		return text
	}
	value, ok := summary.Float(field)
	if !ok {
		return "unavailable"
	}
	if field == slc.FieldInterestRate {
		return fmt.Sprintf("%.2f%%", value*100)
	}
	return fmt.Sprintf("£%.2f", value)
}

// Render formats a summary as plain text, one field per line.
func Render(summary slc.Summary, at time.Time) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("Student loan summary as of %s\n\n", at.Format("2 January 2006 15:04")))
	for _, field := range slc.Fields {
		out.WriteString(fmt.Sprintf("%s: %s\n", field, formatValue(field, summary)))
	}
	return out.String()
}

func newSummaryEmail(cfg EmailConfig, summary slc.Summary, at time.Time) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Student loan balance <%s>", cfg.Address)
	mail.To = cfg.To
	mail.Subject = fmt.Sprintf("Student loan summary %s", at.Format("2006-01-02"))
	mail.Text = []byte(Render(summary, at))
	return mail
}

// SendSummary e-mails the rendered summary over SMTP.
func SendSummary(ctx context.Context, cfg EmailConfig, summary slc.Summary, at time.Time) error {
	ctx, span := tracer.Start(ctx, "SendSummary")
	defer span.End()

	err := cfg.Validate()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	mail := newSummaryEmail(cfg, summary, at)
	addr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)

	err = mail.Send(addr, smtp.PlainAuth("", cfg.Address, cfg.Password, cfg.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}
