package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

// Email delivers the plain text rendering over smtp.
type Email struct {
	config SmtpConfig
	to     []string
	send   func(mail *email.Email, addr string, auth smtp.Auth) error
}

func NewEmail(config SmtpConfig, to []string) Email {
	return Email{
		config: config,
		to:     to,
		send: func(mail *email.Email, addr string, auth smtp.Auth) error {
			return mail.Send(addr, auth)
		},
	}
}

func (e Email) compose(msg Message) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("gradewatch <%s>", e.config.EmailAddress)
	mail.To = e.to
	mail.Subject = msg.Title()
	mail.Text = []byte(RenderText(msg))
	return mail
}

func (e Email) Notify(ctx context.Context, msg Message) error {
	_, span := tracer.Start(ctx, "Email.Notify")
	defer span.End()

	mail := e.compose(msg)
	err := e.send(
		mail,
		e.config.addr(),
		smtp.PlainAuth("", e.config.EmailAddress, e.config.Password, e.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = e.send(mail, e.config.addr(), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return &Error{Sink: "email", Err: err}
	}
	return nil
}
