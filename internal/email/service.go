package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/admin-security/internal/model"
)

type Service interface {
	SendAccountExpiryAlert(ctx context.Context, account *model.Account) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAccountExpiryAlert(ctx context.Context, account *model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.Email == "" {
		return fmt.Errorf("account %d has no email address", account.ID)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", account.Email)
	m.SetHeader("Subject", "Your account is about to expire")
	m.SetBody("text/plain", expiryBody(account))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send expiry alert to account %d: %w", account.ID, err)
	}
	return nil
}

func expiryBody(account *model.Account) string {
	when := "soon"
	if account.ExpiresAt != nil {
		when = "on " + account.ExpiresAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("Hello %s,\n\nYour account will expire %s. Sign in before that date to keep it active.\n",
		account.Login, when)
}
