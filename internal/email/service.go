package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name, organization string) error
	SendOnboarding(ctx context.Context, to, organization, registerURL string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// dialer is the subset of *gomail.Dialer used here.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from   string
	dialer dialer
	logger zerolog.Logger
}

func NewSMTPService(cfg SMTPConfig, logger zerolog.Logger) Service {
	return &smtpService{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name, organization string) error {
	subject := "Welcome to Aesthiq"
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your account for <strong>%s</strong> is ready.</p>", name, organization)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendOnboarding(ctx context.Context, to, organization, registerURL string) error {
	subject := fmt.Sprintf("%s is set up on Aesthiq", organization)
	body := fmt.Sprintf(
		"<p><strong>%s</strong> has been created.</p><p>Sign up at <a href=\"%s\">%s</a> to finish setting up your clinic.</p>",
		organization, registerURL, registerURL)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

type noopService struct {
	logger zerolog.Logger
}

// NewNoopService logs instead of sending; used when SMTP is disabled.
func NewNoopService(logger zerolog.Logger) Service {
	return &noopService{logger: logger.With().Str("component", "email").Logger()}
}

func (s *noopService) SendWelcome(_ context.Context, to, name, organization string) error {
	s.logger.Info().Str("to", to).Str("organization", organization).Msg("smtp disabled, skipping welcome email")
	return nil
}

func (s *noopService) SendOnboarding(_ context.Context, to, organization, _ string) error {
	s.logger.Info().Str("to", to).Str("organization", organization).Msg("smtp disabled, skipping onboarding email")
	return nil
}
