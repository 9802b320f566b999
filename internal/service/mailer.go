package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/askelund/adminpanel/internal/config"
	"github.com/askelund/adminpanel/internal/models"
)

// Mailer sends the panel's transactional mail. Callers treat sends as
// fire-and-forget: a delivery failure is logged and never changes the
// response the user sees.
type Mailer interface {
	// SendWelcomeMail greets a newly created backend user. When password is
	// non-empty it is the generated one-time password and is included so the
	// user can complete their first login.
	SendWelcomeMail(user *models.BackendUser, password string) error

	// SendResetPasswordMail sends the reset link carrying the token.
	SendResetPasswordMail(user *models.BackendUser, token string) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	appName  string
	resetURL string
}

// NewSMTPMailer creates a mailer from the SMTP settings. Returns nil when no
// SMTP host is configured; callers fall back to a no-op mailer.
func NewSMTPMailer(cfg *config.AppConfig) *SMTPMailer {
	if cfg.SMTP.Host == "" {
		return nil
	}

	base := strings.TrimRight(cfg.AdminPanel.BaseURL, "/")
	prefix := cfg.AdminPanel.PathPrefix

	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:     cfg.SMTP.From,
		fromName: cfg.SMTP.FromName,
		appName:  cfg.App.Name,
		resetURL: fmt.Sprintf("%s%s/login/reset/%%s", base, prefix),
	}
}

// SendWelcomeMail sends the account-created greeting.
func (m *SMTPMailer) SendWelcomeMail(user *models.BackendUser, password string) error {
	body := fmt.Sprintf("Hi %s,\n\nAn account has been created for you in %s.\n\nLogin with your email address: %s\n", user.Name, m.appName, user.Email)
	if password != "" {
		body += fmt.Sprintf("\nYour temporary password is: %s\nYou will be asked to change it on first login.\n", password)
	}

	err := m.send(user, fmt.Sprintf("Welcome to %s", m.appName), body)
	if err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to send welcome mail")
		return err
	}

	log.Info().Str("email", user.Email).Msg("Welcome mail sent")
	return nil
}

// SendResetPasswordMail sends the password-reset link.
func (m *SMTPMailer) SendResetPasswordMail(user *models.BackendUser, token string) error {
	link := fmt.Sprintf(m.resetURL, token)
	body := fmt.Sprintf("Hi %s,\n\nA password reset was requested for your account. Use the link below to choose a new password. The link expires in one hour.\n\n%s\n\nIf you did not request a reset you can ignore this mail.\n", user.Name, link)

	err := m.send(user, "Reset your password", body)
	if err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to send reset mail")
		return err
	}

	log.Info().Str("email", user.Email).Msg("Reset mail sent")
	return nil
}

func (m *SMTPMailer) send(user *models.BackendUser, subject, body string) error {
	msg := gomail.NewMessage()
	if m.fromName != "" {
		msg.SetAddressHeader("From", m.from, m.fromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetAddressHeader("To", user.Email, user.Name)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// NopMailer is used when SMTP is not configured. Sends are logged and
// dropped so the rest of the panel keeps working in local setups.
type NopMailer struct{}

func (NopMailer) SendWelcomeMail(user *models.BackendUser, _ string) error {
	log.Warn().Str("email", user.Email).Msg("SMTP not configured, welcome mail dropped")
	return nil
}

func (NopMailer) SendResetPasswordMail(user *models.BackendUser, _ string) error {
	log.Warn().Str("email", user.Email).Msg("SMTP not configured, reset mail dropped")
	return nil
}

// NewMailer returns the SMTP mailer when configured and the no-op mailer
// otherwise.
func NewMailer(cfg *config.AppConfig) Mailer {
	if m := NewSMTPMailer(cfg); m != nil {
		return m
	}
	return NopMailer{}
}
