package service

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/pageza/recipebox/config"
)

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
}

func NewEmailService(cfg *config.Config) *EmailService {
	from := cfg.EmailFrom
	if from == "" {
		from = "no-reply@recipebox.local"
	}
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    from,
	}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	// If SMTP is not configured, log the email instead
	if s.smtpHost == "" || s.smtpPort == "" {
		log.Printf("[EmailService] SMTP not configured, logging email to %s: %s\n%s", to, subject, body)
		return nil
	}

	var auth smtp.Auth
	if s.smtpUsername != "" {
		auth = smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Recipebox <%s>\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, s.fromEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) SendRecoveryEmail(to, link string) error {
	body := fmt.Sprintf("Someone asked to reset the password for your Recipebox account.\n\n"+
		"Use this link or token within 15 minutes to choose a new password:\n\n%s\n\n"+
		"If this wasn't you, ignore this email.", link)
	return s.SendEmail(to, "Reset your Recipebox password", body)
}
