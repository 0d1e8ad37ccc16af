package services

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"taskverse/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendReminderEmail(email string, task models.Task) error
	SendPasswordResetEmail(email, token string) error
}

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer MailSender
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	if name == "" {
		name = email
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to taskverse")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. Add your first task and set a reminder so nothing slips.</p>
	`, html.EscapeString(name))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendReminderEmail(email string, task models.Task) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Reminder: "+task.Title)

	due := "no due date"
	if task.DueDate != nil {
		due = task.DueDate.UTC().Format("2006-01-02 15:04 UTC")
	}
	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>%s</p>
		<p>Priority: <strong>%s</strong><br>Due: %s</p>
	`, html.EscapeString(task.Title), html.EscapeString(task.Description), task.Priority, due)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Reset your taskverse password")

	body := fmt.Sprintf(`
		<p>Someone asked to reset the password for this account.</p>
		<p>Your reset code (valid for one hour):</p>
		<p><code>%s</code></p>
		<p>If this wasn't you, ignore this message.</p>
	`, html.EscapeString(token))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// EmailNotifier delivers reminders to the owner's address.
type EmailNotifier struct {
	Emails EmailService
}

func (n EmailNotifier) Name() string { return "email" }

func (n EmailNotifier) NotifyReminder(_ context.Context, user *models.User, task models.Task) error {
	if user.Email == "" {
		return nil
	}
	return n.Emails.SendReminderEmail(user.Email, task)
}
