// internal/verification/providers.go

package verification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailProvider defines the email provider interface
type EmailProvider interface {
	SendEmail(ctx context.Context, template *EmailTemplate) error
}

// SMTPEmailProvider implements EmailProvider using SMTP
type SMTPEmailProvider struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPEmailProvider creates a new SMTP email provider
func NewSMTPEmailProvider(host, port, username, password, from string) EmailProvider {
	return &SMTPEmailProvider{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendEmail sends an email using SMTP
func (p *SMTPEmailProvider) SendEmail(ctx context.Context, emailData *EmailTemplate) error {
	templatePath := filepath.Join("templates", emailData.TemplateName+".html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		// Fallback to plain text if template not found
		return p.sendPlainTextEmail(emailData)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, emailData.Data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	message := fmt.Sprintf("From: %s\r\n", p.from)
	message += fmt.Sprintf("To: %s\r\n", emailData.To)
	message += fmt.Sprintf("Subject: %s\r\n", emailData.Subject)
	message += "MIME-version: 1.0;\r\n"
	message += "Content-Type: text/html; charset=\"UTF-8\";\r\n"
	message += "\r\n"
	message += body.String()

	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	addr := fmt.Sprintf("%s:%s", p.host, p.port)
	if err := smtp.SendMail(addr, auth, p.from, []string{emailData.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// sendPlainTextEmail sends a plain text email (fallback)
func (p *SMTPEmailProvider) sendPlainTextEmail(emailData *EmailTemplate) error {
	body := plainTextBody(emailData)

	message := fmt.Sprintf("From: %s\r\n", p.from)
	message += fmt.Sprintf("To: %s\r\n", emailData.To)
	message += fmt.Sprintf("Subject: %s\r\n", emailData.Subject)
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	addr := fmt.Sprintf("%s:%s", p.host, p.port)

	return smtp.SendMail(addr, auth, p.from, []string{emailData.To}, []byte(message))
}

// plainTextBody renders the template data as plain text for clients (or
// providers) without the HTML template
func plainTextBody(emailData *EmailTemplate) string {
	if code, ok := emailData.Data["code"].(string); ok {
		expiresIn, _ := emailData.Data["expiresIn"].(int)
		return fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %d minutes.", code, expiresIn)
	}

	if body, ok := emailData.Data["body"].(string); ok {
		return body
	}

	return emailData.Subject
}

// SendGridEmailProvider implements EmailProvider using SendGrid
type SendGridEmailProvider struct {
	apiKey string
	from   string
}

// NewSendGridEmailProvider creates a new SendGrid email provider
func NewSendGridEmailProvider(apiKey, from string) EmailProvider {
	return &SendGridEmailProvider{
		apiKey: apiKey,
		from:   from,
	}
}

// SendEmail sends an email using SendGrid
func (p *SendGridEmailProvider) SendEmail(ctx context.Context, emailData *EmailTemplate) error {
	from := mail.NewEmail("FinLove", p.from)
	to := mail.NewEmail("", emailData.To)

	templatePath := filepath.Join("templates", emailData.TemplateName+".html")
	tmpl, err := template.ParseFiles(templatePath)

	var htmlContent string
	if err == nil {
		var body bytes.Buffer
		if err := tmpl.Execute(&body, emailData.Data); err == nil {
			htmlContent = body.String()
		}
	}

	message := mail.NewSingleEmail(from, emailData.Subject, to, plainTextBody(emailData), htmlContent)
	client := sendgrid.NewSendClient(p.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}

	return nil
}

// MockEmailProvider implements EmailProvider for testing
type MockEmailProvider struct {
	SentEmails []EmailTemplate
}

// NewMockEmailProvider creates a new mock email provider
func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{
		SentEmails: make([]EmailTemplate, 0),
	}
}

// SendEmail mocks sending an email
func (p *MockEmailProvider) SendEmail(ctx context.Context, template *EmailTemplate) error {
	p.SentEmails = append(p.SentEmails, *template)
	return nil
}
