package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/redmonkez12/authflow/internal/logging"
	"github.com/redmonkez12/authflow/templates"
)

const appName = "Authflow"

// Subjects of the account lifecycle emails
const (
	SubjectVerification  = "Account verification code"
	SubjectWelcome       = "Account verified successfully"
	SubjectPasswordReset = "Reset your password"
	SubjectResetSuccess  = "Password reset successfully"
)

var (
	verificationTmpl  = mustParse("verification.html")
	welcomeTmpl       = mustParse("welcome.html")
	passwordResetTmpl = mustParse("password_reset.html")
	resetSuccessTmpl  = mustParse("reset_success.html")
)

func mustParse(name string) *template.Template {
	return template.Must(template.ParseFS(templates.EmailFS, "email/layout.html", "email/"+name))
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	clientURL    string
	send         sendFunc
}

// NewService creates an SMTP mailer. An empty sender falls back to the SMTP user.
func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromEmail, clientURL string) *Service {
	if fromEmail == "" {
		fromEmail = smtpUser
	}
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
		clientURL:    strings.TrimRight(clientURL, "/"),
		send:         smtp.SendMail,
	}
}

type templateData struct {
	AppName string
	Year    int
	Code    string
	Name    string
	Link    string
}

func (s *Service) newData() templateData {
	return templateData{AppName: appName, Year: time.Now().Year()}
}

// SendVerificationEmail sends the 6-digit verification code
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, code string) error {
	data := s.newData()
	data.Code = code
	return s.deliver(ctx, "verification", toEmail, SubjectVerification, verificationTmpl, data)
}

// SendWelcomeEmail greets a freshly verified account by name
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	data := s.newData()
	data.Name = name
	data.Link = s.clientURL
	return s.deliver(ctx, "welcome", toEmail, SubjectWelcome, welcomeTmpl, data)
}

// SendPasswordResetEmail sends the reset link built from the plaintext token
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	data := s.newData()
	data.Link = s.ResetLink(token)
	return s.deliver(ctx, "password reset", toEmail, SubjectPasswordReset, passwordResetTmpl, data)
}

// SendResetSuccessEmail confirms a completed password reset
func (s *Service) SendResetSuccessEmail(ctx context.Context, toEmail string) error {
	return s.deliver(ctx, "reset success", toEmail, SubjectResetSuccess, resetSuccessTmpl, s.newData())
}

// ResetLink is the frontend page that consumes a reset token
func (s *Service) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
}

func (s *Service) deliver(ctx context.Context, kind, toEmail, subject string, tmpl *template.Template, data templateData) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := render(tmpl, data)
	if err != nil {
		logger.Error("failed to render email template", "kind", kind, "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send email", "kind", kind, "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent", "kind", kind, "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
