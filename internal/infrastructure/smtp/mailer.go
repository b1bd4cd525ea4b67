package smtp

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/ecom-auth-api/internal/config"
)

// Mailer sends templated emails.
type Mailer interface {
	SendTemplate(to, subject, templateID string, vars map[string]string) error
}

// Body templates keyed by template ID. Variables come from the caller's vars map.
var templates = map[string]*template.Template{
	"user-activation-mail": template.Must(template.New("user-activation-mail").Parse(
		"Hi {{.name}},\r\n\r\nYour activation code is {{.otp}}. It expires in 5 minutes.\r\n")),
	"seller-activation-mail": template.Must(template.New("seller-activation-mail").Parse(
		"Hi {{.name}},\r\n\r\nYour seller account activation code is {{.otp}}. It expires in 5 minutes.\r\n")),
	"forgot-password-user-mail": template.Must(template.New("forgot-password-user-mail").Parse(
		"Hi {{.name}},\r\n\r\nYour password reset code is {{.otp}}. It expires in 5 minutes.\r\nIf you did not request this, ignore this email.\r\n")),
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendTemplate(to, subject, templateID string, vars map[string]string) error {
	tpl, ok := templates[templateID]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateID)
	}
	var body bytes.Buffer
	if err := tpl.Execute(&body, vars); err != nil {
		return fmt.Errorf("render mail template %q: %w", templateID, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body.String())
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
