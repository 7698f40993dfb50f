package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"strings"
	"verba/internal/models"
)

// MailSender is the outbound transport. The SMTP implementation below is the
// production one; tests inject a recorder.
type MailSender interface {
	Send(to []string, subject, body string) error
}

type MailService struct {
	Sender     MailSender
	AdminEmail string
	SiteURL    string
	Enabled    bool
}

type smtpSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func (s *smtpSender) Send(to []string, subject, body string) error {
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Verba <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.from, subject, mime, body))

	return smtp.SendMail(addr, auth, s.from, to, msg)
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}

	return &MailService{
		Sender:     &smtpSender{host: host, port: port, username: user, password: pass, from: from},
		AdminEmail: os.Getenv("ADMIN_EMAIL"),
		SiteURL:    strings.TrimSuffix(siteURL, "/"),
		Enabled:    enabled,
	}
}

var activationTmpl = template.Must(template.New("activation").Parse(`
<p>Hello, {{.Username}}!</p>
<p>Confirm your email address to activate your account:</p>
<p><a href="{{.ActivationURL}}">{{.ActivationURL}}</a></p>
<p>If you did not register on Verba, ignore this message.</p>`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>Hello, {{.Username}}!</p>
<p>A password reset was requested for your account. Set a new password here:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>The link expires soon and stops working after the password changes.</p>`))

var feedbackTmpl = template.Must(template.New("feedback").Parse(`
<p>New contact form message.</p>
<p>From: {{.Email}}{{if .Username}} (user {{.Username}}){{end}}</p>
{{if .IP}}<p>IP: {{.IP}}</p>{{end}}
<blockquote>{{.Content}}</blockquote>`))

// SendActivationEmail mails the confirmation link. The send is synchronous;
// the dispatcher is what makes it asynchronous for the request path.
func (m *MailService) SendActivationEmail(user *models.User, activationURL string) error {
	if !m.Enabled {
		log.Printf("MailService disabled, skipping activation email for %s", user.Email)
		return nil
	}

	var buf bytes.Buffer
	if err := activationTmpl.Execute(&buf, map[string]string{
		"Username":      user.Username,
		"ActivationURL": activationURL,
	}); err != nil {
		return err
	}
	subject := fmt.Sprintf("Activate your account, %s!", user.Username)
	return m.Sender.Send([]string{user.Email}, subject, buf.String())
}

// SendPasswordResetEmail mails the reset link.
func (m *MailService) SendPasswordResetEmail(user *models.User, resetURL string) error {
	if !m.Enabled {
		log.Printf("MailService disabled, skipping reset email for %s", user.Email)
		return nil
	}

	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, map[string]string{
		"Username": user.Username,
		"ResetURL": resetURL,
	}); err != nil {
		return err
	}
	return m.Sender.Send([]string{user.Email}, "Password reset requested", buf.String())
}

// SendContactEmail forwards a feedback submission to the site operator.
func (m *MailService) SendContactEmail(subject, email, content, ip, username string) error {
	if !m.Enabled || m.AdminEmail == "" {
		log.Println("MailService disabled or ADMIN_EMAIL unset, skipping contact email")
		return nil
	}

	var buf bytes.Buffer
	if err := feedbackTmpl.Execute(&buf, map[string]string{
		"Email":    email,
		"Content":  content,
		"IP":       ip,
		"Username": username,
	}); err != nil {
		return err
	}
	return m.Sender.Send([]string{m.AdminEmail}, subject, buf.String())
}
