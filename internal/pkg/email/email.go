package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendWelcomeEmail(toEmail, toName string) error
	SendJobDecisionEmail(toEmail, toName string, decision JobDecision) error
}

// JobDecision describes an approval outcome for the job owner
type JobDecision struct {
	JobID    int64
	JobTitle string
	Approved bool
	Reason   string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL of the web client, used for links
	Timeout   time.Duration
}

const defaultSendTimeout = 10 * time.Second

// Configured reports whether real delivery is possible
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(toEmail, subject, htmlBody string) error
}

// NewEmailService creates a new EmailService.
// Without SMTP credentials every send is simulated and only logged.
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.sendHTMLEmail
	return s
}

var (
	welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Welcome to JobBoard!</h2>
		<p>Hello {{.Name}},</p>
		<p>Your account is ready. Browse open positions or publish your own at <a href="{{.BaseURL}}">{{.BaseURL}}</a>.</p>
		<p>Best regards,<br>The JobBoard Team</p>
	</div>
</body>
</html>`))

	decisionTemplate = template.Must(template.New("decision").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello {{.Name}},</p>
		{{if .Approved}}
		<p>Your job posting <strong>{{.Title}}</strong> has been approved and is now visible to candidates.</p>
		<p><a href="{{.JobURL}}">View the posting</a></p>
		{{else}}
		<p>Your job posting <strong>{{.Title}}</strong> was not approved.</p>
		<p>Reason: {{.Reason}}</p>
		<p>You can update the posting and contact an administrator for another review.</p>
		{{end}}
		<p>Best regards,<br>The JobBoard Team</p>
	</div>
</body>
</html>`))
)

// SendWelcomeEmail sends a welcome email to a newly registered user
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if !s.config.Configured() {
		s.logger.Info().
			Str("toEmail", toEmail).
			Str("toName", toName).
			Msg("SMTP not configured - simulated welcome email")
		return nil
	}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, map[string]string{"Name": toName, "BaseURL": s.config.BaseURL}); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return s.send(toEmail, "Welcome to JobBoard", body.String())
}

// SendJobDecisionEmail tells the job owner about an approval decision
func (s *EmailServiceImpl) SendJobDecisionEmail(toEmail, toName string, decision JobDecision) error {
	subject := fmt.Sprintf("Your job posting %q was approved", decision.JobTitle)
	if !decision.Approved {
		subject = fmt.Sprintf("Your job posting %q was not approved", decision.JobTitle)
	}

	if !s.config.Configured() {
		s.logger.Info().
			Str("toEmail", toEmail).
			Int64("jobID", decision.JobID).
			Bool("approved", decision.Approved).
			Msg("SMTP not configured - simulated job decision email")
		return nil
	}

	var body bytes.Buffer
	err := decisionTemplate.Execute(&body, map[string]interface{}{
		"Name":     toName,
		"Title":    decision.JobTitle,
		"Approved": decision.Approved,
		"Reason":   decision.Reason,
		"JobURL":   fmt.Sprintf("%s/jobs/%d", strings.TrimRight(s.config.BaseURL, "/"), decision.JobID),
	})
	if err != nil {
		return fmt.Errorf("failed to render decision email: %w", err)
	}
	return s.send(toEmail, subject, body.String())
}

// sendHTMLEmail sends an HTML email. The whole exchange, dial included,
// must finish within the configured timeout.
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	serverAddress := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	if err := s.deliver(serverAddress, toEmail, []byte(msg.String())); err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return err
	}
	return nil
}

func (s *EmailServiceImpl) deliver(serverAddress, toEmail string, message []byte) error {
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	tlsConfig := &tls.Config{ServerName: s.config.Host}

	conn, err := (&net.Dialer{Timeout: timeout}).Dial("tcp", serverAddress)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("failed to set SMTP deadline: %w", err)
	}
	if s.config.UseTLS {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}
	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}
