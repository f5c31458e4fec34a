// Package mail sends the transactional emails of the request lifecycle.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"procuration/pkg/email"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// sendClient is the subset of *sendgrid.Client used here.
type sendClient interface {
	SendWithContext(ctx context.Context, m *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	client      sendClient
	fromName    string
	fromAddress string
	sandbox     bool
}

type Option func(*SendGridSender)

// WithSandboxMode asks SendGrid to validate without delivering.
func WithSandboxMode(enabled bool) Option {
	return func(s *SendGridSender) {
		s.sandbox = enabled
	}
}

func withClient(c sendClient) Option {
	return func(s *SendGridSender) {
		s.client = c
	}
}

func NewSendGridSender(apiKey, fromName, fromAddress string, opts ...Option) *SendGridSender {
	s := &SendGridSender{
		client:      sendgrid.NewSendClient(apiKey),
		fromName:    fromName,
		fromAddress: fromAddress,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(s.fromName, s.fromAddress)
	to := sgmail.NewEmail("", msg.To)
	contents := []*sgmail.Content{sgmail.NewContent("text/plain", msg.Text)}
	if msg.HTML != "" {
		contents = append(contents, sgmail.NewContent("text/html", msg.HTML))
	}
	m := sgmail.NewV3MailInit(from, msg.Subject, to, contents...)
	if s.sandbox {
		ms := sgmail.NewMailSettings()
		ms.SetSandboxMode(sgmail.NewSetting(true))
		m.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender logs messages instead of sending them. Used in development when
// no API key is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail not sent, no transport configured",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}

// VerificationMessage is the email carrying the verification link.
func VerificationMessage(host, to, token string) Message {
	link := strings.TrimRight(host, "/") + "/etape-1/confirmation/" + url.PathEscape(token)
	greeting := "Bonjour"
	if name := email.GreetingName(to); name != "" {
		greeting += " " + name
	}
	return Message{
		To:      to,
		Subject: "Votre procuration",
		Text: fmt.Sprintf("%s,\n\n"+
			"Pour confirmer votre demande de procuration, ouvrez le lien suivant :\n%s\n\n"+
			"Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.", greeting, link),
	}
}

// ConsularListMessage notifies the consular-list desk of a request to vote
// from a consular list.
func ConsularListMessage(dest, identity, list string) Message {
	return Message{
		To:      dest,
		Subject: fmt.Sprintf("Demande LEC (%s - %s)", identity, list),
		Text:    fmt.Sprintf("Bonjour,\n\nNouvelle demande de procuration de %s pour la liste %s.", identity, list),
	}
}
