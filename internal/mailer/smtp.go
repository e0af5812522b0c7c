// Package mailer delivers contact mail over SMTP and renders the HTML
// bodies from templates.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// implicitTLSPort is the SMTPS port. Every other port negotiates STARTTLS.
const implicitTLSPort = 465

type server struct {
	host string
	port int
}

// presets maps a mail service name to its submission endpoint.
var presets = map[string]server{
	"gmail":   {host: "smtp.gmail.com", port: 587},
	"outlook": {host: "smtp.office365.com", port: 587},
	"yahoo":   {host: "smtp.mail.yahoo.com", port: 587},
	"zoho":    {host: "smtp.zoho.com", port: 587},
}

// SMTPSender sends HTML mail through one SMTP server, authenticating with
// the mailbox login carried by each envelope.
type SMTPSender struct {
	host    string
	port    int
	timeout time.Duration
	log     *zap.Logger

	// send delivers msg with a configured client.
	send func(ctx context.Context, c *mail.Client, msg *mail.Msg) error
}

// NewSMTPSender resolves the SMTP endpoint from a service preset, with host
// and port overriding it when non-zero.
func NewSMTPSender(service, host string, port int, log *zap.Logger) (*SMTPSender, error) {
	srv, ok := presets[strings.ToLower(service)]
	if !ok && host == "" {
		return nil, fmt.Errorf("unknown mail service %q and no mail host set", service)
	}
	if host != "" {
		srv.host = host
	}
	if port != 0 {
		srv.port = port
	}
	if srv.port == 0 {
		srv.port = 587
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPSender{
		host:    srv.host,
		port:    srv.port,
		timeout: 15 * time.Second,
		log:     log,
		send: func(ctx context.Context, c *mail.Client, msg *mail.Msg) error {
			return c.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

// Addr returns the resolved host:port.
func (s *SMTPSender) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// Send delivers env. The sender address doubles as the SMTP username.
func (s *SMTPSender) Send(ctx context.Context, env models.Envelope) error {
	msg := mail.NewMsg()
	if err := msg.From(env.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(mail.TypeTextHTML, env.HTML)

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(env.From),
		mail.WithPassword(env.Password),
		mail.WithTimeout(s.timeout),
	}
	if s.port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := s.send(ctx, client, msg); err != nil {
		s.log.Warn("mail delivery failed",
			zap.String("addr", s.Addr()),
			zap.String("to", env.To),
			zap.Error(err),
		)
		return fmt.Errorf("send mail: %w", err)
	}
	s.log.Info("mail sent", zap.String("to", env.To), zap.String("subject", env.Subject))
	return nil
}
