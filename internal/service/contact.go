package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
	"golang.org/x/sync/errgroup"
)

// Template names and subjects of the two contact mails.
const (
	TemplateAutoReply    = "auto-reply"
	TemplateNotification = "notification"

	AutoReplySubject = "Thank you for contacting me!"
)

// ErrNoSenderCredentials means no mailbox login could be resolved for the
// profile, neither from the profile nor from the configured defaults.
var ErrNoSenderCredentials = errors.New("no sender credentials configured")

// ContactRepository persists delivered contact messages.
type ContactRepository interface {
	CreateContactMessage(ctx context.Context, m *models.ContactMessage) error
}

// Mailer delivers a single mail.
type Mailer interface {
	Send(ctx context.Context, env models.Envelope) error
}

// Renderer turns a named template and its data into an HTML body.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// TemplateData is the set of placeholders available to contact templates.
type TemplateData struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
	OwnerName   string
	OwnerEmail  string
	OwnerPhone  string
}

// ContactConfig holds the fallback sender mailboxes and the persistence
// policy of the contact notifier.
type ContactConfig struct {
	Primary   models.EmailCredentials
	Secondary models.EmailCredentials
	// PersistOnSendFailure stores the message even when a send failed.
	// The send error is still returned.
	PersistOnSendFailure bool
}

// ContactService delivers contact form messages to profile owners and
// acknowledges them to the visitor.
type ContactService struct {
	profiles  ProfileRepository
	contacts  ContactRepository
	mailer    Mailer
	templates Renderer
	cfg       ContactConfig
}

// NewContactService constructs a ContactService.
func NewContactService(profiles ProfileRepository, contacts ContactRepository, mailer Mailer, templates Renderer, cfg ContactConfig) *ContactService {
	return &ContactService{profiles: profiles, contacts: contacts, mailer: mailer, templates: templates, cfg: cfg}
}

// ContactMe sends an auto-reply to the visitor and a notification to the
// profile owner, then records the message.
//
// An unknown profile yields apperr.ErrBadRequest and nothing is sent or
// stored. Both mails are sent concurrently; the message is stored only when
// both succeed unless ContactConfig.PersistOnSendFailure is set.
func (s *ContactService) ContactMe(ctx context.Context, in models.ContactInput) error {
	profile, err := s.profiles.GetProfileByID(ctx, in.ToProfileID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrBadRequest, MsgInvalidProfileID)
		}
		return fmt.Errorf("get profile: %w", err)
	}

	creds := s.resolveCredentials(profile)
	if creds.Email == "" || creds.Passcode == "" {
		return ErrNoSenderCredentials
	}

	ownerEmail := profile.ContactDetails.Email
	if ownerEmail == "" {
		ownerEmail = profile.Email
	}
	data := TemplateData{
		SenderName:  in.SenderName,
		SenderEmail: in.SenderEmail,
		Subject:     in.Subject,
		Message:     in.Message,
		OwnerName:   profile.Firstname,
		OwnerEmail:  ownerEmail,
		OwnerPhone:  profile.ContactDetails.Phone,
	}

	autoReply, err := s.templates.Render(TemplateAutoReply, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", TemplateAutoReply, err)
	}
	notification, err := s.templates.Render(TemplateNotification, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", TemplateNotification, err)
	}

	envelopes := []models.Envelope{
		{From: creds.Email, Password: creds.Passcode, To: in.SenderEmail, Subject: AutoReplySubject, HTML: autoReply},
		{From: creds.Email, Password: creds.Passcode, To: ownerEmail, Subject: "New Email from " + in.SenderName, HTML: notification},
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, env := range envelopes {
		g.Go(func() error {
			if err := s.mailer.Send(gctx, env); err != nil {
				return fmt.Errorf("send %q to %s: %w", env.Subject, env.To, err)
			}
			return nil
		})
	}
	sendErr := g.Wait()
	if sendErr != nil && !s.cfg.PersistOnSendFailure {
		return sendErr
	}

	msg := &models.ContactMessage{
		SenderEmail: in.SenderEmail,
		SenderName:  in.SenderName,
		Subject:     in.Subject,
		Message:     in.Message,
		ToProfileID: profile.ID,
	}
	if err := s.contacts.CreateContactMessage(ctx, msg); err != nil {
		return errors.Join(sendErr, fmt.Errorf("store contact message: %w", err))
	}
	return sendErr
}

// resolveCredentials picks each field from the profile override, then the
// primary default, then the secondary default.
func (s *ContactService) resolveCredentials(p *models.Profile) models.EmailCredentials {
	var override models.EmailCredentials
	if p.AutoEmailCredentials != nil {
		override = *p.AutoEmailCredentials
	}
	return models.EmailCredentials{
		Email:    firstNonEmpty(override.Email, s.cfg.Primary.Email, s.cfg.Secondary.Email),
		Passcode: firstNonEmpty(override.Passcode, s.cfg.Primary.Passcode, s.cfg.Secondary.Passcode),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
