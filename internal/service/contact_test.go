package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.Envelope
	fail func(env models.Envelope) error
}

func (m *recordingMailer) Send(_ context.Context, env models.Envelope) error {
	if m.fail != nil {
		if err := m.fail(env); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, env)
	return nil
}

func (m *recordingMailer) byTo() map[string]models.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Envelope, len(m.sent))
	for _, e := range m.sent {
		out[e.To] = e
	}
	return out
}

type stubRenderer struct{}

func (stubRenderer) Render(name string, data any) (string, error) {
	d := data.(TemplateData)
	return fmt.Sprintf("%s|%s|%s|%s|%s", name, d.SenderName, d.OwnerName, d.OwnerEmail, d.OwnerPhone), nil
}

type failingRenderer struct{}

func (failingRenderer) Render(string, any) (string, error) {
	return "", errors.New("template missing")
}

type mockContactRepo struct {
	mu     sync.Mutex
	stored []*models.ContactMessage
	err    error
}

func (m *mockContactRepo) CreateContactMessage(_ context.Context, msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, msg)
	return nil
}

var (
	defaultCreds = ContactConfig{
		Primary:   models.EmailCredentials{Email: "noreply@site.com", Passcode: "primary-pass"},
		Secondary: models.EmailCredentials{Email: "backup@site.com", Passcode: "backup-pass"},
	}
	owner = &models.Profile{
		ID:             "p1",
		Email:          "owner@x.com",
		Firstname:      "Ada",
		ContactDetails: models.ContactDetails{Email: "ada@x.com", Phone: "+44"},
	}
	visitor = models.ContactInput{
		SenderEmail: "visitor@y.com",
		SenderName:  "Vic",
		Subject:     "Hello",
		Message:     "<b>hi</b>",
		ToProfileID: "p1",
	}
)

func TestContactMe_SendsBothAndStores(t *testing.T) {
	mailer := &recordingMailer{}
	contacts := &mockContactRepo{}
	svc := NewContactService(profilesWith(owner), contacts, mailer, stubRenderer{}, defaultCreds)

	require.NoError(t, svc.ContactMe(context.Background(), visitor))

	sent := mailer.byTo()
	require.Len(t, sent, 2)

	reply := sent["visitor@y.com"]
	assert.Equal(t, AutoReplySubject, reply.Subject)
	assert.Equal(t, "noreply@site.com", reply.From)
	assert.Equal(t, "primary-pass", reply.Password)
	assert.Equal(t, "auto-reply|Vic|Ada|ada@x.com|+44", reply.HTML)

	note := sent["ada@x.com"]
	assert.Equal(t, "New Email from Vic", note.Subject)
	assert.Equal(t, "notification|Vic|Ada|ada@x.com|+44", note.HTML)

	require.Len(t, contacts.stored, 1)
	assert.Equal(t, "p1", contacts.stored[0].ToProfileID)
	assert.Equal(t, "<b>hi</b>", contacts.stored[0].Message)
}

func TestContactMe_UnknownProfile(t *testing.T) {
	mailer := &recordingMailer{}
	contacts := &mockContactRepo{}
	svc := NewContactService(profilesWith(owner), contacts, mailer, stubRenderer{}, defaultCreds)

	in := visitor
	in.ToProfileID = "ghost"
	err := svc.ContactMe(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.Equal(t, MsgInvalidProfileID, apperr.Message(err, ""))
	assert.Empty(t, mailer.sent)
	assert.Empty(t, contacts.stored)
}

func TestContactMe_CredentialFallbackPerField(t *testing.T) {
	tests := []struct {
		name     string
		override *models.EmailCredentials
		cfg      ContactConfig
		wantFrom string
		wantPass string
	}{
		{
			name:     "profile override wins",
			override: &models.EmailCredentials{Email: "me@x.com", Passcode: "mine"},
			cfg:      defaultCreds,
			wantFrom: "me@x.com",
			wantPass: "mine",
		},
		{
			name:     "partial override falls back per field",
			override: &models.EmailCredentials{Email: "me@x.com"},
			cfg:      defaultCreds,
			wantFrom: "me@x.com",
			wantPass: "primary-pass",
		},
		{
			name:     "secondary fills gaps in primary",
			cfg:      ContactConfig{Primary: models.EmailCredentials{Email: "noreply@site.com"}, Secondary: defaultCreds.Secondary},
			wantFrom: "noreply@site.com",
			wantPass: "backup-pass",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *owner
			p.AutoEmailCredentials = tt.override
			mailer := &recordingMailer{}
			svc := NewContactService(profilesWith(&p), &mockContactRepo{}, mailer, stubRenderer{}, tt.cfg)

			require.NoError(t, svc.ContactMe(context.Background(), visitor))
			for _, env := range mailer.sent {
				assert.Equal(t, tt.wantFrom, env.From)
				assert.Equal(t, tt.wantPass, env.Password)
			}
		})
	}
}

func TestContactMe_NoCredentials(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewContactService(profilesWith(owner), &mockContactRepo{}, mailer, stubRenderer{}, ContactConfig{})

	err := svc.ContactMe(context.Background(), visitor)
	assert.ErrorIs(t, err, ErrNoSenderCredentials)
	assert.True(t, apperr.IsFault(err))
	assert.Empty(t, mailer.sent)
}

func TestContactMe_SendFailureSkipsStore(t *testing.T) {
	mailer := &recordingMailer{fail: func(env models.Envelope) error {
		if env.To == "ada@x.com" {
			return errors.New("smtp 535")
		}
		return nil
	}}
	contacts := &mockContactRepo{}
	svc := NewContactService(profilesWith(owner), contacts, mailer, stubRenderer{}, defaultCreds)

	err := svc.ContactMe(context.Background(), visitor)
	require.Error(t, err)
	assert.True(t, apperr.IsFault(err))
	assert.Contains(t, err.Error(), "smtp 535")
	assert.Empty(t, contacts.stored)
}

func TestContactMe_PersistOnSendFailure(t *testing.T) {
	mailer := &recordingMailer{fail: func(models.Envelope) error { return errors.New("smtp down") }}
	contacts := &mockContactRepo{}
	cfg := defaultCreds
	cfg.PersistOnSendFailure = true
	svc := NewContactService(profilesWith(owner), contacts, mailer, stubRenderer{}, cfg)

	err := svc.ContactMe(context.Background(), visitor)
	require.Error(t, err)
	assert.Len(t, contacts.stored, 1)
}

func TestContactMe_RenderFailure(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewContactService(profilesWith(owner), &mockContactRepo{}, mailer, failingRenderer{}, defaultCreds)

	err := svc.ContactMe(context.Background(), visitor)
	require.Error(t, err)
	assert.True(t, apperr.IsFault(err))
	assert.Empty(t, mailer.sent)
}

func TestContactMe_StoreFailure(t *testing.T) {
	mailer := &recordingMailer{}
	contacts := &mockContactRepo{err: errors.New("insert failed")}
	svc := NewContactService(profilesWith(owner), contacts, mailer, stubRenderer{}, defaultCreds)

	err := svc.ContactMe(context.Background(), visitor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store contact message")

	recipients := make([]string, 0, 2)
	for to := range mailer.byTo() {
		recipients = append(recipients, to)
	}
	sort.Strings(recipients)
	assert.Equal(t, []string{"ada@x.com", "visitor@y.com"}, recipients)
}

func TestContactMe_OwnerEmailFallsBackToProfileEmail(t *testing.T) {
	p := *owner
	p.ContactDetails.Email = ""
	mailer := &recordingMailer{}
	svc := NewContactService(profilesWith(&p), &mockContactRepo{}, mailer, stubRenderer{}, defaultCreds)

	require.NoError(t, svc.ContactMe(context.Background(), visitor))
	_, ok := mailer.byTo()["owner@x.com"]
	assert.True(t, ok)
}
