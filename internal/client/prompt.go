package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	api "github.com/atinyakov/portfolio-api/internal/server/handler/http"
)

// Prompter asks for field values line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

// Login asks for credentials.
func (p *Prompter) Login() (email, password string) {
	return p.Ask("Email"), p.Ask("Password")
}

// Signup asks for the fields of a new account.
func (p *Prompter) Signup() api.SignupRequest {
	return api.SignupRequest{
		Email:     p.Ask("Email"),
		Password:  p.Ask("Password"),
		Firstname: p.Ask("First name"),
		Lastname:  p.Ask("Last name"),
	}
}

// Contact asks for a contact form message addressed to profileID.
func (p *Prompter) Contact(profileID string) api.ContactRequest {
	return api.ContactRequest{
		SenderEmail: p.Ask("Your email"),
		SenderName:  p.Ask("Your name"),
		Subject:     p.Ask("Subject"),
		Message:     p.Ask("Message"),
		ToProfileID: profileID,
	}
}
