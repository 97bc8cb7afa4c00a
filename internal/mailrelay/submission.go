// Package mailrelay accepts contact-form submissions over HTTP and forwards
// them to a mail provider.
package mailrelay

import (
	"bytes"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen    = 200
	maxMessageLen = 5000
)

type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
}

func (s Submission) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	case s.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidSubmission)
	case s.Message == "":
		return fmt.Errorf("%w: message is required", ErrInvalidSubmission)
	case utf8.RuneCountInString(s.Name) > maxNameLen:
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidSubmission, maxNameLen)
	case utf8.RuneCountInString(s.Message) > maxMessageLen:
		return fmt.Errorf("%w: message longer than %d characters", ErrInvalidSubmission, maxMessageLen)
	}
	addr, err := mail.ParseAddress(s.Email)
	if err != nil || addr.Address != s.Email {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidSubmission, s.Email)
	}
	return nil
}

// Message is an outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

var bodyTemplate = template.Must(template.New("body").Parse(`<div>
  <h2>New Message from {{.Name}}</h2>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Message:</strong> {{.Message}}</p>
</div>
`))

// Compose renders a validated submission into a message. Submitted text is
// HTML-escaped by the template.
func Compose(s Submission, from string, to []string, subjectPrefix string) (Message, error) {
	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, s); err != nil {
		return Message{}, err
	}
	subject := s.Name
	if subjectPrefix != "" {
		subject = subjectPrefix + " " + s.Name
	}
	return Message{
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    body.String(),
	}, nil
}
