package core

import "net/mail"

type (
	// EmailMessage is a renderable email. TextContent is always set;
	// HTMLContent is optional.
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// EmailService is any service that can send emails.
	// SendMessage is synchronous: a transport failure must surface to the
	// caller so flows like registration can report it instead of silently
	// losing the verification code.
	EmailService interface {
		SendMessage(msg *EmailMessage) error
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
