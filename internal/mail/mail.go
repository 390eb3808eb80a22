package mail

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidMessage = errors.New("mail: invalid message")
	ErrSendFailed     = errors.New("mail: send failed")
)

type Message struct {
	To       string
	Subject  string
	TextBody string
	Tag      string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.Join(ErrInvalidMessage, errors.New("recipient is required"))
	}
	if m.Subject == "" || m.TextBody == "" {
		return errors.Join(ErrInvalidMessage, errors.New("subject and body are required"))
	}
	return nil
}

// Sender delivers a single transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
