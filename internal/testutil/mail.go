package testutil

import (
	"context"
	"sync"

	"github.com/studymate/auth-backend/internal/mail"
)

// MailRecorder is a mail.Sender that keeps every message it is asked to send.
type MailRecorder struct {
	mu       sync.Mutex
	messages []mail.Message
	// Err, when set, fails every Send after recording the attempt.
	Err error
}

func (r *MailRecorder) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.Err
}

func (r *MailRecorder) Messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.messages...)
}
