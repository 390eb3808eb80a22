package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "ok", msg: Message{To: "a@b.com", Subject: "s", TextBody: "b"}},
		{name: "no recipient", msg: Message{Subject: "s", TextBody: "b"}, wantErr: true},
		{name: "no body", msg: Message{To: "a@b.com", Subject: "s"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.Send(context.Background(), Message{To: "x@y.com", Subject: "code", TextBody: "123456"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "x@y.com")
	assert.Contains(t, buf.String(), "123456")
}

func TestNewPostmarkSender_InvalidConfig(t *testing.T) {
	_, err := NewPostmarkSender(PostmarkConfig{AccountToken: "a", From: "f@x.com"})
	assert.Error(t, err)

	_, err = NewPostmarkSender(PostmarkConfig{ServerToken: "s", AccountToken: "a"})
	assert.Error(t, err)
}

func TestPostmarkSender_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":0,"Message":"OK","MessageID":"abc"}`))
	}))
	defer srv.Close()

	sender, err := NewPostmarkSender(PostmarkConfig{
		ServerToken:  "server-token",
		AccountToken: "account-token",
		From:         "no-reply@studymate.app",
		BaseURL:      srv.URL,
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{To: "x@y.com", Subject: "StudyMate 인증 코드", TextBody: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "x@y.com", got["To"])
	assert.Equal(t, "no-reply@studymate.app", got["From"])
}

func TestPostmarkSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	}))
	defer srv.Close()

	sender, err := NewPostmarkSender(PostmarkConfig{
		ServerToken:  "s",
		AccountToken: "a",
		From:         "no-reply@studymate.app",
		BaseURL:      srv.URL,
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{To: "x@y.com", Subject: "s", TextBody: "b"})
	assert.ErrorIs(t, err, ErrSendFailed)
}
