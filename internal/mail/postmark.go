package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mrz1836/postmark"
)

type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	From         string
	// BaseURL overrides the Postmark API endpoint; empty uses the default.
	BaseURL string
}

type PostmarkSender struct {
	client *postmark.Client
	from   string
}

func NewPostmarkSender(cfg PostmarkConfig) (*PostmarkSender, error) {
	if cfg.ServerToken == "" || cfg.AccountToken == "" {
		return nil, errors.New("postmark server and account tokens are required")
	}
	if cfg.From == "" {
		return nil, errors.New("postmark sender address is required")
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	client.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return &PostmarkSender{client: client, from: cfg.From}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
