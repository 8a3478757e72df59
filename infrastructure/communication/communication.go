package communication

import (
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

// NewSlack returns nil without a token; every method is safe on nil.
func NewSlack(token string, options SlackOption) *Slack {
	if token == "" {
		return nil
	}
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	if s == nil || channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	if s == nil {
		return nil
	}
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	if s == nil {
		return nil
	}
	return s.postMessage(s.options.ErrorChannelID, message)
}

// Notify posts in the background and only logs failures.
func (s *Slack) Notify(isError bool, message string) {
	if s == nil {
		return
	}
	go func() {
		post := s.Info
		if isError {
			post = s.Error
		}
		if err := post(message); err != nil {
			slog.Warn("slack notification failed", "error", err)
		}
	}()
}
