package core

import (
	"context"
	"fmt"
	"html"

	"ojttracker.com/ojttracker/infrastructure/mail"
	"ojttracker.com/ojttracker/ojt/model"
)

// MailNotifier emails students when their registration is approved.
type MailNotifier struct {
	From   string
	Sender mail.Sender
}

func (n *MailNotifier) StudentApproved(ctx context.Context, s *model.Student) error {
	if s.UserEmail == "" {
		return nil
	}
	return n.Sender.Send(ctx, ApprovalEmail(n.From, s))
}

func ApprovalEmail(from string, s *model.Student) *mail.EmailInfo {
	text := fmt.Sprintf("Hi %s,\n\nYour OJT registration (%s) has been approved. You can now clock in and out from the attendance page.\n",
		s.FirstName, s.StudentNumber)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your OJT registration (<b>%s</b>) has been approved. You can now clock in and out from the attendance page.</p>",
		html.EscapeString(s.FirstName), html.EscapeString(s.StudentNumber))
	return &mail.EmailInfo{
		From:    from,
		To:      []string{s.UserEmail},
		Subject: "Your OJT registration was approved",
		Text:    text,
		HTML:    body,
	}
}
