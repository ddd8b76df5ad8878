package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/mail"
	"github.com/tazhibayda/jobboard/internal/queue"
)

// Handler turns application events into e-mails.
type Handler struct {
	Sender mail.Sender
	Log    *zap.Logger
}

func New(sender mail.Sender, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Sender: sender, Log: log}
}

// Handle is a queue.Handler. Undecodable bodies and unknown keys are permanent failures.
func (h *Handler) Handle(ctx context.Context, key string, body []byte) error {
	var m mail.Message
	switch key {
	case queue.KeyApplicationCreated:
		var ev queue.ApplicationCreated
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("decode %s: %v: %w", key, err, queue.ErrPermanent)
		}
		if ev.CompanyEmail == "" {
			h.Log.Debug("no company email, skipping", zap.String("application_id", ev.ApplicationID))
			return nil
		}
		m = newApplicationMail(ev)
	case queue.KeyStatusChanged:
		var ev queue.ApplicationStatusChanged
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("decode %s: %v: %w", key, err, queue.ErrPermanent)
		}
		if ev.UserEmail == "" {
			h.Log.Debug("no applicant email, skipping", zap.String("application_id", ev.ApplicationID))
			return nil
		}
		m = statusMail(ev)
	default:
		return fmt.Errorf("unknown routing key %q: %w", key, queue.ErrPermanent)
	}

	if err := h.Sender.Send(ctx, m); err != nil {
		return fmt.Errorf("send %s: %w", key, err)
	}
	return nil
}

func newApplicationMail(ev queue.ApplicationCreated) mail.Message {
	name := ev.UserName
	if name == "" {
		name = "A candidate"
	}
	return mail.Message{
		ToEmail: ev.CompanyEmail,
		Subject: fmt.Sprintf("New application for %s", ev.JobTitle),
		Text:    fmt.Sprintf("%s applied for %s on %s.", name, ev.JobTitle, ev.Date.Format("2 Jan 2006")),
		HTML: fmt.Sprintf("<p><strong>%s</strong> applied for <strong>%s</strong>.</p>",
			html.EscapeString(name), html.EscapeString(ev.JobTitle)),
	}
}

func statusMail(ev queue.ApplicationStatusChanged) mail.Message {
	return mail.Message{
		ToEmail: ev.UserEmail,
		ToName:  ev.UserName,
		Subject: fmt.Sprintf("Your application for %s", ev.JobTitle),
		Text: fmt.Sprintf("Hello %s, %s updated your application for %s: %s.",
			ev.UserName, ev.CompanyName, ev.JobTitle, ev.Status),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>%s updated your application for <strong>%s</strong>: <strong>%s</strong>.</p>",
			html.EscapeString(ev.UserName), html.EscapeString(ev.CompanyName), html.EscapeString(ev.JobTitle), html.EscapeString(ev.Status)),
	}
}
