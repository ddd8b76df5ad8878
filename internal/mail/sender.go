package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/helper"
)

type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender only logs what it would send. Used when no mail provider is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	l := s.Log
	if l == nil {
		l = zap.L()
	}
	l.Info("mail",
		zap.String("to_hash", helper.Hash8(m.ToEmail)),
		zap.String("subject", m.Subject),
		zap.String("body", m.Text),
	)
	return nil
}
