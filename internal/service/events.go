package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/helper"
	"github.com/tazhibayda/jobboard/internal/log"
	"github.com/tazhibayda/jobboard/internal/queue"
)

// Events publishes domain events. Failures are logged and never reach the caller.
type Events struct {
	Pub      queue.Publisher
	Exchange string
	Log      *zap.Logger
}

func (e *Events) emit(ctx context.Context, key string, event any) {
	if e == nil || e.Pub == nil {
		return
	}
	if err := e.Pub.Publish(ctx, e.Exchange, key, event, helper.RequestID(ctx)); err != nil {
		l := e.Log
		if l == nil {
			l = zap.L()
		}
		log.WithDD(ctx, l).Warn("publish failed", zap.String("key", key), zap.Error(err))
	}
}
