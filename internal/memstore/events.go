package memstore

import (
	"context"
	"sync"
)

type Published struct {
	Exchange string
	Key      string
	Event    any
	ReqID    string
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []Published
	Err    error
}

func (p *Publisher) Publish(_ context.Context, exchange, key string, event any, reqID string) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, Published{Exchange: exchange, Key: key, Event: event, ReqID: reqID})
	return nil
}

func (p *Publisher) Close() error { return nil }

func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Key)
	}
	return out
}
