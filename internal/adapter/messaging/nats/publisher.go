package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// Publisher sends JSON events over NATS core.
type Publisher struct {
	conn *nats.Conn
	log  logger.Logger
}

func NewPublisher(url string, log logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("autodek-listing"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn, log: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debugf("published event to %s", subject)
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}
