package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Publisher is the best-effort event side of the notification gateway.
// A publish failure never fails the request that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event interface{}) error
	Close() error
}

type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewProducer(url string, subject string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *Producer) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "event published to NATS", "subject", p.subject)
	return nil
}

func (p *Producer) Close() error {
	p.conn.Close()
	return nil
}
