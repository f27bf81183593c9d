package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AdamBeresnev/op-bracket/internal/config"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type JetStreamPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect dials NATS and makes sure the bracket event stream exists.
func Connect(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream := cfg.Stream
	if stream == "" {
		stream = BracketEventsStream
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{BracketEventsWildcard},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", stream, err)
	}

	return &JetStreamPublisher{conn: nc, js: js, logger: log}, nil
}

func (p *JetStreamPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func (p *JetStreamPublisher) PublishBracketBuilt(ctx context.Context, event BracketBuiltEvent) error {
	return p.publish(ctx, BracketBuilt, event)
}

func (p *JetStreamPublisher) PublishMatchCompleted(ctx context.Context, event MatchCompletedEvent) error {
	return p.publish(ctx, MatchCompleted, event)
}

func (p *JetStreamPublisher) PublishTournamentCompleted(ctx context.Context, event TournamentCompletedEvent) error {
	return p.publish(ctx, TournamentCompleted, event)
}

func (p *JetStreamPublisher) publish(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug("published event", "subject", subject)
	return nil
}
