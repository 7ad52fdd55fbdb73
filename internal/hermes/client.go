package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const publishTimeout = 2 * time.Second

// Client publishes domain events. Implementations must be safe for concurrent use.
type Client interface {
	Publish(subject string, event any) error
	Close()
}

// identified events carry a stable ID so the stream drops redelivered copies.
type identified interface {
	MsgID() string
}

type NATSClient struct {
	conn        *nats.Conn
	js          jetstream.JetStream
	streamReady bool
	logger      *slog.Logger
}

// NewNATSClient connects to NATS and makes sure the event stream exists. Without
// the stream, events fall back to core NATS and are not persisted.
func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name("qualify"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}
	if err := c.ensureStream(ctx); err != nil {
		logger.Warn("event stream unavailable, publishing without persistence", "stream", StreamName, "error", err)
	} else {
		c.streamReady = true
	}
	return c, nil
}

func (c *NATSClient) ensureStream(ctx context.Context) error {
	maxAge, err := time.ParseDuration(StreamMaxAge)
	if err != nil {
		return fmt.Errorf("stream max age: %w", err)
	}
	_, err = c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   StreamSubjects,
		MaxAge:     maxAge,
		Duplicates: 2 * time.Minute,
	})
	return err
}

func (c *NATSClient) Publish(subject string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if !c.streamReady {
		return c.conn.Publish(subject, payload)
	}

	var opts []jetstream.PublishOpt
	if ev, ok := event.(identified); ok {
		opts = append(opts, jetstream.WithMsgID(ev.MsgID()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if _, err := c.js.Publish(ctx, subject, payload, opts...); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (c *NATSClient) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// NopClient drops every event. It stands in when no NATS URL is configured.
type NopClient struct{}

func (NopClient) Publish(string, any) error { return nil }
func (NopClient) Close()                    {}
