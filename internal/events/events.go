// Package events publishes pipeline events to NATS. The bus is optional:
// a nil Publisher is safe to use and drops everything.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Client wraps a NATS connection.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient connects to NATS with reconnect handling.
func NewClient(url string, logger *slog.Logger) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("hate-2-action"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return &Client{conn: nc, logger: logger}, nil
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Event is the envelope published on every subject.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher publishes pipeline events.
type Publisher struct {
	client *Client
	logger *slog.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(client *Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) publish(subject, eventType string, data any) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "hate-2-action",
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := p.client.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	p.logger.Debug("published event", "subject", subject, "type", eventType)
	return nil
}

// MessageProcessed publishes the outcome of one pipeline run.
func (p *Publisher) MessageProcessed(messageID int64, problemIDs, solutionIDs, projectIDs []int64) error {
	return p.publish("h2a.message.processed", "message.processed", map[string]any{
		"message_id":   messageID,
		"problem_ids":  problemIDs,
		"solution_ids": solutionIDs,
		"project_ids":  projectIDs,
	})
}
