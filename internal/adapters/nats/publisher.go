package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

const (
	contactStream = "CRIMEMAP_CONTACT"
	// ContactSubject receives every accepted contact-form submission.
	ContactSubject = "crimemap.contact.submitted"
)

// Publisher implements ports.ContactNotifier using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the contact stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("crimemap-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      contactStream,
		Subjects:  []string{"crimemap.contact.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishContact stores a contact message on the contact stream.
func (p *Publisher) PublishContact(ctx context.Context, msg *domain.ContactMessage) error {
	data, err := EncodeContact(msg)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ContactSubject, data, nats.Context(ctx))
	return err
}

// EncodeContact is the wire form of a contact message.
func EncodeContact(msg *domain.ContactMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode contact message: %w", err)
	}
	return data, nil
}

// Connected reports whether the connection is currently up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
