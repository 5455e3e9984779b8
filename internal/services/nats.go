package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// EventPublisher publishes link lifecycle events via NATS JetStream.
// A nil publisher is valid and drops everything, so callers don't need to
// care whether messaging is configured.
type EventPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// ConnectNATS connects and ensures the link-events stream exists.
func ConnectNATS(url string) (*EventPublisher, error) {
	opts := []nats.Option{
		nats.Name("short-file-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[NATS] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("[NATS] connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, err
	}

	p := &EventPublisher{conn: conn, js: js}
	if err := p.ensureStream(); err != nil {
		log.Printf("[NATS] warning: failed to ensure stream: %v", err)
	}

	log.Println("[NATS] connected and JetStream initialized")
	return p, nil
}

func (p *EventPublisher) ensureStream() error {
	if _, err := p.js.StreamInfo("link-events"); err == nil {
		return nil
	}

	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:     "link-events",
		Subjects: []string{"links.*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// PublishEvent publishes payload as JSON, e.g. subject "links.created".
func (p *EventPublisher) PublishEvent(subject string, payload interface{}) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// Message ID for idempotency on redelivery
	_, err = p.js.Publish(subject, data, nats.MsgId(uuid.New().String()))
	if err != nil {
		log.Printf("[NATS] publish failed subject=%s err=%v", subject, err)
		return err
	}
	return nil
}

// Close drains the connection.
func (p *EventPublisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}
