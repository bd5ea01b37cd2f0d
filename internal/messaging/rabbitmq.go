package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeName = "trashbeta.events"

	RoutingKeyReportCreated  = "report.created"
	RoutingKeyReportAssigned = "report.assigned"
	RoutingKeyStatusUpdated  = "report.status.updated"
	RoutingKeyReportDeleted  = "report.deleted"

	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// ReportEvent is the integration-facing payload published for every
// lifecycle change.
type ReportEvent struct {
	ReportID   string `json:"report_id"`
	TrackingID string `json:"tracking_id"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	ActorID    string `json:"actor_id,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher is a reconnecting RabbitMQ topic publisher. Downstream
// integrations bind their own queues against the exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.RWMutex
	done    chan struct{}
}

func NewPublisher(url string) (*Publisher, error) {
	p := &Publisher{
		url:  url,
		done: make(chan struct{}),
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	go p.handleReconnect()

	return p, nil
}

func (p *Publisher) connect() error {
	var err error

	p.conn, err = amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	p.channel, err = p.conn.Channel()
	if err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = p.channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	logrus.Info("rabbitmq: connected")
	return nil
}

func (p *Publisher) handleReconnect() {
	for {
		select {
		case <-p.done:
			return
		case err := <-p.conn.NotifyClose(make(chan *amqp.Error)):
			if err != nil {
				logrus.Warnf("rabbitmq: connection lost: %v, reconnecting", err)
			}

			p.mu.Lock()
			for {
				if err := p.connect(); err != nil {
					logrus.Warnf("rabbitmq: reconnect failed: %v, retrying in %v", err, reconnectDelay)
					time.Sleep(reconnectDelay)
					continue
				}
				break
			}
			p.mu.Unlock()
		}
	}
}

// Publish sends one persistent message. The message id makes redeliveries
// detectable by idempotent consumers.
func (p *Publisher) Publish(messageID, routingKey string, body []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.channel == nil {
		return fmt.Errorf("channel not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := p.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	close(p.done)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}

	logrus.Info("rabbitmq: connection closed")
}
