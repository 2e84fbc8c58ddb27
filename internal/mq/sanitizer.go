// Package mq masks JSON messages flowing through RabbitMQ.
// Producers publish raw payloads to the masking.raw exchange. The sanitizer
// masks each body and republishes it to masking.sanitized for downstream
// consumers such as audit log shippers.
package mq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
	"github.com/eco2-team/backend/domains/json-masker/internal/logging"
	"github.com/eco2-team/backend/domains/json-masker/internal/masking"
	"github.com/eco2-team/backend/domains/json-masker/internal/metrics"
)

const (
	// RawExchange receives unmasked messages.
	RawExchange = "masking.raw"
	// SanitizedExchange receives masked copies.
	SanitizedExchange = "masking.sanitized"
	// queueName is shared by all replicas so each message is masked once.
	queueName    = "masking.raw.sanitizer"
	exchangeType = "fanout"

	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
)

var (
	mqMessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "json_masker",
		Subsystem: "mq",
		Name:      "messages_received_total",
		Help:      "Total number of messages received from the raw exchange",
	})

	mqMessagesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "json_masker",
		Subsystem: "mq",
		Name:      "messages_published_total",
		Help:      "Total number of masked messages published",
	})

	mqMessagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "json_masker",
		Subsystem: "mq",
		Name:      "messages_failed_total",
		Help:      "Total number of messages that could not be republished",
	})

	mqConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "json_masker",
		Subsystem: "mq",
		Name:      "connection_status",
		Help:      "Current connection status (1=connected, 0=disconnected)",
	})

	mqReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "json_masker",
		Subsystem: "mq",
		Name:      "reconnects_total",
		Help:      "Total number of reconnection attempts",
	})
)

// Publisher is the subset of *amqp.Channel used to republish messages.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ Publisher = (*amqp.Channel)(nil)

// Sanitizer consumes raw messages and republishes masked copies.
type Sanitizer struct {
	amqpURL  string
	masker   *masking.Masker
	maskChar string
	logger   *logging.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// NewSanitizer creates a Sanitizer. Call Start to begin consuming.
func NewSanitizer(amqpURL string, masker *masking.Masker, maskChar string, logger *logging.Logger) (*Sanitizer, error) {
	if masker == nil {
		return nil, errors.New(constants.ErrMaskerRequired)
	}
	if logger == nil {
		return nil, errors.New(constants.ErrLoggerRequired)
	}
	return &Sanitizer{
		amqpURL:  amqpURL,
		masker:   masker,
		maskChar: maskChar,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start consumes in the background and reconnects on connection failure.
func (s *Sanitizer) Start() {
	go s.consumeLoop()
}

// Stop stops the consumer. It is safe to call more than once.
func (s *Sanitizer) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Sanitizer) consumeLoop() {
	for {
		select {
		case <-s.done:
			s.logger.Info("MQ sanitizer stopped")
			return
		default:
		}

		if err := s.connect(); err != nil {
			s.logger.Error("MQ connection failed",
				"error", err,
				"retry_in", reconnectDelay,
			)
			mqConnectionStatus.Set(0)
			mqReconnects.Inc()
			select {
			case <-s.done:
			case <-time.After(reconnectDelay):
			}
		}
	}
}

func (s *Sanitizer) connect() error {
	conn, err := amqp.Dial(s.amqpURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, name := range []string{RawExchange, SanitizedExchange} {
		if err := ch.ExchangeDeclare(
			name,         // name
			exchangeType, // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		); err != nil {
			return err
		}
	}

	q, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return err
	}

	if err := ch.QueueBind(q.Name, "", RawExchange, false, nil); err != nil {
		return err
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // arguments
	)
	if err != nil {
		return err
	}

	mqConnectionStatus.Set(1)
	s.logger.Info("MQ sanitizer connected",
		"exchange", RawExchange,
		"queue", q.Name,
		"publish_exchange", SanitizedExchange,
	)

	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-s.done:
			return nil
		case err := <-connClose:
			s.logger.Warn("MQ connection closed", "error", err)
			mqConnectionStatus.Set(0)
			if err == nil {
				return errors.New("amqp connection closed")
			}
			return err
		case msg, ok := <-msgs:
			if !ok {
				mqConnectionStatus.Set(0)
				return errors.New("amqp delivery channel closed")
			}
			if err := s.handleMessage(context.Background(), ch, msg); err != nil {
				msg.Nack(false, true)
				continue
			}
			msg.Ack(false)
		}
	}
}

// handleMessage masks one delivery and publishes it to SanitizedExchange.
func (s *Sanitizer) handleMessage(ctx context.Context, pub Publisher, msg amqp.Delivery) error {
	start := time.Now()
	mqMessagesReceived.Inc()
	metrics.BodySize.WithLabelValues(metrics.TransportMQ).Observe(float64(len(msg.Body)))

	masked := s.masker.MaskFieldsContext(ctx, string(msg.Body), s.maskChar)

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[constants.HeaderMasked] = s.masker.Enabled()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := pub.PublishWithContext(ctx, SanitizedExchange, msg.RoutingKey, false, false, amqp.Publishing{
		Headers:       headers,
		ContentType:   msg.ContentType,
		DeliveryMode:  msg.DeliveryMode,
		CorrelationId: msg.CorrelationId,
		MessageId:     msg.MessageId,
		Timestamp:     msg.Timestamp,
		Type:          msg.Type,
		AppId:         msg.AppId,
		Body:          []byte(masked),
	})
	if err != nil {
		s.logger.Error("Failed to publish masked message",
			"error", err,
			"exchange", SanitizedExchange,
			"message_id", msg.MessageId,
		)
		mqMessagesFailed.Inc()
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypePublish).Inc()
		s.record(metrics.ResultError, start)
		return err
	}

	mqMessagesPublished.Inc()
	if s.masker.Enabled() {
		s.record(metrics.ResultMasked, start)
	} else {
		s.record(metrics.ResultPassthrough, start)
	}
	return nil
}

func (s *Sanitizer) record(result string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(metrics.TransportMQ, result).Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues(metrics.TransportMQ, result).Inc()
}
