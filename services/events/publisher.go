package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
)

const (
	ExchangeWarmupLifecycle = "warmup-lifecycle"
	QueueWarmupLifecycle    = "warmup-lifecycle"
	DLQWarmupLifecycle      = QueueWarmupLifecycle + "-dlq"
	ExchangeDeadLetter      = "dead-letter"
	RoutingKeyDeadLetter    = "dead-letter"

	DefaultMessageTTL          = 240 * time.Hour
	DefaultMaxRetries          = 3
	DefaultPublishTimeout      = 5 * time.Second
	DefaultReconnectBackoff    = time.Second
	DefaultMaxReconnectBackoff = 30 * time.Second
)

type PublisherConfig struct {
	MessageTTL          time.Duration
	MaxRetries          int
	PublishTimeout      time.Duration
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
}

// RabbitMQPublisher fans out lifecycle events over a single durable
// exchange/queue pair with a dead-letter sibling, reconnecting and
// retrying with backoff on connection loss.
type RabbitMQPublisher struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	publishChannel  *amqp091.Channel
	publishMutex    sync.Mutex
	url             string
	logger          logger.Logger
	confirms        chan amqp091.Confirmation
	config          PublisherConfig
}

func NewRabbitMQPublisher(rabbitmqURL string, log logger.Logger, cfg *PublisherConfig) (interfaces.EventPublisher, error) {
	if cfg == nil {
		cfg = &PublisherConfig{
			MessageTTL:          DefaultMessageTTL,
			MaxRetries:          DefaultMaxRetries,
			PublishTimeout:      DefaultPublishTimeout,
			ReconnectBackoff:    DefaultReconnectBackoff,
			MaxReconnectBackoff: DefaultMaxReconnectBackoff,
		}
	}

	publisher := &RabbitMQPublisher{
		url:    rabbitmqURL,
		logger: log,
		config: *cfg,
	}

	if err := publisher.connect(); err != nil {
		return nil, err
	}

	return publisher, nil
}

func (r *RabbitMQPublisher) Publish(ctx context.Context, event interfaces.LifecycleEvent) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.Publish")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomainAccount(span, event.DomainAccountID)
	tracing.TagSession(span, event.SessionID)
	span.LogKV("eventType", event.EventType)

	for attempt := 0; attempt < r.config.MaxRetries; attempt++ {
		err := r.publishWithConfirm(ctx, event)
		if err == nil {
			return nil
		}

		r.logger.Warnf("publish attempt %d failed: %v", attempt+1, err)
		if attempt < r.config.MaxRetries-1 {
			time.Sleep(time.Millisecond * 100 * time.Duration(attempt+1))
		}
	}

	err := errors.New("failed to publish lifecycle event after all retries")
	tracing.TraceErr(span, err)
	return err
}

func (r *RabbitMQPublisher) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	r.connection, err = amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	if err := r.setupExchangeAndQueue(); err != nil {
		return errors.Wrap(err, "failed to setup exchange and queue")
	}

	if err := r.setupPublishChannel(); err != nil {
		return errors.Wrap(err, "failed to setup publish channel")
	}

	go r.handleReconnection()

	return nil
}

func (r *RabbitMQPublisher) setupExchangeAndQueue() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	if err := channel.ExchangeDeclare(ExchangeDeadLetter, "direct", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare dead letter exchange")
	}
	if err := channel.ExchangeDeclare(ExchangeWarmupLifecycle, "fanout", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare warmup lifecycle exchange")
	}

	if _, err := channel.QueueDeclare(DLQWarmupLifecycle, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare dead letter queue")
	}
	if err := channel.QueueBind(DLQWarmupLifecycle, RoutingKeyDeadLetter, ExchangeDeadLetter, false, nil); err != nil {
		return errors.Wrap(err, "failed to bind dead letter queue")
	}

	args := amqp091.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": RoutingKeyDeadLetter,
		"x-message-ttl":             int64(r.config.MessageTTL.Milliseconds()),
	}
	if _, err := channel.QueueDeclare(QueueWarmupLifecycle, true, false, false, false, args); err != nil {
		return errors.Wrap(err, "failed to declare warmup lifecycle queue")
	}
	if err := channel.QueueBind(QueueWarmupLifecycle, "", ExchangeWarmupLifecycle, false, nil); err != nil {
		return errors.Wrap(err, "failed to bind warmup lifecycle queue")
	}

	return nil
}

func (r *RabbitMQPublisher) setupPublishChannel() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open publish channel")
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		return errors.Wrap(err, "failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

func (r *RabbitMQPublisher) ensureConnectionAndChannel() error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(); err != nil {
			return errors.Wrap(err, "failed to establish connection")
		}
	}
	if r.publishChannel == nil || r.publishChannel.IsClosed() {
		if err := r.setupPublishChannel(); err != nil {
			return errors.Wrap(err, "failed to establish channel")
		}
	}
	return nil
}

func (r *RabbitMQPublisher) handleReconnection() {
	backoff := r.config.ReconnectBackoff

	for {
		notifyClose := r.connection.NotifyClose(make(chan *amqp091.Error))
		err := <-notifyClose
		r.logger.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", err)

		for {
			if err := r.connect(); err == nil {
				r.logger.Info("successfully reconnected to RabbitMQ")
				break
			}

			r.logger.Errorf("failed to reconnect, retrying in %v", backoff)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > r.config.MaxReconnectBackoff {
				backoff = r.config.MaxReconnectBackoff
			}
		}

		backoff = r.config.ReconnectBackoff
	}
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, event interfaces.LifecycleEvent) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := r.ensureConnectionAndChannel(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal lifecycle event")
	}

	err = r.publishChannel.Publish(
		ExchangeWarmupLifecycle,
		"",
		true,
		false,
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "failed to publish lifecycle event")
	}

	select {
	case confirm := <-r.confirms:
		if !confirm.Ack {
			return errors.New("message was not confirmed by server")
		}
	case <-time.After(r.config.PublishTimeout):
		return errors.New("publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (r *RabbitMQPublisher) Close() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	if r.publishChannel != nil {
		if closeErr := r.publishChannel.Close(); closeErr != nil {
			r.logger.Errorf("error closing publish channel: %v", closeErr)
			err = closeErr
		}
	}
	if r.connection != nil {
		if closeErr := r.connection.Close(); closeErr != nil {
			r.logger.Errorf("error closing connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}
	return err
}
