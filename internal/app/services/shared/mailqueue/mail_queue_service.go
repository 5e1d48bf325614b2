package mailqueue

import (
	"context"
	"errors"
	"sync"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const deadLetterSuffix = ".dlq"

var (
	errPublishNotConfirmed = errors.New("message not confirmed by broker")
	errConfirmModeDisabled = errors.New("channel is not in confirm mode")
)

// confirmation is the broker's answer to a single publish.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// channel is the part of an AMQP channel the queue uses.
type channel interface {
	Publish(ctx context.Context, queue string, msg amqp.Publishing) (confirmation, error)
	Get(queue string, autoAck bool) (amqp.Delivery, bool, error)
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple, requeue bool) error
}

// amqpChannel publishes with deferred confirms, so every publish waits on the
// confirm carrying its own delivery tag.
type amqpChannel struct {
	*amqp.Channel
}

func (c amqpChannel) Publish(ctx context.Context, queue string, msg amqp.Publishing) (confirmation, error) {
	deferred, err := c.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, msg)
	if err != nil {
		return nil, err
	}
	if deferred == nil {
		return nil, errConfirmModeDisabled
	}
	return deferred, nil
}

// mailQueue is the outbox between payment confirmation and SMTP delivery.
type mailQueue struct {
	ch        channel
	log       *zap.Logger
	queueName string
	deadQueue string
	mu        sync.Mutex
}

func NewMailQueue(conn *amqp.Connection, log *zap.Logger, queueName string, prefetch int) (contracts.MailQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	deadQueue := queueName + deadLetterSuffix
	for _, name := range []string{queueName, deadQueue} {
		_, err = ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return nil, err
		}
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return newMailQueue(amqpChannel{Channel: ch}, log, queueName), nil
}

func newMailQueue(ch channel, log *zap.Logger, queueName string) *mailQueue {
	return &mailQueue{
		ch:        ch,
		log:       log,
		queueName: queueName,
		deadQueue: queueName + deadLetterSuffix,
	}
}

func (q *mailQueue) Enqueue(ctx context.Context, payload *requests.EmailPayload) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	q.log.Info("mailQueue.Enqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, payload.ID),
	)
	return q.publishJSON(ctx, q.queueName, payload)
}

func (q *mailQueue) Reenqueue(ctx context.Context, payload *requests.EmailPayload) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	q.log.Info("mailQueue.Reenqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, payload.ID),
		zap.Int(constvars.LoggingFailedCountKey, payload.FailedCount),
	)
	return q.publishJSON(ctx, q.queueName, payload)
}

func (q *mailQueue) EnqueueToDeadQueue(ctx context.Context, payload *requests.EmailPayload) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	q.log.Warn("mailQueue.EnqueueToDeadQueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, payload.ID),
		zap.Int(constvars.LoggingFailedCountKey, payload.FailedCount),
	)
	return q.publishJSON(ctx, q.deadQueue, payload)
}

// FetchN pulls up to n deliveries with basic.get and no auto-ack. Deliveries
// whose body is not an EmailPayload are parked on the dead letter queue.
func (q *mailQueue) FetchN(ctx context.Context, n int) ([]requests.QueuedEmail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if n <= 0 {
		n = 1
	}
	items := make([]requests.QueuedEmail, 0, n)

	for i := 0; i < n; i++ {
		q.mu.Lock()
		delivery, ok, err := q.ch.Get(q.queueName, false)
		q.mu.Unlock()
		if err != nil {
			return items, exceptions.ErrRabbitMQConsumeMessage(err, q.queueName)
		}
		if !ok {
			break
		}

		var payload requests.EmailPayload
		if err := json.Unmarshal(delivery.Body, &payload); err != nil {
			q.log.Warn("mailQueue.FetchN poison message moved to dead letter queue",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Uint64(constvars.LoggingDeliveryTagKey, delivery.DeliveryTag),
				zap.Error(err),
			)
			if pubErr := q.publish(ctx, q.deadQueue, delivery.Body); pubErr != nil {
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					q.log.Error("mailQueue.FetchN error returning poison message to queue",
						zap.String(constvars.LoggingRequestIDKey, requestID),
						zap.Uint64(constvars.LoggingDeliveryTagKey, delivery.DeliveryTag),
						zap.Error(nackErr),
					)
				}
				return items, pubErr
			}
			if ackErr := delivery.Ack(false); ackErr != nil {
				q.log.Error("mailQueue.FetchN error acking poison message",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Uint64(constvars.LoggingDeliveryTagKey, delivery.DeliveryTag),
					zap.Error(ackErr),
				)
			}
			continue
		}
		items = append(items, requests.QueuedEmail{DeliveryTag: delivery.DeliveryTag, Payload: payload})
	}

	q.log.Debug("mailQueue.FetchN fetched",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueNameKey, q.queueName),
		zap.Int(constvars.LoggingCountKey, len(items)),
	)
	return items, nil
}

func (q *mailQueue) Ack(ctx context.Context, deliveryTag uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ch.Ack(deliveryTag, false); err != nil {
		return exceptions.ErrRabbitMQConsumeMessage(err, q.queueName)
	}
	return nil
}

func (q *mailQueue) Nack(ctx context.Context, deliveryTag uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.ch.Nack(deliveryTag, false, true); err != nil {
		return exceptions.ErrRabbitMQConsumeMessage(err, q.queueName)
	}
	return nil
}

func (q *mailQueue) publishJSON(ctx context.Context, queue string, payload *requests.EmailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return q.publish(ctx, queue, body)
}

// publish sends body and waits for the broker confirm of that message only.
// A confirm that arrives after ctx is done is dropped with its own
// confirmation and never answers a later publish.
func (q *mailQueue) publish(ctx context.Context, queue string, body []byte) error {
	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	q.mu.Lock()
	confirm, err := q.ch.Publish(ctx, queue, msg)
	q.mu.Unlock()
	if err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}
	if !acked {
		return exceptions.ErrRabbitMQPublishMessage(errPublishNotConfirmed, queue)
	}
	return nil
}
