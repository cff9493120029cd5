package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errConfirmTimeout = errors.New("confirm/return timeout")

// outboxPublisher delivers one claimed row; a nil error means the broker acked it.
type outboxPublisher interface {
	Publish(ctx context.Context, m outboxRow) error
}

// confirmPublisher publishes mandatory persistent messages on a channel in
// confirm mode and waits for the broker verdict on each one.
type confirmPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	appID    string
	confirms <-chan amqp.Confirmation
	returns  <-chan amqp.Return
}

func dialPublisher(cfg OutboxConfig) (*confirmPublisher, error) {
	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &confirmPublisher{
		conn:     conn,
		ch:       ch,
		exchange: cfg.Exchange,
		appID:    cfg.AppID,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 100)),
		returns:  ch.NotifyReturn(make(chan amqp.Return, 100)),
	}, nil
}

func (p *confirmPublisher) Close() {
	_ = p.ch.Close()
	_ = p.conn.Close()
}

func (p *confirmPublisher) Publish(ctx context.Context, m outboxRow) error {
	p.drain()

	err := p.ch.PublishWithContext(ctx, p.exchange, m.RoutingKey, true, false, amqp.Publishing{
		ContentType:   "application/json",
		Body:          m.Payload,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		MessageId:     m.MessageID.String(),
		CorrelationId: m.TraceID,
		AppId:         p.appID,
	})
	if err != nil {
		return fmt.Errorf("publish error: %w", err)
	}
	return awaitConfirm(p.confirms, p.returns, confirmWait*2)
}

// drain drops notifications left over from a previous publish that timed out.
func (p *confirmPublisher) drain() {
	for {
		select {
		case <-p.returns:
		case <-p.confirms:
		default:
			return
		}
	}
}

// awaitConfirm waits for the confirm of a single publish. A mandatory Return
// arrives before its Confirm, so a return is remembered and reported once the
// confirm (or the deadline) shows up.
func awaitConfirm(confirms <-chan amqp.Confirmation, returns <-chan amqp.Return, wait time.Duration) error {
	deadline := time.After(wait)
	var returned *amqp.Return
	for {
		select {
		case ret := <-returns:
			returned = &ret
		case c := <-confirms:
			if returned != nil {
				return noRoute(*returned)
			}
			if !c.Ack {
				return fmt.Errorf("NACK: delivery_tag=%d", c.DeliveryTag)
			}
			return nil
		case <-deadline:
			if returned != nil {
				return noRoute(*returned)
			}
			return errConfirmTimeout
		}
	}
}

func noRoute(ret amqp.Return) error {
	return fmt.Errorf("NO_ROUTE: code=%d text=%s exchange=%s rk=%s",
		ret.ReplyCode, ret.ReplyText, ret.Exchange, ret.RoutingKey)
}
