package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultQueue       = "parish.reservations"
	DefaultDialTimeout = 2 * time.Second
	DefaultRetryDelay  = 15 * time.Second

	heartbeat = 10 * time.Second
)

var (
	// ErrConnect возвращается, когда не удалось подключиться к брокеру
	ErrConnect = errors.New("eventbus: failed to connect")

	// ErrPublish возвращается, когда не удалось отправить сообщение
	ErrPublish = errors.New("eventbus: failed to publish")

	// ErrBrokerUnavailable возвращается без попытки подключения, пока не истекла пауза после неудачи
	ErrBrokerUnavailable = errors.New("eventbus: broker unavailable")
)

// Publisher отправляет события бронирований в RabbitMQ
// Подключение создается при первой отправке и пересоздается после обрыва.
// Подключение ограничено dialTimeout и контекстом запроса, после неудачи
// следующие retryDelay публикации сразу возвращают ErrBrokerUnavailable.
// Publisher с пустым URL ничего не отправляет.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	retryDelay  time.Duration
	now         func() time.Time

	mu         sync.Mutex
	conn       *amqp.Connection
	ch         *amqp.Channel
	retryAfter time.Time
}

// Option настройка Publisher
type Option func(*Publisher)

// WithDialTimeout задает таймаут подключения и AMQP handshake
func WithDialTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.dialTimeout = d
		}
	}
}

// WithRetryDelay задает паузу между попытками подключения после неудачи
func WithRetryDelay(d time.Duration) Option {
	return func(p *Publisher) {
		if d >= 0 {
			p.retryDelay = d
		}
	}
}

// NewPublisher создает издателя событий
func NewPublisher(url, queue string, opts ...Option) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	p := &Publisher{
		url:         url,
		queue:       queue,
		dialTimeout: DefaultDialTimeout,
		retryDelay:  DefaultRetryDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled сообщает, настроен ли брокер
func (p *Publisher) Enabled() bool {
	return p != nil && p.url != ""
}

// Publish отправляет событие как persistent JSON сообщение в durable очередь
func (p *Publisher) Publish(ctx context.Context, event ReservationEvent) error {
	if !p.Enabled() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %w", ErrPublish, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("%w: %s: %w", ErrPublish, event.Type, err)
	}

	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	return err
}

// channel возвращает открытый канал, при необходимости переподключаясь
// Вызывается под p.mu
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if now := p.now(); now.Before(p.retryAfter) {
		return nil, fmt.Errorf("%w: next attempt in %s", ErrBrokerUnavailable, p.retryAfter.Sub(now).Round(time.Second))
	}

	ch, err := p.connect(ctx)
	if err != nil {
		p.retryAfter = p.now().Add(p.retryDelay)
		return nil, err
	}
	p.retryAfter = time.Time{}
	return ch, nil
}

func (p *Publisher) connect(ctx context.Context) (*amqp.Channel, error) {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      p.dial(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %w", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %w", ErrConnect, err)
	}

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare queue %s: %w", ErrConnect, p.queue, err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

// dial TCP подключение с таймаутом; дедлайн на сокете покрывает и AMQP handshake,
// amqp091 снимает его после успешного открытия соединения
func (p *Publisher) dial(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		dialer := net.Dialer{Timeout: p.dialTimeout}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(time.Now().Add(p.dialTimeout)); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}
