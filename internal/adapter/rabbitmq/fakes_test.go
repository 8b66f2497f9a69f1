package rabbitmq

import (
	"context"
	"sync"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	exchanges map[string]string
	queues    map[string]amqp.Table
	bindings  []string
	published []published
	deliver   chan amqp.Delivery
	closeCh   chan *amqp.Error
	closed    bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges: map[string]string{},
		queues:    map[string]amqp.Table{},
		deliver:   make(chan amqp.Delivery, 16),
		closeCh:   make(chan *amqp.Error, 1),
	}
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges[name] = kind
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		name = "amq.gen-test"
	}
	c.queues[name] = args
	return Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = append(c.bindings, exchange+"->"+name+"/"+key)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliver, nil
}

func (c *fakeChannel) Qos(int, int, bool) error { return nil }

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) NotifyClose() <-chan *amqp.Error { return c.closeCh }

type fakeConnection struct {
	ch         *fakeChannel
	reconnects atomic.Int32
	closed     bool
}

func (c *fakeConnection) Channel() (Channel, error) { return c.ch, nil }
func (c *fakeConnection) Close() error              { c.closed = true; return nil }
func (c *fakeConnection) IsClosed() bool            { return c.closed }

func (c *fakeConnection) Reconnect() error {
	c.reconnects.Add(1)
	return nil
}

// ackRecorder captures what the consumer did with each delivery
type ackRecorder struct {
	mu      sync.Mutex
	acked   []uint64
	requeue []uint64
	dropped []uint64
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if requeue {
		a.requeue = append(a.requeue, tag)
	} else {
		a.dropped = append(a.dropped, tag)
	}
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *ackRecorder) total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acked) + len(a.requeue) + len(a.dropped)
}
