package messaging

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const memoryBuffer = 64

// Memory is an in-process broker. Subscribers sharing a queue group receive
// each message once between them; every other subscriber receives a copy.
type Memory struct {
	mu     sync.Mutex
	subs   map[string][]*memorySub
	next   map[string]int
	closed bool
}

type memorySub struct {
	group string
	ch    chan *memoryMessage
}

// NewMemory returns an empty broker.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]*memorySub), next: make(map[string]int)}
}

// Close stops accepting publishes. Running consumers exit with their contexts.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Publish routes msg to the current subscribers of subject. A subject with
// no subscribers drops the message, as core NATS does.
func (m *Memory) Publish(ctx context.Context, subject string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if subject == "" {
		return PublishResult{}, ErrSubjectRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	targets, err := m.route(subject)
	if err != nil {
		return PublishResult{}, err
	}

	now := time.Now()
	for _, sub := range targets {
		select {
		case sub.ch <- newMemoryMessage(subject, msg, now):
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{Subject: subject, Timestamp: now}, nil
}

func (m *Memory) route(subject string) ([]*memorySub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}

	var targets []*memorySub
	groups := make(map[string][]*memorySub)
	for _, sub := range m.subs[subject] {
		if sub.group == "" {
			targets = append(targets, sub)
			continue
		}
		groups[sub.group] = append(groups[sub.group], sub)
	}

	for group, members := range groups {
		key := subject + "\x00" + group
		targets = append(targets, members[m.next[key]%len(members)])
		m.next[key]++
	}

	return targets, nil
}

// Consume subscribes to subject and blocks until ctx is done.
func (m *Memory) Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return ErrSubjectRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{group: co.queueGroup, ch: make(chan *memoryMessage, memoryBuffer)}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	m.subs[subject] = append(m.subs[subject], sub)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case msg := <-sub.ch:
					dispatch(ctx, handler, msg, co.autoAck)
				case <-ctx.Done():
					return
				}
			}
		})
	}

	<-ctx.Done()
	m.unsubscribe(subject, sub)
	wg.Wait()

	return ctx.Err()
}

// Subscribers returns the number of active consumers on subject.
func (m *Memory) Subscribers(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[subject])
}

func (m *Memory) unsubscribe(subject string, sub *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[subject]
	for i, s := range subs {
		if s == sub {
			m.subs[subject] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

type memoryMessage struct {
	subject string
	body    []byte
	headers []Header
	at      time.Time
	acked   atomic.Bool
	nacked  atomic.Bool
}

func newMemoryMessage(subject string, out OutgoingMessage, at time.Time) *memoryMessage {
	body := make([]byte, len(out.Body))
	copy(body, out.Body)

	return &memoryMessage{
		subject: subject,
		body:    body,
		headers: append([]Header(nil), out.Headers...),
		at:      at,
	}
}

func (m *memoryMessage) Body() []byte         { return m.body }
func (m *memoryMessage) Headers() []Header    { return m.headers }
func (m *memoryMessage) Subject() string      { return m.subject }
func (m *memoryMessage) Timestamp() time.Time { return m.at }
func (m *memoryMessage) responded() bool      { return m.acked.Load() || m.nacked.Load() }

func (m *memoryMessage) Header(key string) string {
	for _, h := range m.headers {
		if strings.EqualFold(h.Key, key) {
			return string(h.Value)
		}
	}
	return ""
}

// Ack marks the message handled.
func (m *memoryMessage) Ack(context.Context) error {
	if !m.nacked.Load() {
		m.acked.Store(true)
	}
	return nil
}

// Nack marks the message failed. Memory does not redeliver.
func (m *memoryMessage) Nack(context.Context) error {
	if !m.acked.Load() {
		m.nacked.Store(true)
	}
	return nil
}
