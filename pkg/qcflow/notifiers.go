package qcflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrChannelNotifierClosed is returned when a channel notifier is used after being closed.
var ErrChannelNotifierClosed = errors.New("qcflow: channel notifier closed")

// AlarmHandler is invoked once per raised alarm.
type AlarmHandler func(context.Context, Notification) error

// NewCallbackNotifier adapts an AlarmHandler into a Notifier so callers can
// plug arbitrary functions without defining structs.
func NewCallbackNotifier(name string, fn AlarmHandler) Notifier {
	if name == "" {
		name = "callback"
	}
	return &callbackNotifier{name: name, fn: fn}
}

// NewChannelNotifier exposes alarms via a channel; it returns the notifier, the
// read-only channel, and a close function the caller should invoke during shutdown.
func NewChannelNotifier(name string, buffer int) (Notifier, <-chan Notification, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Notification, buffer)
	n := &channelNotifier{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return n, ch, func() { n.close() }
}

type callbackNotifier struct {
	name string
	fn   AlarmHandler
}

func (c *callbackNotifier) Notify(ctx context.Context, n Notification) error {
	if c.fn == nil {
		return fmt.Errorf("callback notifier %q: nil handler", c.name)
	}
	return c.fn(ctx, copyNotification(n))
}

func (c *callbackNotifier) Name() string { return c.name }

type channelNotifier struct {
	name   string
	ch     chan Notification
	closed chan struct{}
	once   sync.Once
	mu     sync.RWMutex
}

func (c *channelNotifier) Notify(ctx context.Context, n Notification) error {
	select {
	case <-c.closed:
		return ErrChannelNotifierClosed
	default:
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	select {
	case <-c.closed:
		return ErrChannelNotifierClosed
	case <-ctx.Done():
		return ctx.Err()
	case c.ch <- copyNotification(n):
		return nil
	}
}

func (c *channelNotifier) Name() string { return c.name }

func (c *channelNotifier) close() {
	c.once.Do(func() {
		close(c.closed)
		c.mu.Lock()
		close(c.ch)
		c.mu.Unlock()
	})
}

func copyNotification(n Notification) Notification {
	n.Recipients = append([]string(nil), n.Recipients...)
	n.Payload = append([]byte(nil), n.Payload...)
	return n
}
