package qcflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewCallbackNotifier(t *testing.T) {
	var received []Notification
	n := NewCallbackNotifier("cb", func(_ context.Context, msg Notification) error {
		received = append(received, msg)
		return nil
	})

	input := Notification{AlarmID: "alarm-1", Recipients: []string{"ops@example.org"}, Payload: []byte("x")}
	if err := n.Notify(context.Background(), input); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if len(received) != 1 || received[0].AlarmID != "alarm-1" {
		t.Fatalf("unexpected notifications %+v", received)
	}

	input.Recipients[0] = "changed"
	if received[0].Recipients[0] != "ops@example.org" {
		t.Fatalf("expected recipients to be copied")
	}
	if n.Name() != "cb" {
		t.Fatalf("expected name cb, got %s", n.Name())
	}
}

func TestNewCallbackNotifierNilHandler(t *testing.T) {
	n := NewCallbackNotifier("", nil)
	if err := n.Notify(context.Background(), Notification{}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
	if n.Name() != "callback" {
		t.Fatalf("expected default name, got %s", n.Name())
	}
}

func TestNewChannelNotifier(t *testing.T) {
	n, ch, closeFn := NewChannelNotifier("chan", 0)
	defer closeFn()

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Notify(context.Background(), Notification{AlarmID: "alarm-2"})
	}()

	var got Notification
	select {
	case got = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if got.AlarmID != "alarm-2" {
		t.Fatalf("unexpected notification %+v", got)
	}

	closeFn()
	if err := n.Notify(context.Background(), Notification{}); !errors.Is(err, ErrChannelNotifierClosed) {
		t.Fatalf("expected ErrChannelNotifierClosed, got %v", err)
	}
}

func TestChannelNotifierHonoursContext(t *testing.T) {
	n, _, closeFn := NewChannelNotifier("chan", 0)
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := n.Notify(ctx, Notification{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
