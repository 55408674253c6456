package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

type stubPublisher struct {
	subject string
	data    []byte
	err     error
}

func (s *stubPublisher) Publish(subject string, data []byte) error {
	s.subject, s.data = subject, data
	return s.err
}

func testNotification() ports.Notification {
	return ports.Notification{
		AlarmID:    "alarm-1",
		Sender:     "qcflow@example.org",
		Recipients: []string{"ops@example.org", "radar@example.org"},
		Subject:    "NO REPLY: dBZ_bias monitoring alarm for Albis on day 19-10-2026",
		PayloadRef: "/var/alarms/dBZ_bias/alarm_20261019000000.txt",
		Payload:    []byte("Site: Albis\nLast value: 0.4\n"),
	}
}

func TestNATSNotifierPublishesEnvelope(t *testing.T) {
	pub := &stubPublisher{}
	n := newNATSNotifier(pub, "")
	n.now = func() time.Time { return time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC) }

	if err := n.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if pub.subject != DefaultSubject {
		t.Fatalf("expected subject %s, got %s", DefaultSubject, pub.subject)
	}

	var env Envelope
	if err := json.Unmarshal(pub.data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.AlarmID != "alarm-1" || len(env.Recipients) != 2 || !strings.Contains(env.Payload, "Last value: 0.4") {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestNATSNotifierWrapsPublishError(t *testing.T) {
	n := newNATSNotifier(&stubPublisher{err: errors.New("no responders")}, "alarms")

	err := n.Notify(context.Background(), testNotification())
	var nerr *domain.NotifyError
	if !errors.As(err, &nerr) || nerr.Transport != "nats" {
		t.Fatalf("expected nats NotifyError, got %v", err)
	}
}

func TestSMTPNotifierSendsMessage(t *testing.T) {
	var gotFrom string
	var gotTo []string
	var gotMsg []byte
	s := NewSMTPNotifier("relay:25")
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotFrom, gotTo, gotMsg = from, to, msg
		return nil
	}

	if err := s.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotFrom != "qcflow@example.org" || len(gotTo) != 2 {
		t.Fatalf("unexpected envelope from=%s to=%v", gotFrom, gotTo)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Subject: NO REPLY: dBZ_bias") || !strings.Contains(msg, "Site: Albis\r\n") {
		t.Fatalf("unexpected message:\n%s", msg)
	}
}

func TestSMTPNotifierFailure(t *testing.T) {
	s := NewSMTPNotifier("relay:25")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	var nerr *domain.NotifyError
	if err := s.Notify(context.Background(), testNotification()); !errors.As(err, &nerr) {
		t.Fatalf("expected NotifyError, got %v", err)
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(nil)
	if err := n.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("log notifier should never fail, got %v", err)
	}
}
