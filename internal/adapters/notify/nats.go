package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

const DefaultSubject = "qcflow.alarms"

// publisher is the part of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope is the JSON message published for every alarm.
type Envelope struct {
	AlarmID    string    `json:"alarm_id"`
	Sender     string    `json:"sender"`
	Recipients []string  `json:"recipients"`
	Subject    string    `json:"subject"`
	PayloadRef string    `json:"payload_ref,omitempty"`
	Payload    string    `json:"payload"`
	SentAt     time.Time `json:"sent_at"`
}

type NATSNotifier struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	now     func() time.Time
}

func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url, nats.Name("qcflow"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, err
	}
	n := newNATSNotifier(conn, subject)
	n.conn = conn
	return n, nil
}

func newNATSNotifier(pub publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{pub: pub, subject: subject, now: time.Now}
}

func (n *NATSNotifier) Name() string { return "nats" }

func (n *NATSNotifier) Notify(ctx context.Context, msg ports.Notification) error {
	data, err := json.Marshal(Envelope{
		AlarmID:    msg.AlarmID,
		Sender:     msg.Sender,
		Recipients: msg.Recipients,
		Subject:    msg.Subject,
		PayloadRef: msg.PayloadRef,
		Payload:    string(msg.Payload),
		SentAt:     n.now().UTC(),
	})
	if err != nil {
		return &domain.NotifyError{Transport: n.Name(), Err: err}
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return &domain.NotifyError{Transport: n.Name(), Err: err}
	}
	if n.conn != nil {
		if err := n.flush(ctx); err != nil {
			return &domain.NotifyError{Transport: n.Name(), Err: err}
		}
	}
	return nil
}

// flush waits for the server to ack the publish. FlushWithContext refuses a
// context without deadline.
func (n *NATSNotifier) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); ok {
		return n.conn.FlushWithContext(ctx)
	}
	return n.conn.FlushTimeout(5 * time.Second)
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Drain()
		n.conn.Close()
	}
}

var _ ports.Notifier = (*NATSNotifier)(nil)
