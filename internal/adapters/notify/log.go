// Package notify delivers raised alarms over NATS, SMTP or the log.
package notify

import (
	"context"

	"github.com/ghalamif/QCFlow/internal/ports"
)

// LogNotifier only logs the alarm. It is the default transport.
type LogNotifier struct {
	obs ports.Observability
}

func NewLogNotifier(obs ports.Observability) *LogNotifier {
	if obs == nil {
		obs = ports.NopObservability{}
	}
	return &LogNotifier{obs: obs}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Notify(_ context.Context, n ports.Notification) error {
	l.obs.LogWarn("alarm_notification",
		ports.Field{Key: "alarm_id", Value: n.AlarmID},
		ports.Field{Key: "subject", Value: n.Subject},
		ports.Field{Key: "sender", Value: n.Sender},
		ports.Field{Key: "recipients", Value: n.Recipients},
		ports.Field{Key: "payload_ref", Value: n.PayloadRef})
	return nil
}

var _ ports.Notifier = (*LogNotifier)(nil)
