package ports

import "context"

type Notification struct {
	AlarmID    string
	Sender     string
	Recipients []string
	Subject    string
	PayloadRef string
	Payload    []byte
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Name() string
}
