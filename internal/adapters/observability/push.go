package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends everything in g to a Pushgateway. A CLI run exits before any
// scrape could happen, so the run's metrics are pushed once at the end.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if job == "" {
		job = "qcflow"
	}
	return push.New(url, job).Gatherer(g).PushContext(ctx)
}
