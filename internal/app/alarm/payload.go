package alarm

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ghalamif/QCFlow/internal/domain"
)

// RenderPayload formats the human-readable alarm message.
func RenderPayload(rec domain.AlarmRecord) []byte {
	var b bytes.Buffer
	if rec.Site != "" {
		fmt.Fprintf(&b, "Site: %s\n", rec.Site)
	}
	fmt.Fprintf(&b, "Parameter: %s\n", rec.Metric)
	fmt.Fprintf(&b, "Date: %s\n", rec.Timestamp.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Reference value: %s +/- %s%s\n",
		num(rec.ReferenceValue), num(rec.AbsTolerance), exceeded(rec.AbsExceeded))
	fmt.Fprintf(&b, "Trend value (weighted average of the last %d events with at least %d points): ",
		rec.MinEventsForTrend, rec.MinPointsPerEvent)
	if rec.TrendValue != nil {
		fmt.Fprintf(&b, "%s +/- %s%s\n", num(*rec.TrendValue), num(rec.TrendTolerance), exceeded(rec.TrendExceeded))
	} else {
		fmt.Fprintf(&b, "undefined (tolerance %s)\n", num(rec.TrendTolerance))
	}
	fmt.Fprintf(&b, "Number of points used to compute trend: %d\n", rec.TrendSampleCount)
	fmt.Fprintf(&b, "Number of points of last event: %d\n", rec.ObservedSampleCount)
	fmt.Fprintf(&b, "Last value: %s\n", num(rec.ObservedValue))
	return b.Bytes()
}

// Subject is the notification subject line for rec.
func Subject(rec domain.AlarmRecord) string {
	where := ""
	if rec.Site != "" {
		where = " for " + rec.Site
	}
	return fmt.Sprintf("NO REPLY: %s monitoring alarm%s on day %s",
		rec.Metric, where, rec.Timestamp.UTC().Format("02-01-2006"))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func exceeded(b bool) string {
	if b {
		return " (exceeded)"
	}
	return ""
}
