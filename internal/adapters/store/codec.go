package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ghalamif/QCFlow/internal/domain"
)

const (
	columnHeader = "date,np,central_quantile,low_quantile,high_quantile"
	maskedValue  = "--"
	fieldCount   = 5
)

var (
	errFieldCount = errors.New("wrong field count")
	errTimestamp  = errors.New("unparsable timestamp")
)

func fileHeader(key string) string {
	var b strings.Builder
	b.WriteString("# Monitoring time series data file\n")
	b.WriteString("# Comment lines are preceded by '#'\n")
	fmt.Fprintf(&b, "# Metric: %s\n", key)
	b.WriteString("# Quantiles: central, low, high. Masked values are written as " + maskedValue + "\n")
	b.WriteString(columnHeader + "\n")
	return b.String()
}

// encodeLine renders a point as one delimited record without the newline.
// Floats use the shortest representation that parses back to the same value.
func encodeLine(p domain.SummaryPoint) string {
	return strings.Join([]string{
		p.Timestamp.UTC().Format(time.RFC3339Nano),
		strconv.FormatInt(p.SampleCount, 10),
		encodeOpt(p.Central),
		encodeOpt(p.Low),
		encodeOpt(p.High),
	}, ",")
}

func decodeLine(line string) (domain.SummaryPoint, error) {
	fields := strings.Split(line, ",")
	if len(fields) != fieldCount {
		return domain.SummaryPoint{}, fmt.Errorf("%w: got %d, want %d", errFieldCount, len(fields), fieldCount)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	ts, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return domain.SummaryPoint{}, fmt.Errorf("%w: %v", errTimestamp, err)
	}
	np, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || np < 0 {
		return domain.SummaryPoint{}, fmt.Errorf("sample count %q", fields[1])
	}

	p := domain.SummaryPoint{Timestamp: ts.UTC(), SampleCount: np}
	if p.Central, err = decodeOpt(fields[2]); err != nil {
		return domain.SummaryPoint{}, err
	}
	if p.Low, err = decodeOpt(fields[3]); err != nil {
		return domain.SummaryPoint{}, err
	}
	if p.High, err = decodeOpt(fields[4]); err != nil {
		return domain.SummaryPoint{}, err
	}
	if np == 0 {
		p.Low, p.Central, p.High = nil, nil, nil
	}
	return p, nil
}

func encodeOpt(v *float64) string {
	if v == nil {
		return maskedValue
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func decodeOpt(s string) (*float64, error) {
	if s == maskedValue || s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("quantile %q", s)
	}
	return &v, nil
}

// FormatPoint renders p the way the file store persists it.
func FormatPoint(p domain.SummaryPoint) string {
	return encodeLine(p)
}
