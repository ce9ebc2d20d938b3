package xroll

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 指标名称
const (
	MetricEntriesWritten = "xroll.entries.written"
	MetricEntriesDropped = "xroll.entries.dropped"
	MetricRollovers      = "xroll.rollovers"
	MetricErrors         = "xroll.errors"
)

// 指标属性
const (
	attrTrigger = "trigger"
	attrOp      = "op"
)

// 错误来源，作为 xroll.errors 的 op 属性
const (
	opWrite    = "write"
	opStat     = "stat"
	opClose    = "close"
	opRollover = "rollover"
)

// metrics 指标收集器，nil 时所有方法为空操作
type metrics struct {
	written   metric.Int64Counter
	dropped   metric.Int64Counter
	rollovers metric.Int64Counter
	errors    metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	if mp == nil {
		return nil, nil
	}

	meter := mp.Meter("xroll", metric.WithInstrumentationVersion("1.0.0"))

	written, err := meter.Int64Counter(MetricEntriesWritten,
		metric.WithDescription("写入文件的日志条数"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(MetricEntriesDropped,
		metric.WithDescription("因无可用文件被丢弃的日志条数"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	rollovers, err := meter.Int64Counter(MetricRollovers,
		metric.WithDescription("滚动次数"),
		metric.WithUnit("{rollover}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("内部 I/O 错误次数"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		written:   written,
		dropped:   dropped,
		rollovers: rollovers,
		errors:    errs,
	}, nil
}

func (m *metrics) recordWritten() {
	if m == nil {
		return
	}
	m.written.Add(context.Background(), 1)
}

func (m *metrics) recordDropped() {
	if m == nil {
		return
	}
	m.dropped.Add(context.Background(), 1)
}

func (m *metrics) recordRollover(trigger Trigger) {
	if m == nil {
		return
	}
	m.rollovers.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(attrTrigger, string(trigger))))
}

func (m *metrics) recordError(op string) {
	if m == nil {
		return
	}
	m.errors.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(attrOp, op)))
}
