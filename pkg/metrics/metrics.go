package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供网关注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		EventTotal, EventDroppedTotal, ToolCallTotal,
		ActiveStreams, UpstreamStreamDuration,
	)
}

// EventTotal 透出给 UI 的归一化事件数（按 type/level）
var EventTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fastgpt_gateway_events_total",
		Help: "归一化后透出的事件数（按 type/level）",
	},
	[]string{"type", "level"},
)

// EventDroppedTotal 被静默的原始事件数
var EventDroppedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fastgpt_gateway_events_dropped_total",
		Help: "被静默丢弃的原始事件数",
	},
	[]string{"reason"}, // suppressed | decode
)

// ToolCallTotal 工具调用完成数（按结果）
var ToolCallTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fastgpt_gateway_tool_calls_total",
		Help: "工具调用完成数",
	},
	[]string{"status"}, // success | error
)

// ActiveStreams 当前打开的下行流数
var ActiveStreams = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "fastgpt_gateway_active_streams",
		Help: "当前打开的下行 SSE 流数",
	},
)

// UpstreamStreamDuration 上游流持续时间（秒）
var UpstreamStreamDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "fastgpt_gateway_upstream_stream_duration_seconds",
		Help:    "上游 SSE 流从打开到结束的耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
