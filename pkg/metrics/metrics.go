package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API/Worker 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		EventDuration, EventTotal, EventQueueDepth,
		UpdateTotal, RewardTotal,
		WSSessions, WSSubscriptions,
	)
}

// EventDuration 单事件处理耗时（秒），从出队到状态落地
var EventDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "quests_event_duration_seconds",
		Help:    "单事件处理耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
)

// EventTotal 事件处理总数（按结果）
var EventTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quests_event_total",
		Help: "事件处理总数（按结果）",
	},
	[]string{"result"}, // applied | ignored | requeued | skipped | invalid
)

// EventQueueDepth 入队后 Redis 队列长度（最近一次观测）
var EventQueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "quests_event_queue_depth",
		Help: "事件队列当前长度",
	},
)

// UpdateTotal 发布到更新频道的消息数（按类型）
var UpdateTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quests_update_total",
		Help: "发布的用户更新总数（按类型）",
	},
	[]string{"type"}, // state | started | completed | ignored
)

// RewardTotal 奖励 Webhook 投递总数（按结果）
var RewardTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quests_reward_total",
		Help: "奖励 Webhook 投递总数（按结果）",
	},
	[]string{"result"}, // ok | rejected | error
)

// WSSessions 当前已认证的 WebSocket 会话数
var WSSessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "quests_ws_sessions",
		Help: "当前已认证 WebSocket 会话数",
	},
)

// WSSubscriptions 当前活跃的更新订阅数
var WSSubscriptions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "quests_ws_subscriptions",
		Help: "当前活跃更新订阅数",
	},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
