package worker

import (
	"context"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"quest-platform/internal/app"
	"quest-platform/internal/processor"
	"quest-platform/internal/rewards"
	"quest-platform/pkg/config"
	"quest-platform/pkg/tracing"
	"quest-platform/pkg/utils"
)

// App Worker 应用：独立进程消费事件队列，折叠实例状态并广播更新（分布式模式的数据面）。
// 无论 processor.enabled 如何配置都会启动消费，该开关只约束 API 进程。
type App struct {
	config    *app.Bootstrap
	processor *processor.Processor
	tracer    *sdktrace.TracerProvider
}

// NewApp 创建 Worker 应用（由 cmd/worker 调用）
func NewApp(ctx context.Context, bootstrap *app.Bootstrap) (*App, error) {
	cfg := bootstrap.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Database.Type == "memory" {
		bootstrap.Logger.Warn("内存模式下队列为进程内实现，Worker 消费不到 API 进程的事件")
	}

	a := &App{config: bootstrap}

	// 可选：启用链路追踪（Worker 不走 Hertz，直接装 SDK provider）
	if cfg.Monitoring.Tracing.Enable {
		endpoint := utils.CoalesceString(cfg.Monitoring.Tracing.ExportEndpoint, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
		if endpoint != "" {
			tp, err := tracing.InitTracer(ctx, tracing.Config{
				ServiceName:    utils.CoalesceString(cfg.Monitoring.Tracing.ServiceName, "quest-worker"),
				ExportEndpoint: endpoint,
				Insecure:       cfg.Monitoring.Tracing.Insecure,
			})
			if err != nil {
				bootstrap.Logger.Warn("链路追踪初始化失败", "error", err)
			} else {
				a.tracer = tp
				bootstrap.Logger.Info("链路追踪已启用", "endpoint", endpoint)
			}
		}
	}

	dispatcher := rewards.NewDispatcher(bootstrap.Store, cfg.Rewards, bootstrap.RewardToken(ctx), bootstrap.Logger.With("component", "rewards"))
	if s := bootstrap.RewardSigner(ctx); s != nil {
		dispatcher.SetSigner(s)
	}
	a.processor = processor.NewProcessor(bootstrap.Store, bootstrap.Queue, bootstrap.Bus, bootstrap.Codec, bootstrap.Logger.With("component", "processor"), processor.Options{
		Workers:      cfg.Processor.Workers,
		ShardBuffer:  cfg.Processor.ShardBuffer,
		RequeueDelay: utils.Duration(cfg.Processor.RequeueDelay, 0),
		Rewards:      dispatcher,
	})

	return a, nil
}

// Start 启动队列消费（非阻塞）
func (a *App) Start() error {
	a.config.Logger.Info("启动 worker 应用")
	a.processor.Start(context.Background())
	a.config.Logger.Info("worker 应用启动成功")
	return nil
}

// Shutdown 停止出队并等待在途事件落库后返回
func (a *App) Shutdown(ctx context.Context) error {
	a.config.Logger.Info("关闭 worker 应用")
	a.processor.Stop()
	if a.tracer != nil {
		_ = a.tracer.Shutdown(ctx)
	}
	a.config.Logger.Info("worker 应用关闭成功")
	return nil
}
