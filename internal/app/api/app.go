package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"golang.org/x/time/rate"

	"quest-platform/internal/api/http"
	"quest-platform/internal/api/http/middleware"
	"quest-platform/internal/app"
	"quest-platform/internal/processor"
	"quest-platform/internal/rewards"
	"quest-platform/internal/ws"
	"quest-platform/pkg/config"
	"quest-platform/pkg/utils"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配 HTTP Router、WS Server 与可选的进程内 Processor）
type App struct {
	config       *app.Bootstrap
	svc          app.QuestService
	router       *http.Router
	hertz        *server.Hertz
	wsServer     *ws.Server
	processor    *processor.Processor
	otelProvider otelProviderShutdown
}

// NewApp 创建 API 应用（由 cmd/api 调用）
func NewApp(ctx context.Context, bootstrap *app.Bootstrap) (*App, error) {
	cfg := bootstrap.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	svc := app.NewQuestService(bootstrap.Store, bootstrap.Codec, bootstrap.Bus, bootstrap.Sender, bootstrap.Logger)
	handler := http.NewHandler(svc)

	var authMW *middleware.SignedFetch
	if cfg.Server.Middleware.Auth {
		authMW = middleware.NewSignedFetch()
	} else {
		bootstrap.Logger.Warn("签名链校验已关闭，仅限本地联调使用")
	}

	httpOpts := http.Options{MetricsToken: bootstrap.MetricsToken(ctx)}
	if cfg.Server.Middleware.RateLimit {
		httpOpts.EventRPS = float64(cfg.Server.Middleware.RateLimitRPS)
	} else {
		httpOpts.EventRPS = float64(rate.Inf)
		httpOpts.EventBurst = 1
	}
	router := http.NewRouter(handler, authMW, httpOpts)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	wsPort := cfg.Server.WSPort
	if wsPort <= 0 {
		wsPort = 3001
	}
	wsServer := ws.NewServer(svc, bootstrap.Bus, bootstrap.Logger.With("component", "ws"), ws.Options{
		Addr:         fmt.Sprintf("%s:%d", host, wsPort),
		AuthTimeout:  utils.Duration(cfg.Server.WS.AuthTimeout, 30*time.Second),
		PingInterval: utils.Duration(cfg.Server.WS.PingInterval, 30*time.Second),
		WriteTimeout: utils.Duration(cfg.Server.WS.WriteTimeout, 10*time.Second),
	})

	appObj := &App{
		config:   bootstrap,
		svc:      svc,
		router:   router,
		wsServer: wsServer,
	}

	// 单进程模式下 API 进程自带 Processor 消费队列；
	// processor.enabled=false 时由独立 Worker 进程消费（分布式模式）。
	if cfg.Processor.Enabled == nil || *cfg.Processor.Enabled {
		dispatcher := rewards.NewDispatcher(bootstrap.Store, cfg.Rewards, bootstrap.RewardToken(ctx), bootstrap.Logger.With("component", "rewards"))
		if s := bootstrap.RewardSigner(ctx); s != nil {
			dispatcher.SetSigner(s)
		}
		appObj.processor = processor.NewProcessor(bootstrap.Store, bootstrap.Queue, bootstrap.Bus, bootstrap.Codec, bootstrap.Logger.With("component", "processor"), processor.Options{
			Workers:      cfg.Processor.Workers,
			ShardBuffer:  cfg.Processor.ShardBuffer,
			RequeueDelay: utils.Duration(cfg.Processor.RequeueDelay, 0),
			Rewards:      dispatcher,
		})
	}
	return appObj, nil
}

// Run 启动 HTTP 与 WS 服务，addr 如 ":3000"；阻塞直至 HTTP 服务退出
func (a *App) Run(addr string) error {
	a.config.Logger.Info("API 服务启动", "addr", addr)

	// 使用 Hertz slog 扩展，与 bootstrap 配置对齐
	output := os.Stdout
	if a.config.Config != nil && a.config.Config.Log.File != "" {
		f, err := os.OpenFile(a.config.Config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		output = f
	}
	levelVar := &slog.LevelVar{}
	if a.config.Config != nil && a.config.Config.Log.Level != "" {
		switch a.config.Config.Log.Level {
		case "debug":
			levelVar.Set(slog.LevelDebug)
		case "warn":
			levelVar.Set(slog.LevelWarn)
		case "error":
			levelVar.Set(slog.LevelError)
		default:
			levelVar.Set(slog.LevelInfo)
		}
	} else {
		levelVar.Set(slog.LevelInfo)
	}
	hertzLogger := hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	)
	hlog.SetLogger(hertzLogger)

	// 可选：启用链路追踪（OpenTelemetry）
	if a.config.Config != nil && a.config.Config.Monitoring.Tracing.Enable {
		serviceName := a.config.Config.Monitoring.Tracing.ServiceName
		if serviceName == "" {
			serviceName = "quest-api"
		}
		exportEndpoint := a.config.Config.Monitoring.Tracing.ExportEndpoint
		if exportEndpoint == "" {
			exportEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		if exportEndpoint != "" {
			opts := []provider.Option{
				provider.WithServiceName(serviceName),
				provider.WithExportEndpoint(exportEndpoint),
			}
			if a.config.Config.Monitoring.Tracing.Insecure {
				opts = append(opts, provider.WithInsecure())
			}
			p := provider.NewOpenTelemetryProvider(opts...)
			a.otelProvider = p
			tracerOpt, cfg := hertztracing.NewServerTracer()
			a.hertz = a.router.Build(addr, tracerOpt)
			a.hertz.Use(hertztracing.ServerMiddleware(cfg))
			a.config.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint)
		} else {
			a.hertz = a.router.Build(addr)
		}
	} else {
		a.hertz = a.router.Build(addr)
	}

	if a.processor != nil {
		a.processor.Start(context.Background())
		a.config.Logger.Info("进程内事件处理器已启动")
	}
	go func() {
		if err := a.wsServer.Run(); err != nil {
			a.config.Logger.Error("WS 服务退出", "error", err)
		}
	}()
	return a.hertz.Run()
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）。
// 先停 Processor 保证已出队的事件落库，再关对外监听。
func (a *App) Shutdown(ctx context.Context) error {
	if a.processor != nil {
		a.processor.Stop()
	}
	if a.wsServer != nil {
		_ = a.wsServer.Shutdown(ctx)
	}
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
