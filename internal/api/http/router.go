// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"quest-platform/internal/api/http/middleware"
)

// Options 路由配置
type Options struct {
	// MetricsToken /metrics 的 bearer_token，空则端点关闭
	MetricsToken string
	// EventRPS 事件入口每地址限流（每秒），零值取 20
	EventRPS float64
	// EventBurst 事件入口突发额度，零值取 EventRPS 的两倍
	EventBurst int
}

// Router HTTP 路由器：注册任务路由并挂载认证与限流中间件
type Router struct {
	handler *Handler
	auth    *middleware.SignedFetch
	opts    Options
}

// NewRouter 创建路由器。auth 传 nil 时跳过签名校验，仅供本地联调，
// 此时受保护接口以空调用方身份执行。
func NewRouter(handler *Handler, auth *middleware.SignedFetch, opts Options) *Router {
	if opts.EventRPS <= 0 {
		opts.EventRPS = 20
	}
	if opts.EventBurst <= 0 {
		opts.EventBurst = int(opts.EventRPS * 2)
		if opts.EventBurst < 1 {
			opts.EventBurst = 1
		}
	}
	return &Router{handler: handler, auth: auth, opts: opts}
}

// Build 构建 Hertz 服务并注册全部路由，opts 可附加链路追踪等服务器选项
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	opts = append([]config.Option{server.WithHostPorts(addr)}, opts...)
	h := server.Default(opts...)
	r.Register(h)
	return h
}

// Register 在给定 Hertz 实例上注册路由（测试直接用 :0 实例）
func (r *Router) Register(h *server.Hertz) {
	h.Use(middleware.AccessLog())

	h.GET("/health/live", r.handler.HealthCheck)
	h.GET("/metrics", middleware.MetricsGuard(r.opts.MetricsToken), r.handler.Metrics)

	var authed app.HandlerFunc = func(ctx context.Context, c *app.RequestContext) { c.Next(ctx) }
	if r.auth != nil {
		authed = r.auth.Verify()
	}
	// PUT /events 与实例事件入口共享同一组按地址令牌桶
	eventLimit := middleware.RateLimit(r.opts.EventRPS, r.opts.EventBurst)

	h.PUT("/events", authed, eventLimit, r.handler.PutEvent)

	api := h.Group("/api", authed)
	api.GET("/quests", r.handler.ListQuests)
	api.POST("/quests", r.handler.CreateQuest)
	api.GET("/quests/:id", r.handler.GetQuest)
	api.PUT("/quests/:id", r.handler.UpdateQuest)
	api.DELETE("/quests/:id", r.handler.DeactivateQuest)
	api.PUT("/quests/:id/activate", r.handler.ActivateQuest)
	api.GET("/quests/:id/stats", r.handler.GetQuestStats)
	api.GET("/quests/:id/reward", r.handler.GetQuestReward)
	api.GET("/quests/:id/instances", r.handler.ListQuestInstances)

	api.GET("/instances/:id", r.handler.GetInstance)
	api.GET("/instances/:id/state", r.handler.GetInstanceState)
	api.POST("/instances/:id/events", eventLimit, r.handler.PostInstanceEvent)
	api.DELETE("/instances/:id/events/:event_id", r.handler.DeleteInstanceEvent)
	api.PATCH("/instances/:id/reset", r.handler.ResetInstance)
}
