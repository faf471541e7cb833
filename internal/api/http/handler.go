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

// Package http 任务平台的 HTTP 面：模板管理、实例管理、事件入口与运维端点。
// 处理器只做绑定、鉴权上下文读取与错误映射，业务规则在 app.QuestService。
package http

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	appcore "quest-platform/internal/app"
	"quest-platform/internal/quest"
	"quest-platform/pkg/auth"
	pkgerrors "quest-platform/pkg/errors"
	"quest-platform/pkg/metrics"
)

// Handler 任务 HTTP 处理器
type Handler struct {
	svc appcore.QuestService
}

// NewHandler 创建任务 HTTP 处理器
func NewHandler(svc appcore.QuestService) *Handler {
	return &Handler{svc: svc}
}

// HealthCheck 存活探针
func (h *Handler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Metrics 以 Prometheus 文本格式导出指标
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		hlog.CtxErrorf(ctx, "gather metrics: %v", err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	c.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// caller 返回认证中间件注入的调用方地址
func caller(ctx context.Context) string {
	return auth.GetAddress(ctx)
}

// writeError 把领域错误映射为 HTTP 状态码。
// 未识别的错误一律 500 且不透出细节。
func writeError(ctx context.Context, c *app.RequestContext, err error) {
	switch {
	case quest.IsValidationError(err),
		errors.Is(err, quest.ErrNotUUID):
		c.JSON(consts.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, quest.ErrNotQuestCreator),
		errors.Is(err, quest.ErrNotInstanceOwner):
		c.JSON(consts.StatusForbidden, map[string]string{"error": err.Error()})
	case pkgerrors.IsNotFound(err),
		errors.Is(err, quest.ErrQuestHasNoReward):
		c.JSON(consts.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, quest.ErrQuestAlreadyStarted),
		errors.Is(err, quest.ErrQuestNotActivable),
		errors.Is(err, quest.ErrQuestNotUpdatable),
		errors.Is(err, quest.ErrQuestDeactivated):
		c.JSON(consts.StatusConflict, map[string]string{"error": err.Error()})
	default:
		hlog.CtxErrorf(ctx, "request failed: %v", err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// queryInt 读取整型查询参数，缺失或非法时取默认值
func queryInt(c *app.RequestContext, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
