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
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"quest-platform/internal/quest"
)

// eventRequest 事件请求体。address 为空时落到调用方自身。
type eventRequest struct {
	Address string        `json:"address,omitempty"`
	Action  *quest.Action `json:"action"`
}

// GetInstance 查询实例（含模板与回放状态），实例归属者或模板创建者可见
// GET /api/instances/:id
func (h *Handler) GetInstance(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.GetInstance(ctx, c.Param("id"), caller(ctx))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, view)
}

// GetInstanceState 只取实例当前状态
// GET /api/instances/:id/state
func (h *Handler) GetInstanceState(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.GetInstance(ctx, c.Param("id"), caller(ctx))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, view.State)
}

// PostInstanceEvent 创建者代实例归属者入队事件
// POST /api/instances/:id/events
func (h *Handler) PostInstanceEvent(ctx context.Context, c *app.RequestContext) {
	var req eventRequest
	if err := c.BindJSON(&req); err != nil || req.Action == nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	eventID, err := h.svc.SendEventForInstance(ctx, c.Param("id"), caller(ctx), req.Action)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusAccepted, map[string]string{"event_id": eventID})
}

// DeleteInstanceEvent 删除实例的一条事件并清除完成标记，状态由回放重新推导
// DELETE /api/instances/:id/events/:event_id
func (h *Handler) DeleteInstanceEvent(ctx context.Context, c *app.RequestContext) {
	err := h.svc.RemoveInstanceEvent(ctx, c.Param("id"), c.Param("event_id"), caller(ctx))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, map[string]string{"status": "removed"})
}

// ResetInstance 清空实例事件与完成标记，返回重置后的视图
// PATCH /api/instances/:id/reset
func (h *Handler) ResetInstance(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.ResetInstance(ctx, c.Param("id"), caller(ctx))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, view)
}

// PutEvent 可信生产方的事件入口；body 未带 address 时记到调用方名下
// PUT /events
func (h *Handler) PutEvent(ctx context.Context, c *app.RequestContext) {
	var req eventRequest
	if err := c.BindJSON(&req); err != nil || req.Action == nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	address := req.Address
	if address == "" {
		address = caller(ctx)
	}
	eventID, err := h.svc.SendEvent(ctx, address, req.Action)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusAccepted, map[string]string{"event_id": eventID})
}
