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

// questView 模板响应体。definition 与 old_versions 仅创建者可见。
type questView struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	ImageURL       string            `json:"image_url,omitempty"`
	CreatorAddress string            `json:"creator_address"`
	Active         bool              `json:"active"`
	CreatedAt      int64             `json:"created_at"`
	Definition     *quest.Definition `json:"definition,omitempty"`
	OldVersions    []string          `json:"old_versions,omitempty"`
}

func newQuestView(q *quest.Quest, caller string) questView {
	v := questView{
		ID:             q.ID,
		Name:           q.Name,
		Description:    q.Description,
		ImageURL:       q.ImageURL,
		CreatorAddress: q.CreatorAddress,
		Active:         q.Active,
		CreatedAt:      q.CreatedAt,
	}
	if caller != "" && caller == q.CreatorAddress {
		v.Definition = &q.Definition
	}
	return v
}

// createQuestRequest 创建模板请求体，可选 reward 块一并挂上奖励
type createQuestRequest struct {
	quest.Quest
	Reward *quest.Reward `json:"reward,omitempty"`
}

// ListQuests 列出激活中的模板
// GET /api/quests?offset&limit
func (h *Handler) ListQuests(ctx context.Context, c *app.RequestContext) {
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 0)

	quests, err := h.svc.ListActiveQuests(ctx, offset, limit)
	if err != nil {
		writeError(ctx, c, err)
		return
	}

	addr := caller(ctx)
	views := make([]questView, 0, len(quests))
	for _, q := range quests {
		views = append(views, newQuestView(q, addr))
	}
	c.JSON(consts.StatusOK, map[string]interface{}{
		"quests": views,
	})
}

// GetQuest 查询单个模板，定义与历史版本仅创建者可见
// GET /api/quests/:id
func (h *Handler) GetQuest(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	q, err := h.svc.GetQuest(ctx, id)
	if err != nil {
		writeError(ctx, c, err)
		return
	}

	view := newQuestView(q, caller(ctx))
	if view.Definition != nil {
		versions, err := h.svc.GetOldQuestVersions(ctx, id)
		if err != nil {
			writeError(ctx, c, err)
			return
		}
		view.OldVersions = versions
	}
	c.JSON(consts.StatusOK, view)
}

// CreateQuest 创建模板，调用方即创建者
// POST /api/quests
func (h *Handler) CreateQuest(ctx context.Context, c *app.RequestContext) {
	var req createQuestRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	addr := caller(ctx)
	id, err := h.svc.CreateQuest(ctx, addr, &req.Quest)
	if err != nil {
		writeError(ctx, c, err)
		return
	}

	if req.Reward != nil {
		if req.Reward.Hook != nil {
			if err := h.svc.SetRewardHook(ctx, id, addr, req.Reward.Hook); err != nil {
				writeError(ctx, c, err)
				return
			}
		}
		if len(req.Reward.Items) > 0 {
			if err := h.svc.AddRewardItems(ctx, id, addr, req.Reward.Items); err != nil {
				writeError(ctx, c, err)
				return
			}
		}
	}
	c.JSON(consts.StatusCreated, map[string]string{"id": id})
}

// UpdateQuest 发布新版本并停用旧版本，返回新模板 id
// PUT /api/quests/:id
func (h *Handler) UpdateQuest(ctx context.Context, c *app.RequestContext) {
	var q quest.Quest
	if err := c.BindJSON(&q); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	newID, err := h.svc.UpdateQuest(ctx, c.Param("id"), caller(ctx), &q)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, map[string]string{"id": newID})
}

// DeactivateQuest 停用模板
// DELETE /api/quests/:id
func (h *Handler) DeactivateQuest(ctx context.Context, c *app.RequestContext) {
	if err := h.svc.DeactivateQuest(ctx, c.Param("id"), caller(ctx)); err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, map[string]string{"status": "deactivated"})
}

// ActivateQuest 重新激活模板
// PUT /api/quests/:id/activate
func (h *Handler) ActivateQuest(ctx context.Context, c *app.RequestContext) {
	if err := h.svc.ActivateQuest(ctx, c.Param("id"), caller(ctx)); err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, map[string]string{"status": "activated"})
}

// GetQuestStats 模板运营统计，仅创建者
// GET /api/quests/:id/stats
func (h *Handler) GetQuestStats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.svc.GetQuestStats(ctx, c.Param("id"), caller(ctx))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, stats)
}

// GetQuestReward 查询模板奖励；with_hook=true 且调用方为创建者时返回 Webhook
// GET /api/quests/:id/reward?with_hook=bool
func (h *Handler) GetQuestReward(ctx context.Context, c *app.RequestContext) {
	reward, err := h.svc.GetReward(ctx, c.Param("id"), caller(ctx))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	if c.Query("with_hook") != "true" {
		reward.Hook = nil
	}
	c.JSON(consts.StatusOK, reward)
}

// ListQuestInstances 列出模板的活跃实例，仅创建者
// GET /api/quests/:id/instances?offset&limit
func (h *Handler) ListQuestInstances(ctx context.Context, c *app.RequestContext) {
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 0)

	views, err := h.svc.ListQuestInstances(ctx, c.Param("id"), caller(ctx), offset, limit)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, map[string]interface{}{
		"instances": views,
	})
}
