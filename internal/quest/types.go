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

// Package quest 定义任务模板、实例、事件与派生状态的核心模型。
// 模板是步骤（Step）构成的有向无环图，玩家事件驱动状态演进；
// 状态永不落库，由事件日志重放得出。
package quest

import (
	"strings"
)

// Action 类型取值。新类型通过数据扩展，匹配逻辑对类型不敏感。
const (
	ActionLocation       = "LOCATION"
	ActionJump           = "JUMP"
	ActionEmote          = "EMOTE"
	ActionNPCInteraction = "NPC_INTERACTION"
	ActionCustom         = "CUSTOM"
)

// Quest 任务模板
type Quest struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	ImageURL       string     `json:"image_url,omitempty"`
	CreatorAddress string     `json:"creator_address"` // 小写十六进制
	Definition     Definition `json:"definition"`
	Active         bool       `json:"active"`
	CreatedAt      int64      `json:"created_at"` // unix 秒
}

// Definition 步骤与连接构成的模板定义
type Definition struct {
	Steps       []Step       `json:"steps"`
	Connections []Connection `json:"connections"`
}

// Connection 步骤间的有向边
type Connection struct {
	StepFrom string `json:"step_from"`
	StepTo   string `json:"step_to"`
}

// Step 图节点，其全部任务完成后步骤完成
type Step struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Tasks       []Task `json:"tasks"`
}

// Task 有序动作清单，清单清空即任务完成
type Task struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	ActionItems []Action `json:"action_items"`
}

// Action 类型加参数表的触发器
type Action struct {
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Event 用户提交的动作事件，入库后不可变
type Event struct {
	ID      string  `json:"id"`
	Address string  `json:"address"` // 小写
	Action  *Action `json:"action,omitempty"`
}

// Instance 某用户对某模板的一次进行中/已结束的执行
type Instance struct {
	ID             string `json:"id"`
	QuestID        string `json:"quest_id"`
	UserAddress    string `json:"user_address"`
	StartTimestamp int64  `json:"start_timestamp"` // unix 秒
}

// Reward 任务完成奖励：回调钩子加物品清单
type Reward struct {
	Hook  *RewardHook  `json:"hook,omitempty"`
	Items []RewardItem `json:"items,omitempty"`
}

// RewardHook 首次完成时回调的 Webhook。
// URL 与 body 值支持 {user_address} / {quest_id} 占位符。
type RewardHook struct {
	WebhookURL  string            `json:"webhook_url"`
	RequestBody map[string]string `json:"request_body,omitempty"`
}

// RewardItem 奖励物品
type RewardItem struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// NormalizeAddress 地址统一小写
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// StepByID 按 id 取步骤，找不到返回 nil
func (d *Definition) StepByID(id string) *Step {
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return &d.Steps[i]
		}
	}
	return nil
}
