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

// Package store 持久化任务模板、实例、事件与奖励。
// 模板定义以 protobuf 字节存取，编解码在上游完成；状态永不落库。
// 实例的 活跃/废弃/完成 以 abandoned_quests 与 completed_instances
// 两张集合表为准。
package store

import (
	"context"

	"quest-platform/internal/quest"
)

// Store 存储接口。查询未命中返回 pkg/errors.ErrNotFound 包装错误。
type Store interface {
	// CreateQuest 创建模板并返回 id；q.ID 为空时由存储分配
	CreateQuest(ctx context.Context, q *Quest) (string, error)
	// UpdateQuest 以新模板替换旧模板：建新、停旧、记录前驱链接，单事务完成
	UpdateQuest(ctx context.Context, prevID string, q *Quest, creator string) (string, error)
	// GetQuest 按 id 获取模板
	GetQuest(ctx context.Context, id string) (*Quest, error)
	// GetActiveQuests 活跃模板分页，按创建时间倒序
	GetActiveQuests(ctx context.Context, offset, limit int) ([]*Quest, error)
	// GetQuestsByCreator 按创建者分页（含停用）
	GetQuestsByCreator(ctx context.Context, creator string, offset, limit int) ([]*Quest, error)
	// IsActiveQuest 模板存在且未停用
	IsActiveQuest(ctx context.Context, id string) (bool, error)
	// IsUpdatable 模板尚无任何实例
	IsUpdatable(ctx context.Context, id string) (bool, error)
	// CanActivateQuest 模板已停用且没有更新版本指向它
	CanActivateQuest(ctx context.Context, id string) (bool, error)
	// ActivateQuest 移出停用集合
	ActivateQuest(ctx context.Context, id string) error
	// DeactivateQuest 移入停用集合（幂等）
	DeactivateQuest(ctx context.Context, id string) error
	// GetOldQuestVersions 返回本模板的直接前驱版本 id
	GetOldQuestVersions(ctx context.Context, id string) ([]string, error)

	// StartQuest 为用户开启实例并返回实例 id
	StartQuest(ctx context.Context, questID, userAddress string) (string, error)
	// AbandonQuestInstance 移入废弃集合
	AbandonQuestInstance(ctx context.Context, id string) error
	// CompleteQuestInstance 移入完成集合（幂等）
	CompleteQuestInstance(ctx context.Context, id string) error
	// IsCompletedInstance 实例在完成集合中
	IsCompletedInstance(ctx context.Context, id string) (bool, error)
	// IsActiveQuestInstance 实例既未废弃也未完成
	IsActiveQuestInstance(ctx context.Context, id string) (bool, error)
	// GetQuestInstance 按 id 获取实例
	GetQuestInstance(ctx context.Context, id string) (*quest.Instance, error)
	// GetActiveUserQuestInstances 用户全部活跃实例
	GetActiveUserQuestInstances(ctx context.Context, userAddress string) ([]*quest.Instance, error)
	// GetActiveQuestInstancesByQuestID 模板的活跃实例分页
	GetActiveQuestInstancesByQuestID(ctx context.Context, questID string, offset, limit int) ([]*quest.Instance, error)
	// CountActiveQuestInstancesByQuestID 模板的活跃实例数
	CountActiveQuestInstancesByQuestID(ctx context.Context, questID string) (int64, error)
	// RemoveInstanceFromCompletedInstances 重置用：移出完成集合
	RemoveInstanceFromCompletedInstances(ctx context.Context, id string) error

	// AddEvent 追加事件，(id, 实例) 冲突静默忽略（至少一次投递下的幂等；
	// 同一事件推进多个实例时每个实例各记一行）
	AddEvent(ctx context.Context, ev *Event) error
	// GetEvents 实例事件，按时间升序
	GetEvents(ctx context.Context, instanceID string) ([]*Event, error)
	// RemoveEvent 删除单个事件
	RemoveEvent(ctx context.Context, eventID string) error
	// RemoveEventsForInstance 重置用：删除实例全部事件
	RemoveEventsForInstance(ctx context.Context, instanceID string) error

	// AddRewardHookToQuest 设置完成回调
	AddRewardHookToQuest(ctx context.Context, questID string, hook *quest.RewardHook) error
	// GetQuestRewardHook 读取完成回调
	GetQuestRewardHook(ctx context.Context, questID string) (*quest.RewardHook, error)
	// AddRewardItemsToQuest 追加奖励物品
	AddRewardItemsToQuest(ctx context.Context, questID string, items []quest.RewardItem) error
	// GetQuestRewardItems 读取奖励物品
	GetQuestRewardItems(ctx context.Context, questID string) ([]quest.RewardItem, error)

	// IsQuestCreator 创建者判定，地址比较不区分大小写
	IsQuestCreator(ctx context.Context, questID, address string) (bool, error)
	// GetQuestStats 模板运营统计
	GetQuestStats(ctx context.Context, questID string) (*QuestStats, error)

	// Close 关闭底层连接
	Close()
}

// Quest 模板行记录。Definition 为 protobuf 编码；CreatedAt 为 unix 秒。
type Quest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url,omitempty"`
	CreatorAddress string `json:"creator_address"`
	Definition     []byte `json:"-"`
	Active         bool   `json:"active"`
	CreatedAt      int64  `json:"created_at"`
}

// Event 事件行记录。Payload 为 protobuf 编码；Timestamp 为 unix 秒。
type Event struct {
	ID          string `json:"id"`
	UserAddress string `json:"user_address"`
	Payload     []byte `json:"-"`
	InstanceID  string `json:"quest_instance_id"`
	Timestamp   int64  `json:"timestamp"`
}

// QuestStats 模板运营统计
type QuestStats struct {
	ActivePlayers  int64 `json:"active_players"`
	Abandoned      int64 `json:"abandoned"`
	Completed      int64 `json:"completed"`
	StartedLast24h int64 `json:"started_in_last_24_hours"`
}
