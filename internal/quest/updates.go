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

package quest

// UserUpdate 处理器发出、订阅会话接收的广播消息。
// 恰有一个载荷字段非空；UserAddress 标记事件归属用户，供会话过滤。
type UserUpdate struct {
	UserAddress string            `json:"user_address"`
	State       *QuestStateUpdate `json:"quest_state_update,omitempty"`
	Started     *NewQuestStarted  `json:"new_quest_started,omitempty"`
	Completed   *QuestCompleted   `json:"quest_completed,omitempty"`
	Ignored     *EventIgnored     `json:"event_ignored,omitempty"`
}

// QuestStateUpdate 实例状态推进
type QuestStateUpdate struct {
	InstanceID string `json:"instance_id"`
	QuestID    string `json:"quest_id"`
	EventID    string `json:"event_id,omitempty"`
	State      *State `json:"state"`
}

// NewQuestStarted 新开的实例，附模板与初始状态供客户端直接渲染
type NewQuestStarted struct {
	Instance Instance `json:"instance"`
	Quest    *Quest   `json:"quest,omitempty"`
	State    *State   `json:"state,omitempty"`
}

// QuestCompleted 实例首次完成
type QuestCompleted struct {
	InstanceID string `json:"instance_id"`
	QuestID    string `json:"quest_id"`
	QuestName  string `json:"quest_name,omitempty"`
}

// EventIgnored 事件未推进任何实例
type EventIgnored struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason,omitempty"`
}
