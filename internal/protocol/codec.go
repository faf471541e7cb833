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

// Package protocol 定义平台的线上协议：quests.proto 的领域消息与
// transport.proto 的 WS 信封，以及领域类型与 pb 之间的转换。
// pb 子包手写维护，与 proto 文件保持同一套字段编号。
package protocol

import (
	"fmt"

	"quest-platform/internal/protocol/pb"
	"quest-platform/internal/quest"
)

// Codec protobuf 编解码器。事件队列、更新总线与模板定义字段
// 使用同一套编码。
type Codec struct{}

func (Codec) EncodeEvent(ev *quest.Event) ([]byte, error) {
	return EventToPB(ev).Marshal()
}

func (Codec) DecodeEvent(data []byte) (*quest.Event, error) {
	var msg pb.Event
	if err := msg.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return EventFromPB(&msg), nil
}

func (Codec) EncodeDefinition(d *quest.Definition) ([]byte, error) {
	return DefinitionToPB(d).Marshal()
}

func (Codec) DecodeDefinition(data []byte) (*quest.Definition, error) {
	var msg pb.QuestDefinition
	if err := msg.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decode quest definition: %w", err)
	}
	return DefinitionFromPB(&msg), nil
}

func (Codec) EncodeUserUpdate(u *quest.UserUpdate) ([]byte, error) {
	return UserUpdateToPB(u).Marshal()
}

func (Codec) DecodeUserUpdate(data []byte) (*quest.UserUpdate, error) {
	var msg pb.UserUpdate
	if err := msg.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decode user update: %w", err)
	}
	return UserUpdateFromPB(&msg), nil
}

// ---- 领域类型 <-> pb ----

func ActionToPB(a *quest.Action) *pb.Action {
	if a == nil {
		return nil
	}
	return &pb.Action{Type: a.Type, Parameters: a.Parameters}
}

func ActionFromPB(a *pb.Action) *quest.Action {
	if a == nil {
		return nil
	}
	return &quest.Action{Type: a.GetType(), Parameters: a.GetParameters()}
}

func EventToPB(ev *quest.Event) *pb.Event {
	return &pb.Event{
		Id:      ev.ID,
		Address: ev.Address,
		Action:  ActionToPB(ev.Action),
	}
}

func EventFromPB(ev *pb.Event) *quest.Event {
	return &quest.Event{
		ID:      ev.GetId(),
		Address: quest.NormalizeAddress(ev.GetAddress()),
		Action:  ActionFromPB(ev.GetAction()),
	}
}

func tasksToPB(tasks []quest.Task) []*pb.Task {
	out := make([]*pb.Task, len(tasks))
	for i, task := range tasks {
		actions := make([]*pb.Action, len(task.ActionItems))
		for j := range task.ActionItems {
			actions[j] = ActionToPB(&task.ActionItems[j])
		}
		out[i] = &pb.Task{Id: task.ID, Description: task.Description, ActionItems: actions}
	}
	return out
}

func tasksFromPB(tasks []*pb.Task) []quest.Task {
	out := make([]quest.Task, len(tasks))
	for i, task := range tasks {
		actions := make([]quest.Action, len(task.GetActionItems()))
		for j, a := range task.GetActionItems() {
			actions[j] = *ActionFromPB(a)
		}
		out[i] = quest.Task{ID: task.GetId(), Description: task.GetDescription(), ActionItems: actions}
	}
	return out
}

func DefinitionToPB(d *quest.Definition) *pb.QuestDefinition {
	if d == nil {
		return nil
	}
	steps := make([]*pb.Step, len(d.Steps))
	for i, step := range d.Steps {
		steps[i] = &pb.Step{Id: step.ID, Description: step.Description, Tasks: tasksToPB(step.Tasks)}
	}
	conns := make([]*pb.Connection, len(d.Connections))
	for i, c := range d.Connections {
		conns[i] = &pb.Connection{StepFrom: c.StepFrom, StepTo: c.StepTo}
	}
	return &pb.QuestDefinition{Steps: steps, Connections: conns}
}

func DefinitionFromPB(d *pb.QuestDefinition) *quest.Definition {
	if d == nil {
		return nil
	}
	steps := make([]quest.Step, len(d.GetSteps()))
	for i, step := range d.GetSteps() {
		steps[i] = quest.Step{ID: step.GetId(), Description: step.GetDescription(), Tasks: tasksFromPB(step.GetTasks())}
	}
	conns := make([]quest.Connection, len(d.GetConnections()))
	for i, c := range d.GetConnections() {
		conns[i] = quest.Connection{StepFrom: c.GetStepFrom(), StepTo: c.GetStepTo()}
	}
	return &quest.Definition{Steps: steps, Connections: conns}
}

func QuestToPB(q *quest.Quest) *pb.Quest {
	if q == nil {
		return nil
	}
	return &pb.Quest{
		Id:             q.ID,
		Name:           q.Name,
		Description:    q.Description,
		ImageUrl:       q.ImageURL,
		Definition:     DefinitionToPB(&q.Definition),
		CreatorAddress: q.CreatorAddress,
		Active:         q.Active,
		CreatedAt:      q.CreatedAt,
	}
}

func QuestFromPB(q *pb.Quest) *quest.Quest {
	if q == nil {
		return nil
	}
	out := &quest.Quest{
		ID:             q.GetId(),
		Name:           q.GetName(),
		Description:    q.GetDescription(),
		ImageURL:       q.GetImageUrl(),
		CreatorAddress: quest.NormalizeAddress(q.GetCreatorAddress()),
		Active:         q.GetActive(),
		CreatedAt:      q.GetCreatedAt(),
	}
	if def := DefinitionFromPB(q.GetDefinition()); def != nil {
		out.Definition = *def
	}
	return out
}

// StateToPB 进度视图编码。pb map 不保序，解码所得状态仅供客户端渲染；
// 服务端推进一律从事件回放。
func StateToPB(s *quest.State) *pb.QuestState {
	if s == nil {
		return nil
	}
	current := make(map[string]*pb.StepContent, len(s.CurrentSteps))
	for id, content := range s.CurrentSteps {
		current[id] = &pb.StepContent{
			ToDos:          tasksToPB(content.ToDos),
			TasksCompleted: tasksToPB(content.TasksCompleted),
		}
	}
	return &pb.QuestState{
		CurrentSteps:   current,
		StepsLeft:      s.StepsLeft,
		RequiredSteps:  s.RequiredSteps,
		StepsCompleted: s.StepsCompleted,
	}
}

func StateFromPB(s *pb.QuestState) *quest.State {
	if s == nil {
		return nil
	}
	current := make(map[string]quest.StepContent, len(s.GetCurrentSteps()))
	for id, content := range s.GetCurrentSteps() {
		current[id] = quest.StepContent{
			ToDos:          tasksFromPB(content.GetToDos()),
			TasksCompleted: tasksFromPB(content.GetTasksCompleted()),
		}
	}
	return &quest.State{
		CurrentSteps:   current,
		StepsLeft:      s.GetStepsLeft(),
		RequiredSteps:  s.GetRequiredSteps(),
		StepsCompleted: s.GetStepsCompleted(),
	}
}

func InstanceToPB(inst *quest.Instance, q *quest.Quest, state *quest.State) *pb.QuestInstance {
	if inst == nil {
		return nil
	}
	return &pb.QuestInstance{
		Id:             inst.ID,
		QuestId:        inst.QuestID,
		UserAddress:    inst.UserAddress,
		State:          StateToPB(state),
		StartTimestamp: inst.StartTimestamp,
		Quest:          QuestToPB(q),
	}
}

func UserUpdateToPB(u *quest.UserUpdate) *pb.UserUpdate {
	out := &pb.UserUpdate{UserAddress: u.UserAddress}
	switch {
	case u.State != nil:
		out.Message = &pb.UserUpdate_QuestStateUpdate{QuestStateUpdate: &pb.QuestStateUpdate{
			QuestInstanceId: u.State.InstanceID,
			QuestId:         u.State.QuestID,
			EventId:         u.State.EventID,
			QuestState:      StateToPB(u.State.State),
		}}
	case u.Started != nil:
		out.Message = &pb.UserUpdate_NewQuestStarted{NewQuestStarted: &pb.NewQuestStarted{
			Instance: InstanceToPB(&u.Started.Instance, u.Started.Quest, u.Started.State),
		}}
	case u.Completed != nil:
		out.Message = &pb.UserUpdate_QuestCompleted{QuestCompleted: &pb.QuestCompleted{
			QuestInstanceId: u.Completed.InstanceID,
			QuestId:         u.Completed.QuestID,
			QuestName:       u.Completed.QuestName,
		}}
	case u.Ignored != nil:
		out.Message = &pb.UserUpdate_EventIgnored{EventIgnored: &pb.EventIgnored{
			EventId: u.Ignored.EventID,
			Reason:  u.Ignored.Reason,
		}}
	}
	return out
}

func UserUpdateFromPB(u *pb.UserUpdate) *quest.UserUpdate {
	out := &quest.UserUpdate{UserAddress: quest.NormalizeAddress(u.GetUserAddress())}
	switch msg := u.GetMessage().(type) {
	case *pb.UserUpdate_QuestStateUpdate:
		out.State = &quest.QuestStateUpdate{
			InstanceID: msg.QuestStateUpdate.GetQuestInstanceId(),
			QuestID:    msg.QuestStateUpdate.GetQuestId(),
			EventID:    msg.QuestStateUpdate.GetEventId(),
			State:      StateFromPB(msg.QuestStateUpdate.GetQuestState()),
		}
	case *pb.UserUpdate_NewQuestStarted:
		inst := msg.NewQuestStarted.GetInstance()
		started := &quest.NewQuestStarted{
			Quest: QuestFromPB(inst.GetQuest()),
			State: StateFromPB(inst.GetState()),
		}
		started.Instance = quest.Instance{
			ID:             inst.GetId(),
			QuestID:        inst.GetQuestId(),
			UserAddress:    quest.NormalizeAddress(inst.GetUserAddress()),
			StartTimestamp: inst.GetStartTimestamp(),
		}
		out.Started = started
	case *pb.UserUpdate_QuestCompleted:
		out.Completed = &quest.QuestCompleted{
			InstanceID: msg.QuestCompleted.GetQuestInstanceId(),
			QuestID:    msg.QuestCompleted.GetQuestId(),
			QuestName:  msg.QuestCompleted.GetQuestName(),
		}
	case *pb.UserUpdate_EventIgnored:
		out.Ignored = &quest.EventIgnored{
			EventID: msg.EventIgnored.GetEventId(),
			Reason:  msg.EventIgnored.GetReason(),
		}
	}
	return out
}
