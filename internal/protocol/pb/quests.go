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

package pb

// quests.proto 的消息。字段编号见同名 proto 定义。

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Action 动作：类型 + 参数
type Action struct {
	Type       string
	Parameters map[string]string
}

func (x *Action) GetType() string {
	if x != nil {
		return x.Type
	}
	return ""
}

func (x *Action) GetParameters() map[string]string {
	if x != nil {
		return x.Parameters
	}
	return nil
}

func (x *Action) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Action) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.Type)
	return appendStringMap(b, 2, x.Parameters)
}

func (x *Action) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.Type = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			if entry := s.sub(); s.err == nil {
				k, v, err := consumeStringMapEntry(entry)
				if err != nil {
					return err
				}
				if x.Parameters == nil {
					x.Parameters = make(map[string]string)
				}
				x.Parameters[k] = v
			}
		default:
			s.skip()
		}
	}
	return s.err
}

// Event 事件：玩家地址 + 触发动作
type Event struct {
	Id      string
	Address string
	Action  *Action
}

func (x *Event) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Event) GetAddress() string {
	if x != nil {
		return x.Address
	}
	return ""
}

func (x *Event) GetAction() *Action {
	if x != nil {
		return x.Action
	}
	return nil
}

func (x *Event) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Event) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.Id)
	b = appendString(b, 2, x.Address)
	if x.Action != nil {
		b = appendMessage(b, 3, x.Action.appendTo(nil))
	}
	return b
}

func (x *Event) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.Id = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Address = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				a := new(Action)
				if err := a.Unmarshal(body); err != nil {
					return err
				}
				x.Action = a
			}
		default:
			s.skip()
		}
	}
	return s.err
}

type Task struct {
	Id          string
	Description string
	ActionItems []*Action
}

func (x *Task) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Task) GetDescription() string {
	if x != nil {
		return x.Description
	}
	return ""
}

func (x *Task) GetActionItems() []*Action {
	if x != nil {
		return x.ActionItems
	}
	return nil
}

func (x *Task) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Task) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.Id)
	b = appendString(b, 2, x.Description)
	for _, a := range x.ActionItems {
		b = appendMessage(b, 3, a.appendTo(nil))
	}
	return b
}

func (x *Task) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.Id = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Description = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				a := new(Action)
				if err := a.Unmarshal(body); err != nil {
					return err
				}
				x.ActionItems = append(x.ActionItems, a)
			}
		default:
			s.skip()
		}
	}
	return s.err
}

type Step struct {
	Id          string
	Description string
	Tasks       []*Task
}

func (x *Step) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Step) GetDescription() string {
	if x != nil {
		return x.Description
	}
	return ""
}

func (x *Step) GetTasks() []*Task {
	if x != nil {
		return x.Tasks
	}
	return nil
}

func (x *Step) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Step) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.Id)
	b = appendString(b, 2, x.Description)
	for _, t := range x.Tasks {
		b = appendMessage(b, 3, t.appendTo(nil))
	}
	return b
}

func (x *Step) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.Id = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Description = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				t := new(Task)
				if err := t.Unmarshal(body); err != nil {
					return err
				}
				x.Tasks = append(x.Tasks, t)
			}
		default:
			s.skip()
		}
	}
	return s.err
}

type Connection struct {
	StepFrom string
	StepTo   string
}

func (x *Connection) GetStepFrom() string {
	if x != nil {
		return x.StepFrom
	}
	return ""
}

func (x *Connection) GetStepTo() string {
	if x != nil {
		return x.StepTo
	}
	return ""
}

func (x *Connection) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Connection) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.StepFrom)
	return appendString(b, 2, x.StepTo)
}

func (x *Connection) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.StepFrom = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.StepTo = s.stringVal()
		default:
			s.skip()
		}
	}
	return s.err
}

// QuestDefinition 模板定义：步骤数组 + 有向连接
type QuestDefinition struct {
	Steps       []*Step
	Connections []*Connection
}

func (x *QuestDefinition) GetSteps() []*Step {
	if x != nil {
		return x.Steps
	}
	return nil
}

func (x *QuestDefinition) GetConnections() []*Connection {
	if x != nil {
		return x.Connections
	}
	return nil
}

func (x *QuestDefinition) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *QuestDefinition) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	for _, st := range x.Steps {
		b = appendMessage(b, 1, st.appendTo(nil))
	}
	for _, c := range x.Connections {
		b = appendMessage(b, 2, c.appendTo(nil))
	}
	return b
}

func (x *QuestDefinition) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				st := new(Step)
				if err := st.Unmarshal(body); err != nil {
					return err
				}
				x.Steps = append(x.Steps, st)
			}
		case s.num == 2 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				c := new(Connection)
				if err := c.Unmarshal(body); err != nil {
					return err
				}
				x.Connections = append(x.Connections, c)
			}
		default:
			s.skip()
		}
	}
	return s.err
}

type Quest struct {
	Id             string
	Name           string
	Description    string
	ImageUrl       string
	Definition     *QuestDefinition
	CreatorAddress string
	Active         bool
	CreatedAt      int64
}

func (x *Quest) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Quest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *Quest) GetDescription() string {
	if x != nil {
		return x.Description
	}
	return ""
}

func (x *Quest) GetImageUrl() string {
	if x != nil {
		return x.ImageUrl
	}
	return ""
}

func (x *Quest) GetDefinition() *QuestDefinition {
	if x != nil {
		return x.Definition
	}
	return nil
}

func (x *Quest) GetCreatorAddress() string {
	if x != nil {
		return x.CreatorAddress
	}
	return ""
}

func (x *Quest) GetActive() bool {
	if x != nil {
		return x.Active
	}
	return false
}

func (x *Quest) GetCreatedAt() int64 {
	if x != nil {
		return x.CreatedAt
	}
	return 0
}

func (x *Quest) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Quest) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.Id)
	b = appendString(b, 2, x.Name)
	b = appendString(b, 3, x.Description)
	b = appendString(b, 4, x.ImageUrl)
	if x.Definition != nil {
		b = appendMessage(b, 5, x.Definition.appendTo(nil))
	}
	b = appendString(b, 6, x.CreatorAddress)
	b = appendBool(b, 7, x.Active)
	return appendInt64(b, 8, x.CreatedAt)
}

func (x *Quest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.Id = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Name = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			x.Description = s.stringVal()
		case s.num == 4 && s.typ == protowire.BytesType:
			x.ImageUrl = s.stringVal()
		case s.num == 5 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				d := new(QuestDefinition)
				if err := d.Unmarshal(body); err != nil {
					return err
				}
				x.Definition = d
			}
		case s.num == 6 && s.typ == protowire.BytesType:
			x.CreatorAddress = s.stringVal()
		case s.num == 7 && s.typ == protowire.VarintType:
			x.Active = s.varint() != 0
		case s.num == 8 && s.typ == protowire.VarintType:
			x.CreatedAt = int64(s.varint())
		default:
			s.skip()
		}
	}
	return s.err
}

// StepContent 单个进行中步骤的余量
type StepContent struct {
	ToDos          []*Task
	TasksCompleted []*Task
}

func (x *StepContent) GetToDos() []*Task {
	if x != nil {
		return x.ToDos
	}
	return nil
}

func (x *StepContent) GetTasksCompleted() []*Task {
	if x != nil {
		return x.TasksCompleted
	}
	return nil
}

func (x *StepContent) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *StepContent) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	for _, t := range x.ToDos {
		b = appendMessage(b, 1, t.appendTo(nil))
	}
	for _, t := range x.TasksCompleted {
		b = appendMessage(b, 2, t.appendTo(nil))
	}
	return b
}

func (x *StepContent) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				t := new(Task)
				if err := t.Unmarshal(body); err != nil {
					return err
				}
				x.ToDos = append(x.ToDos, t)
			}
		case s.num == 2 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				t := new(Task)
				if err := t.Unmarshal(body); err != nil {
					return err
				}
				x.TasksCompleted = append(x.TasksCompleted, t)
			}
		default:
			s.skip()
		}
	}
	return s.err
}

// QuestState 实例进度，由事件回放派生
type QuestState struct {
	CurrentSteps   map[string]*StepContent
	StepsLeft      uint32
	RequiredSteps  []string
	StepsCompleted []string
}

func (x *QuestState) GetCurrentSteps() map[string]*StepContent {
	if x != nil {
		return x.CurrentSteps
	}
	return nil
}

func (x *QuestState) GetStepsLeft() uint32 {
	if x != nil {
		return x.StepsLeft
	}
	return 0
}

func (x *QuestState) GetRequiredSteps() []string {
	if x != nil {
		return x.RequiredSteps
	}
	return nil
}

func (x *QuestState) GetStepsCompleted() []string {
	if x != nil {
		return x.StepsCompleted
	}
	return nil
}

func (x *QuestState) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *QuestState) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	if len(x.CurrentSteps) > 0 {
		keys := make([]string, 0, len(x.CurrentSteps))
		for k := range x.CurrentSteps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var entry []byte
			entry = appendString(entry, 1, k)
			entry = appendMessage(entry, 2, x.CurrentSteps[k].appendTo(nil))
			b = appendMessage(b, 1, entry)
		}
	}
	b = appendUint32(b, 2, x.StepsLeft)
	b = appendStringList(b, 3, x.RequiredSteps)
	return appendStringList(b, 4, x.StepsCompleted)
}

func (x *QuestState) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			if entry := s.sub(); s.err == nil {
				key, val, err := consumeStepContentEntry(entry)
				if err != nil {
					return err
				}
				if x.CurrentSteps == nil {
					x.CurrentSteps = make(map[string]*StepContent)
				}
				x.CurrentSteps[key] = val
			}
		case s.num == 2 && s.typ == protowire.VarintType:
			x.StepsLeft = uint32(s.varint())
		case s.num == 3 && s.typ == protowire.BytesType:
			x.RequiredSteps = append(x.RequiredSteps, s.stringVal())
		case s.num == 4 && s.typ == protowire.BytesType:
			x.StepsCompleted = append(x.StepsCompleted, s.stringVal())
		default:
			s.skip()
		}
	}
	return s.err
}

// consumeStepContentEntry 解出一条 map<string, StepContent> 条目，
// 缺失的值按空消息处理
func consumeStepContentEntry(b []byte) (string, *StepContent, error) {
	var key string
	val := new(StepContent)
	s := scanner{buf: b}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			key = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				if err := val.Unmarshal(body); err != nil {
					return "", nil, err
				}
			}
		default:
			s.skip()
		}
	}
	return key, val, s.err
}

type QuestInstance struct {
	Id             string
	QuestId        string
	UserAddress    string
	State          *QuestState
	StartTimestamp int64
	Quest          *Quest
}

func (x *QuestInstance) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *QuestInstance) GetQuestId() string {
	if x != nil {
		return x.QuestId
	}
	return ""
}

func (x *QuestInstance) GetUserAddress() string {
	if x != nil {
		return x.UserAddress
	}
	return ""
}

func (x *QuestInstance) GetState() *QuestState {
	if x != nil {
		return x.State
	}
	return nil
}

func (x *QuestInstance) GetStartTimestamp() int64 {
	if x != nil {
		return x.StartTimestamp
	}
	return 0
}

func (x *QuestInstance) GetQuest() *Quest {
	if x != nil {
		return x.Quest
	}
	return nil
}

func (x *QuestInstance) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *QuestInstance) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.Id)
	b = appendString(b, 2, x.QuestId)
	b = appendString(b, 3, x.UserAddress)
	if x.State != nil {
		b = appendMessage(b, 4, x.State.appendTo(nil))
	}
	b = appendInt64(b, 5, x.StartTimestamp)
	if x.Quest != nil {
		b = appendMessage(b, 6, x.Quest.appendTo(nil))
	}
	return b
}

func (x *QuestInstance) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.Id = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.QuestId = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			x.UserAddress = s.stringVal()
		case s.num == 4 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				st := new(QuestState)
				if err := st.Unmarshal(body); err != nil {
					return err
				}
				x.State = st
			}
		case s.num == 5 && s.typ == protowire.VarintType:
			x.StartTimestamp = int64(s.varint())
		case s.num == 6 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				q := new(Quest)
				if err := q.Unmarshal(body); err != nil {
					return err
				}
				x.Quest = q
			}
		default:
			s.skip()
		}
	}
	return s.err
}

// ---- QuestsService 过程载荷 ----

type StartQuestRequest struct {
	QuestId string
}

func (x *StartQuestRequest) GetQuestId() string {
	if x != nil {
		return x.QuestId
	}
	return ""
}

func (x *StartQuestRequest) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *StartQuestRequest) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendString(b, 1, x.QuestId)
}

func (x *StartQuestRequest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.QuestId = s.stringVal()
			continue
		}
		s.skip()
	}
	return s.err
}

type StartQuestResponse struct {
	QuestInstanceId string
}

func (x *StartQuestResponse) GetQuestInstanceId() string {
	if x != nil {
		return x.QuestInstanceId
	}
	return ""
}

func (x *StartQuestResponse) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *StartQuestResponse) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendString(b, 1, x.QuestInstanceId)
}

func (x *StartQuestResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.QuestInstanceId = s.stringVal()
			continue
		}
		s.skip()
	}
	return s.err
}

type AbortQuestRequest struct {
	QuestInstanceId string
}

func (x *AbortQuestRequest) GetQuestInstanceId() string {
	if x != nil {
		return x.QuestInstanceId
	}
	return ""
}

func (x *AbortQuestRequest) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *AbortQuestRequest) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendString(b, 1, x.QuestInstanceId)
}

func (x *AbortQuestRequest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.QuestInstanceId = s.stringVal()
			continue
		}
		s.skip()
	}
	return s.err
}

type AbortQuestResponse struct{}

func (x *AbortQuestResponse) Marshal() ([]byte, error) { return nil, nil }

func (x *AbortQuestResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		s.skip()
	}
	return s.err
}

type EventRequest struct {
	Action *Action
}

func (x *EventRequest) GetAction() *Action {
	if x != nil {
		return x.Action
	}
	return nil
}

func (x *EventRequest) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *EventRequest) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	if x.Action != nil {
		b = appendMessage(b, 1, x.Action.appendTo(nil))
	}
	return b
}

func (x *EventRequest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			if body := s.sub(); s.err == nil {
				a := new(Action)
				if err := a.Unmarshal(body); err != nil {
					return err
				}
				x.Action = a
			}
			continue
		}
		s.skip()
	}
	return s.err
}

type EventResponse struct {
	EventId string
}

func (x *EventResponse) GetEventId() string {
	if x != nil {
		return x.EventId
	}
	return ""
}

func (x *EventResponse) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *EventResponse) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendString(b, 1, x.EventId)
}

func (x *EventResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.EventId = s.stringVal()
			continue
		}
		s.skip()
	}
	return s.err
}

type GetAllQuestsRequest struct{}

func (x *GetAllQuestsRequest) Marshal() ([]byte, error) { return nil, nil }

func (x *GetAllQuestsRequest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		s.skip()
	}
	return s.err
}

type GetAllQuestsResponse struct {
	Instances []*QuestInstance
}

func (x *GetAllQuestsResponse) GetInstances() []*QuestInstance {
	if x != nil {
		return x.Instances
	}
	return nil
}

func (x *GetAllQuestsResponse) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *GetAllQuestsResponse) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	for _, inst := range x.Instances {
		b = appendMessage(b, 1, inst.appendTo(nil))
	}
	return b
}

func (x *GetAllQuestsResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			if body := s.sub(); s.err == nil {
				inst := new(QuestInstance)
				if err := inst.Unmarshal(body); err != nil {
					return err
				}
				x.Instances = append(x.Instances, inst)
			}
			continue
		}
		s.skip()
	}
	return s.err
}

type GetQuestDefinitionRequest struct {
	QuestId string
}

func (x *GetQuestDefinitionRequest) GetQuestId() string {
	if x != nil {
		return x.QuestId
	}
	return ""
}

func (x *GetQuestDefinitionRequest) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *GetQuestDefinitionRequest) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendString(b, 1, x.QuestId)
}

func (x *GetQuestDefinitionRequest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.QuestId = s.stringVal()
			continue
		}
		s.skip()
	}
	return s.err
}

type GetQuestDefinitionResponse struct {
	Quest *Quest
}

func (x *GetQuestDefinitionResponse) GetQuest() *Quest {
	if x != nil {
		return x.Quest
	}
	return nil
}

func (x *GetQuestDefinitionResponse) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *GetQuestDefinitionResponse) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	if x.Quest != nil {
		b = appendMessage(b, 1, x.Quest.appendTo(nil))
	}
	return b
}

func (x *GetQuestDefinitionResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			if body := s.sub(); s.err == nil {
				q := new(Quest)
				if err := q.Unmarshal(body); err != nil {
					return err
				}
				x.Quest = q
			}
			continue
		}
		s.skip()
	}
	return s.err
}

type SubscribeRequest struct{}

func (x *SubscribeRequest) Marshal() ([]byte, error) { return nil, nil }

func (x *SubscribeRequest) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		s.skip()
	}
	return s.err
}

// ---- 订阅流更新 ----

type QuestStateUpdate struct {
	QuestInstanceId string
	QuestId         string
	EventId         string
	QuestState      *QuestState
}

func (x *QuestStateUpdate) GetQuestInstanceId() string {
	if x != nil {
		return x.QuestInstanceId
	}
	return ""
}

func (x *QuestStateUpdate) GetQuestId() string {
	if x != nil {
		return x.QuestId
	}
	return ""
}

func (x *QuestStateUpdate) GetEventId() string {
	if x != nil {
		return x.EventId
	}
	return ""
}

func (x *QuestStateUpdate) GetQuestState() *QuestState {
	if x != nil {
		return x.QuestState
	}
	return nil
}

func (x *QuestStateUpdate) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *QuestStateUpdate) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.QuestInstanceId)
	b = appendString(b, 2, x.QuestId)
	b = appendString(b, 3, x.EventId)
	if x.QuestState != nil {
		b = appendMessage(b, 4, x.QuestState.appendTo(nil))
	}
	return b
}

func (x *QuestStateUpdate) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.QuestInstanceId = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.QuestId = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			x.EventId = s.stringVal()
		case s.num == 4 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				st := new(QuestState)
				if err := st.Unmarshal(body); err != nil {
					return err
				}
				x.QuestState = st
			}
		default:
			s.skip()
		}
	}
	return s.err
}

type NewQuestStarted struct {
	Instance *QuestInstance
}

func (x *NewQuestStarted) GetInstance() *QuestInstance {
	if x != nil {
		return x.Instance
	}
	return nil
}

func (x *NewQuestStarted) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *NewQuestStarted) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	if x.Instance != nil {
		b = appendMessage(b, 1, x.Instance.appendTo(nil))
	}
	return b
}

func (x *NewQuestStarted) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			if body := s.sub(); s.err == nil {
				inst := new(QuestInstance)
				if err := inst.Unmarshal(body); err != nil {
					return err
				}
				x.Instance = inst
			}
			continue
		}
		s.skip()
	}
	return s.err
}

type QuestCompleted struct {
	QuestInstanceId string
	QuestId         string
	QuestName       string
}

func (x *QuestCompleted) GetQuestInstanceId() string {
	if x != nil {
		return x.QuestInstanceId
	}
	return ""
}

func (x *QuestCompleted) GetQuestId() string {
	if x != nil {
		return x.QuestId
	}
	return ""
}

func (x *QuestCompleted) GetQuestName() string {
	if x != nil {
		return x.QuestName
	}
	return ""
}

func (x *QuestCompleted) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *QuestCompleted) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.QuestInstanceId)
	b = appendString(b, 2, x.QuestId)
	return appendString(b, 3, x.QuestName)
}

func (x *QuestCompleted) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.QuestInstanceId = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.QuestId = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			x.QuestName = s.stringVal()
		default:
			s.skip()
		}
	}
	return s.err
}

type EventIgnored struct {
	EventId string
	Reason  string
}

func (x *EventIgnored) GetEventId() string {
	if x != nil {
		return x.EventId
	}
	return ""
}

func (x *EventIgnored) GetReason() string {
	if x != nil {
		return x.Reason
	}
	return ""
}

func (x *EventIgnored) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *EventIgnored) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.EventId)
	return appendString(b, 2, x.Reason)
}

func (x *EventIgnored) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.EventId = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Reason = s.stringVal()
		default:
			s.skip()
		}
	}
	return s.err
}

// UserUpdate 处理器广播给订阅会话的更新。oneof 载荷用
// isUserUpdate_Message 包装，后到的分支覆盖先到的。
type UserUpdate struct {
	UserAddress string
	Message     isUserUpdate_Message
}

type isUserUpdate_Message interface {
	isUserUpdate_Message()
}

type UserUpdate_QuestStateUpdate struct {
	QuestStateUpdate *QuestStateUpdate
}

type UserUpdate_NewQuestStarted struct {
	NewQuestStarted *NewQuestStarted
}

type UserUpdate_QuestCompleted struct {
	QuestCompleted *QuestCompleted
}

type UserUpdate_EventIgnored struct {
	EventIgnored *EventIgnored
}

func (*UserUpdate_QuestStateUpdate) isUserUpdate_Message() {}

func (*UserUpdate_NewQuestStarted) isUserUpdate_Message() {}

func (*UserUpdate_QuestCompleted) isUserUpdate_Message() {}

func (*UserUpdate_EventIgnored) isUserUpdate_Message() {}

func (x *UserUpdate) GetUserAddress() string {
	if x != nil {
		return x.UserAddress
	}
	return ""
}

func (x *UserUpdate) GetMessage() isUserUpdate_Message {
	if x != nil {
		return x.Message
	}
	return nil
}

func (x *UserUpdate) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *UserUpdate) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendString(b, 1, x.UserAddress)
	switch m := x.Message.(type) {
	case *UserUpdate_QuestStateUpdate:
		b = appendMessage(b, 2, m.QuestStateUpdate.appendTo(nil))
	case *UserUpdate_NewQuestStarted:
		b = appendMessage(b, 3, m.NewQuestStarted.appendTo(nil))
	case *UserUpdate_QuestCompleted:
		b = appendMessage(b, 4, m.QuestCompleted.appendTo(nil))
	case *UserUpdate_EventIgnored:
		b = appendMessage(b, 5, m.EventIgnored.appendTo(nil))
	}
	return b
}

func (x *UserUpdate) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			x.UserAddress = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(QuestStateUpdate)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &UserUpdate_QuestStateUpdate{QuestStateUpdate: m}
			}
		case s.num == 3 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(NewQuestStarted)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &UserUpdate_NewQuestStarted{NewQuestStarted: m}
			}
		case s.num == 4 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(QuestCompleted)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &UserUpdate_QuestCompleted{QuestCompleted: m}
			}
		case s.num == 5 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(EventIgnored)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &UserUpdate_EventIgnored{EventIgnored: m}
			}
		default:
			s.skip()
		}
	}
	return s.err
}
