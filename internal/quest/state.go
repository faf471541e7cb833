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

import (
	"strings"
)

// StepContent 单个进行中步骤的余量视图
type StepContent struct {
	ToDos          []Task `json:"to_dos"`
	TasksCompleted []Task `json:"tasks_completed"`
}

// State 实例进度的派生视图。每次 ApplyEvent 产出新值，旧值不被改写。
// currentOrder 记录 CurrentSteps 的插入顺序，保证重放确定性。
type State struct {
	CurrentSteps   map[string]StepContent `json:"current_steps"`
	StepsLeft      uint32                 `json:"steps_left"`
	RequiredSteps  []string               `json:"required_steps"`
	StepsCompleted []string               `json:"steps_completed"`

	currentOrder []string
}

// InitialState 由图构造初始状态：_START_ 的出邻居即起始步骤
func (g *Graph) InitialState() *State {
	s := &State{
		CurrentSteps:  make(map[string]StepContent),
		StepsLeft:     uint32(g.TotalSteps()),
		RequiredSteps: g.RequiredForEnd(),
	}
	for _, id := range g.Next(StartNode) {
		s.insertCurrent(id, StepContent{ToDos: g.Tasks(id)})
	}
	return s
}

// ApplyEvent 将单个事件应用到状态，返回新状态与是否发生推进。
// 无任何匹配时原样返回入参状态（changed=false）。
// 同一事件内每个任务至多消费一个匹配动作；本轮完成的步骤，其后继
// 从下一个事件起才参与匹配，不级联。
func (g *Graph) ApplyEvent(s *State, ev *Event) (*State, bool) {
	if ev == nil || ev.Action == nil {
		return s, false
	}
	out := s.clone()
	changed := false

	round := append([]string(nil), out.currentOrder...)
	for _, stepID := range round {
		content := out.CurrentSteps[stepID]
		todos := make([]Task, 0, len(content.ToDos))
		for _, t := range content.ToDos {
			idx := firstMatch(t.ActionItems, ev.Action)
			if idx < 0 {
				todos = append(todos, t)
				continue
			}
			changed = true
			remaining := make([]Action, 0, len(t.ActionItems)-1)
			remaining = append(remaining, t.ActionItems[:idx]...)
			remaining = append(remaining, t.ActionItems[idx+1:]...)
			t.ActionItems = remaining
			if len(t.ActionItems) == 0 {
				content.TasksCompleted = append(content.TasksCompleted, t)
			} else {
				todos = append(todos, t)
			}
		}
		content.ToDos = todos
		out.CurrentSteps[stepID] = content

		if len(content.ToDos) == 0 {
			out.removeCurrent(stepID)
			out.StepsLeft--
			out.StepsCompleted = append(out.StepsCompleted, stepID)
			for _, succ := range g.Next(stepID) {
				if succ == EndNode {
					continue
				}
				if _, active := out.CurrentSteps[succ]; active {
					continue
				}
				if containsStep(out.StepsCompleted, succ) {
					continue
				}
				out.insertCurrent(succ, StepContent{ToDos: g.Tasks(succ)})
			}
		}
	}

	if !changed {
		return s, false
	}
	return out, true
}

// Replay 从初始状态重放事件序列。纯函数：同一事件序列必得同一状态。
func (g *Graph) Replay(events []*Event) *State {
	s := g.InitialState()
	for _, ev := range events {
		s, _ = g.ApplyEvent(s, ev)
	}
	return s
}

// IsCompleted 完成判定：required_steps ⊆ steps_completed
func (s *State) IsCompleted() bool {
	for _, required := range s.RequiredSteps {
		if !containsStep(s.StepsCompleted, required) {
			return false
		}
	}
	return true
}

// CurrentStepIDs 按插入顺序返回进行中的步骤 id
func (s *State) CurrentStepIDs() []string {
	return append([]string(nil), s.currentOrder...)
}

func (s *State) insertCurrent(id string, content StepContent) {
	s.CurrentSteps[id] = content
	s.currentOrder = append(s.currentOrder, id)
}

func (s *State) removeCurrent(id string) {
	delete(s.CurrentSteps, id)
	for i, cur := range s.currentOrder {
		if cur == id {
			s.currentOrder = append(s.currentOrder[:i], s.currentOrder[i+1:]...)
			return
		}
	}
}

// clone 浅拷贝容器、写时复制任务切片：ApplyEvent 对动作清单只建新切片
func (s *State) clone() *State {
	out := &State{
		CurrentSteps:   make(map[string]StepContent, len(s.CurrentSteps)),
		StepsLeft:      s.StepsLeft,
		RequiredSteps:  append([]string(nil), s.RequiredSteps...),
		StepsCompleted: append([]string(nil), s.StepsCompleted...),
		currentOrder:   append([]string(nil), s.currentOrder...),
	}
	for id, content := range s.CurrentSteps {
		out.CurrentSteps[id] = StepContent{
			ToDos:          append([]Task(nil), content.ToDos...),
			TasksCompleted: append([]Task(nil), content.TasksCompleted...),
		}
	}
	return out
}

// firstMatch 返回首个与事件动作匹配的下标，无匹配返回 -1
func firstMatch(items []Action, a *Action) int {
	for i := range items {
		if ActionsMatch(&items[i], a) {
			return i
		}
	}
	return -1
}

// ActionsMatch 动作匹配：类型不分大小写；参数键集合一致、值不分大小写
func ActionsMatch(a, b *Action) bool {
	if a == nil || b == nil {
		return false
	}
	if !strings.EqualFold(a.Type, b.Type) {
		return false
	}
	if len(a.Parameters) != len(b.Parameters) {
		return false
	}
	normalized := make(map[string]string, len(a.Parameters))
	for k, v := range a.Parameters {
		normalized[strings.ToLower(k)] = strings.ToLower(v)
	}
	for k, v := range b.Parameters {
		want, ok := normalized[strings.ToLower(k)]
		if !ok || want != strings.ToLower(v) {
			return false
		}
	}
	return true
}

func containsStep(steps []string, id string) bool {
	for _, s := range steps {
		if s == id {
			return true
		}
	}
	return false
}
