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

// Validate 校验模板结构。创建与更新入口都必须先通过此校验。
func (q *Quest) Validate() error {
	if q.Name == "" {
		return NewValidationError("name", "quest name is required")
	}
	return q.Definition.Validate()
}

// Validate 校验定义的图结构
func (d *Definition) Validate() error {
	if len(d.Steps) == 0 {
		return NewValidationError("steps", "quest must have at least one step")
	}
	if len(d.Connections) == 0 {
		return NewValidationError("connections", "quest must have at least one connection")
	}

	defined := make(map[string]bool, len(d.Steps))
	taskIDs := make(map[string]bool)
	for _, step := range d.Steps {
		if defined[step.ID] {
			return NewValidationError("steps", "duplicate step id %q", step.ID)
		}
		defined[step.ID] = true
		if len(step.Tasks) == 0 {
			return NewValidationError("steps", "step %q has no tasks", step.ID)
		}
		for _, task := range step.Tasks {
			if taskIDs[task.ID] {
				return NewValidationError("tasks", "duplicate task id %q", task.ID)
			}
			taskIDs[task.ID] = true
		}
	}

	connected := make(map[string]bool, len(d.Steps))
	hasIncoming := make(map[string]bool)
	hasOutgoing := make(map[string]bool)
	for _, c := range d.Connections {
		if !defined[c.StepFrom] {
			return NewValidationError("connections", "connection references undefined step %q", c.StepFrom)
		}
		if !defined[c.StepTo] {
			return NewValidationError("connections", "connection references undefined step %q", c.StepTo)
		}
		connected[c.StepFrom] = true
		connected[c.StepTo] = true
		hasOutgoing[c.StepFrom] = true
		hasIncoming[c.StepTo] = true
	}

	for _, step := range d.Steps {
		if !connected[step.ID] {
			return NewValidationError("steps", "step %q does not appear in any connection", step.ID)
		}
	}

	sources, sinks := 0, 0
	for _, step := range d.Steps {
		if !hasIncoming[step.ID] {
			sources++
		}
		if !hasOutgoing[step.ID] {
			sinks++
		}
	}
	if sources == 0 {
		return NewValidationError("connections", "definition has no starting step")
	}
	if sinks == 0 {
		return NewValidationError("connections", "definition has no ending step")
	}
	return nil
}
