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

// 图的哨兵节点：_START_ 指向全部源步骤，全部汇步骤指向 _END_
const (
	StartNode = "_START_"
	EndNode   = "_END_"
)

// Graph 模板展开后的有向无环图。
// 节点存放在平铺数组中，邻接表按下标引用，避免自引用指针；
// 步骤任务表在构图时预先展开，事件处理不再回读定义。
type Graph struct {
	nodes []string
	index map[string]int
	next  [][]int
	prev  [][]int
	tasks map[string][]Task
	total int
}

// NewGraph 由已通过校验的定义构图
func NewGraph(d *Definition) *Graph {
	g := &Graph{
		index: make(map[string]int, len(d.Steps)+2),
		tasks: make(map[string][]Task, len(d.Steps)),
		total: len(d.Steps),
	}
	g.addNode(StartNode)
	for _, step := range d.Steps {
		g.addNode(step.ID)
		g.tasks[step.ID] = step.Tasks
	}
	g.addNode(EndNode)

	for _, c := range d.Connections {
		g.addEdge(c.StepFrom, c.StepTo)
	}
	// 源步骤挂到 _START_，汇步骤挂到 _END_；按定义顺序保持确定性
	for _, step := range d.Steps {
		i := g.index[step.ID]
		if len(g.prev[i]) == 0 {
			g.addEdge(StartNode, step.ID)
		}
	}
	for _, step := range d.Steps {
		if len(g.next[g.index[step.ID]]) == 0 {
			g.addEdge(step.ID, EndNode)
		}
	}
	return g
}

func (g *Graph) addNode(id string) {
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
	g.next = append(g.next, nil)
	g.prev = append(g.prev, nil)
}

func (g *Graph) addEdge(from, to string) {
	fi, ti := g.index[from], g.index[to]
	if g.hasEdge(from, to) {
		return
	}
	g.next[fi] = append(g.next[fi], ti)
	g.prev[ti] = append(g.prev[ti], fi)
}

func (g *Graph) hasEdge(from, to string) bool {
	fi, ti := g.index[from], g.index[to]
	for _, n := range g.next[fi] {
		if n == ti {
			return true
		}
	}
	return false
}

// Next 节点的出邻居
func (g *Graph) Next(id string) []string {
	return g.neighbours(id, g.next)
}

// Prev 节点的入邻居
func (g *Graph) Prev(id string) []string {
	return g.neighbours(id, g.prev)
}

func (g *Graph) neighbours(id string, adj [][]int) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(adj[i]))
	for _, n := range adj[i] {
		out = append(out, g.nodes[n])
	}
	return out
}

// RequiredForEnd 完成判定所需的步骤集合，即 _END_ 的入邻居
func (g *Graph) RequiredForEnd() []string {
	return g.Prev(EndNode)
}

// TotalSteps 不含哨兵的步骤总数
func (g *Graph) TotalSteps() int {
	return g.total
}

// Tasks 步骤的任务表（构图时预展开）
func (g *Graph) Tasks(stepID string) []Task {
	return g.tasks[stepID]
}
