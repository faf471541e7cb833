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

package updates

import (
	"sync"

	"quest-platform/internal/quest"
)

// Router 单个订阅会话的更新过滤器。总线是全局广播，
// 每个会话只向客户端转发归属本用户、且落在本用户实例集合内的更新。
// 实例集合以订阅瞬间的快照起步，订阅期间新开的实例随
// NewQuestStarted 更新实时并入。
type Router struct {
	address string

	mu        sync.Mutex
	instances map[string]struct{}
}

// NewRouter 以地址与实例快照构建过滤器
func NewRouter(address string, instanceIDs []string) *Router {
	r := &Router{
		address:   quest.NormalizeAddress(address),
		instances: make(map[string]struct{}, len(instanceIDs)),
	}
	for _, id := range instanceIDs {
		r.instances[id] = struct{}{}
	}
	return r
}

// Allow 判定是否向会话转发该更新，并维护实例集合
func (r *Router) Allow(u *quest.UserUpdate) bool {
	if u == nil || u.UserAddress != r.address {
		return false
	}
	switch {
	case u.Started != nil:
		r.mu.Lock()
		r.instances[u.Started.Instance.ID] = struct{}{}
		r.mu.Unlock()
		return true
	case u.State != nil:
		return r.member(u.State.InstanceID)
	case u.Completed != nil:
		return r.member(u.Completed.InstanceID)
	case u.Ignored != nil:
		// 事件被忽略与具体实例无关，按地址转发
		return true
	}
	return false
}

func (r *Router) member(instanceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.instances[instanceID]
	return ok
}

// Drop 移除实例（如放弃后不再转发其更新）
func (r *Router) Drop(instanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, instanceID)
}
