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

package eventqueue

import (
	"context"
	"sync"
)

// MemoryQueue 内存队列，用于测试与单进程部署
type MemoryQueue struct {
	mu     sync.Mutex
	items  [][]byte
	notify chan struct{}
}

// NewMemoryQueue 创建内存队列
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{notify: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Push(ctx context.Context, payload []byte) (int64, error) {
	q.mu.Lock()
	item := make([]byte, len(payload))
	copy(item, payload)
	q.items = append(q.items, item)
	length := int64(len(q.items))
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return length, nil
}

func (q *MemoryQueue) Pop(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			// 还有剩余时保持唤醒，让并发的 Pop 继续取
			if len(q.items) > 0 {
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

func (q *MemoryQueue) Close() error {
	return nil
}
