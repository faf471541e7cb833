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
	"context"
	"sync"
)

// MemoryBus 内存总线，用于测试与单进程部署
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[*memorySubscription]struct{}
	closed bool
}

// NewMemoryBus 创建内存总线
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[*memorySubscription]struct{})}
}

func (b *MemoryBus) Publish(ctx context.Context, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		msg := make([]byte, len(payload))
		copy(msg, payload)
		select {
		case sub.out <- msg:
		default:
			// 慢消费者丢弃
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (Subscription, error) {
	sub := &memorySubscription{bus: b, out: make(chan []byte, 64)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub, nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.out)
		delete(b.subs, sub)
	}
	return nil
}

type memorySubscription struct {
	bus  *MemoryBus
	out  chan []byte
	once sync.Once
}

func (s *memorySubscription) Updates() <-chan []byte {
	return s.out
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		if _, ok := s.bus.subs[s]; ok {
			delete(s.bus.subs, s)
			close(s.out)
		}
		s.bus.mu.Unlock()
	})
	return nil
}
