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

package processor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quest-platform/internal/eventqueue"
	"quest-platform/internal/quest"
	"quest-platform/pkg/log"
	"quest-platform/pkg/metrics"
)

// Sender 事件入口：HTTP 与 WS 收到动作后由此编码入队。
// 入队即返回事件 id，推进结果经更新总线异步送达。
type Sender struct {
	queue  eventqueue.Queue
	codec  Codec
	logger *log.Logger
}

// NewSender 创建事件入口
func NewSender(queue eventqueue.Queue, codec Codec, logger *log.Logger) *Sender {
	return &Sender{queue: queue, codec: codec, logger: logger}
}

// Send 为动作生成事件并入队，返回事件 id
func (s *Sender) Send(ctx context.Context, address string, action *quest.Action) (string, error) {
	if action == nil || action.Type == "" {
		return "", quest.NewValidationError("action", "action with a type is required")
	}
	ev := &quest.Event{
		ID:      uuid.NewString(),
		Address: quest.NormalizeAddress(address),
		Action:  action,
	}
	payload, err := s.codec.EncodeEvent(ev)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	length, err := s.queue.Push(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("enqueue event: %w", err)
	}
	metrics.EventQueueDepth.Set(float64(length))
	s.logger.Debug("事件已入队", "event_id", ev.ID, "address", ev.Address, "queue_depth", length)
	return ev.ID, nil
}
