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

import "context"

// Queue 事件队列：API/WS 入队，Processor 消费。载荷为编码后的事件字节。
type Queue interface {
	// Push 入队，返回入队后的队列长度
	Push(ctx context.Context, payload []byte) (int64, error)
	// Pop 阻塞出队；ctx 取消时返回 ctx.Err()
	Pop(ctx context.Context) ([]byte, error)
	// Len 当前队列长度
	Len(ctx context.Context) (int64, error)
	// Close 释放底层资源
	Close() error
}
