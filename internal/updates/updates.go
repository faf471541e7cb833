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

// Package updates 在 Processor 与 WS 会话之间广播用户更新。
// 载荷为编码后的 UserUpdate 字节，广播是尽力而为的 fan-out，
// 权威状态始终以事件表回放为准。
package updates

import "context"

// Bus 更新总线
type Bus interface {
	// Publish 广播一条更新
	Publish(ctx context.Context, payload []byte) error
	// Subscribe 订阅全部更新；调用方负责 Close
	Subscribe(ctx context.Context) (Subscription, error)
	// Close 关闭总线
	Close() error
}

// Subscription 单个订阅。Close 之后 Updates 通道关闭。
type Subscription interface {
	Updates() <-chan []byte
	Close() error
}
