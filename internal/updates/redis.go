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

	"github.com/redis/go-redis/v9"
)

// RedisBus 基于 Redis PUBLISH/SUBSCRIBE 的总线，跨进程广播
type RedisBus struct {
	client  *redis.Client
	channel string
}

// NewRedisBus 创建 Redis 总线；channel 为发布频道名
func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	return &RedisBus{client: client, channel: channel}
}

func (b *RedisBus) Publish(ctx context.Context, payload []byte) error {
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	// 确认订阅建立，避免订阅完成前的消息丢失窗口过大
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	sub := &redisSubscription{ps: ps, out: make(chan []byte, 64)}
	go sub.pump()
	return sub, nil
}

func (b *RedisBus) Close() error {
	return nil
}

type redisSubscription struct {
	ps  *redis.PubSub
	out chan []byte
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		default:
			// 慢消费者丢弃；掉线的会话重订阅后以回放补齐
		}
	}
}

func (s *redisSubscription) Updates() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.ps.Close()
}
