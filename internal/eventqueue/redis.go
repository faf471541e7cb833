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

	"github.com/redis/go-redis/v9"
)

// RedisQueue 基于 Redis list 的队列：RPUSH 入队、BLPOP 出队。
// 多个 worker 可同时 BLPOP 同一个 key，弹出互斥。
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue 创建 Redis 队列；key 为列表键名
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, payload []byte) (int64, error) {
	return q.client.RPush(ctx, q.key, payload).Result()
}

func (q *RedisQueue) Pop(ctx context.Context) ([]byte, error) {
	// timeout 0 表示一直阻塞；ctx 取消由 go-redis 中断
	res, err := q.client.BLPop(ctx, 0, q.key).Result()
	if err != nil {
		return nil, err
	}
	// BLPOP 返回 [key, value]
	return []byte(res[1]), nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return nil
}
