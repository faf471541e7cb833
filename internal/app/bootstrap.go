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

// Package app 组装任务平台：门面、存储、队列与广播的统一初始化，
// 供 api 与 worker 两个进程复用，cmd 层不直接接触 storage。
package app

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quest-platform/internal/eventqueue"
	"quest-platform/internal/processor"
	"quest-platform/internal/protocol"
	"quest-platform/internal/store"
	"quest-platform/internal/updates"
	"quest-platform/pkg/config"
	"quest-platform/pkg/log"
	"quest-platform/pkg/secrets"
	"quest-platform/pkg/signature"
	"quest-platform/pkg/utils"
)

// Bootstrap 统一初始化结果。database.type=memory 时队列与广播同样退化为
// 进程内实现，整机零外部依赖（本地联调与测试形态）。
type Bootstrap struct {
	Config  *config.Config
	Logger  *log.Logger
	Store   store.Store
	Queue   eventqueue.Queue
	Bus     updates.Bus
	Codec   protocol.Codec
	Sender  *processor.Sender
	Secrets secrets.Store

	pg    *store.PGStore
	redis *redis.Client
}

// NewBootstrap 根据配置创建 Bootstrap
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	b := &Bootstrap{Config: cfg, Logger: logger, Codec: protocol.Codec{}}

	if cfg.Database.Type == "memory" {
		b.Store = store.NewMemoryStore()
		b.Queue = eventqueue.NewMemoryQueue()
		b.Bus = updates.NewMemoryBus()
		logger.Info("使用进程内存储与队列", "mode", "memory")
	} else {
		pg, err := store.NewPGStore(ctx, store.PGOptions{
			URL:      cfg.Database.URL,
			MinConns: int32(cfg.Database.MinConns),
			MaxConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			return nil, fmt.Errorf("初始化存储失败: %w", err)
		}
		if cfg.Database.Migrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				pg.Close()
				return nil, fmt.Errorf("应用建表语句失败: %w", err)
			}
		}
		b.pg = pg
		b.Store = pg

		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			pg.Close()
			return nil, err
		}
		b.redis = client

		queueKey := utils.CoalesceString(cfg.Redis.Queue, "events:queue")
		channel := utils.CoalesceString(cfg.Redis.Channel, "QUEST_UPDATES")
		b.Queue = eventqueue.NewRedisQueue(client, queueKey)
		b.Bus = updates.NewRedisBus(client, channel)
	}

	b.Sender = processor.NewSender(b.Queue, b.Codec, logger)

	b.Secrets, err = secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Config:   cfg.Secrets.Config,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("初始化 secret 存储失败: %w", err)
	}

	return b, nil
}

// MetricsToken 解析 /metrics 校验令牌：配置值优先，否则查 secret 存储
func (b *Bootstrap) MetricsToken(ctx context.Context) string {
	if b.Config.Metrics.BearerToken != "" {
		return b.Config.Metrics.BearerToken
	}
	token, err := b.Secrets.Get(ctx, "WKC_METRICS_BEARER_TOKEN")
	if err != nil {
		return ""
	}
	return token
}

// RewardToken 解析奖励 Webhook 的 Bearer 凭证；未配置 secret key 时为空
func (b *Bootstrap) RewardToken(ctx context.Context) string {
	key := b.Config.Rewards.AuthSecret
	if key == "" {
		return ""
	}
	token, err := b.Secrets.Get(ctx, key)
	if err != nil {
		b.Logger.Warn("奖励凭证解析失败", "key", key, "error", err)
		return ""
	}
	return token
}

// RewardSigner 构建奖励 Webhook 的请求体签名器。
// signing_secret 指向 secret 存储里 base64 编码的 32 字节 ed25519 种子，
// key id 取 secret key 本身；未配置或种子非法时返回 nil（不签名）。
func (b *Bootstrap) RewardSigner(ctx context.Context) *signature.Signer {
	key := b.Config.Rewards.SigningSecret
	if key == "" {
		return nil
	}
	encoded, err := b.Secrets.Get(ctx, key)
	if err != nil {
		b.Logger.Warn("奖励签名种子解析失败", "key", key, "error", err)
		return nil
	}
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		b.Logger.Warn("奖励签名种子不是合法 base64", "key", key, "error", err)
		return nil
	}
	signer, err := signature.NewSignerFromSeed(key, seed)
	if err != nil {
		b.Logger.Warn("奖励签名器初始化失败", "key", key, "error", err)
		return nil
	}
	return signer
}

// Close 释放连接资源，与 NewBootstrap 配对
func (b *Bootstrap) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pg != nil {
		b.pg.Close()
	}
}

// newRedisClient 创建并探活 Redis 客户端；URL 优先于 host 形式
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("解析 Redis URL 失败: %w", err)
		}
		opts = parsed
	} else {
		host := utils.CoalesceString(cfg.Host, "localhost:6379")
		opts = &redis.Options{Addr: host, DB: cfg.DB, Password: cfg.Password}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
