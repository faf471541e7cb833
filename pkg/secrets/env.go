// Copyright 2026 fanjia1024
// Environment variable based secret store

package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// envStore 环境变量后端。prefix 非空时所有 key 先拼上前缀再查，
// 让部署侧把平台 secret 归入同一命名空间（如 QUESTS_）。
type envStore struct {
	prefix string
}

// NewEnvStore 创建环境变量 secret store
func NewEnvStore(prefix string) Store {
	return &envStore{prefix: prefix}
}

func (e *envStore) Get(ctx context.Context, key string) (string, error) {
	name := e.prefix + key
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("environment variable not set: %s", name)
	}
	return value, nil
}

func (e *envStore) Set(ctx context.Context, key string, value string) error {
	return os.Setenv(e.prefix+key, value)
}

func (e *envStore) Delete(ctx context.Context, key string) error {
	return os.Unsetenv(e.prefix + key)
}

// List 返回去掉 store 前缀后的 key 名，与 Get 的入参对齐
func (e *envStore) List(ctx context.Context, prefix string) ([]string, error) {
	full := e.prefix + prefix
	var keys []string
	for _, env := range os.Environ() {
		name, _, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, full) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(name, e.prefix))
	}
	return keys, nil
}
