// Copyright 2026 fanjia1024
// Secret management abstraction

package secrets

import (
	"context"
	"errors"
)

// ErrReadOnly 后端不支持写入（如 k8s 挂载卷）
var ErrReadOnly = errors.New("secret store is read-only")

// Store 平台的 secret 读取接口。奖励 Webhook 的 Bearer 凭证、
// 请求体签名种子与 /metrics 令牌都经由这里取值，配置文件只保存 key。
type Store interface {
	// Get 获取 secret 值
	Get(ctx context.Context, key string) (string, error)

	// Set 设置 secret 值；只读后端（如 k8s 挂载卷）返回 ErrReadOnly
	Set(ctx context.Context, key string, value string) error

	// Delete 删除 secret
	Delete(ctx context.Context, key string) error

	// List 列出指定前缀下的 secret keys
	List(ctx context.Context, prefix string) ([]string, error)
}

// Config Secret Store 配置
type Config struct {
	Provider string            `mapstructure:"provider" yaml:"provider"` // vault | k8s | env | memory
	Config   map[string]string `mapstructure:"config" yaml:"config"`     // Provider 专属配置
}

// NewStore 按 provider 创建 Secret Store。
// memory 后端把 provider 配置里的键值整体作为初始内容，便于本地联调在
// yaml 里直接写死令牌；未知 provider 回落到环境变量。
func NewStore(config Config) (Store, error) {
	switch config.Provider {
	case "memory":
		return NewMemoryStoreFrom(config.Config), nil
	case "env":
		return NewEnvStore(config.Config["prefix"]), nil
	case "vault":
		return NewVaultStore(VaultConfig{
			Address:    config.Config["address"],
			Token:      config.Config["token"],
			PathPrefix: config.Config["path_prefix"],
		})
	case "k8s":
		return NewK8sStore(K8sConfig{
			ServiceAccountPath: config.Config["service_account_path"],
			Namespace:          config.Config["namespace"],
			SecretsPath:        config.Config["secrets_path"],
		})
	default:
		return NewEnvStore(config.Config["prefix"]), nil
	}
}
