// Copyright 2026 fanjia1024
// HashiCorp Vault secret store

package secrets

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// VaultConfig Vault 后端配置。路径按 KV v1 引擎组织：
// secret 存于 <path_prefix>/<key>，值取 data 里的 "value" 字段。
type VaultConfig struct {
	Address    string `yaml:"address"`     // Vault 地址，如 http://vault:8200
	Token      string `yaml:"token"`       // 访问令牌
	PathPrefix string `yaml:"path_prefix"` // secret 路径前缀，默认 secret
}

type vaultStore struct {
	client     *vault.Client
	pathPrefix string
}

// NewVaultStore 创建 Vault secret store，构造时探活一次
func NewVaultStore(config VaultConfig) (Store, error) {
	if config.Address == "" {
		config.Address = "http://localhost:8200"
	}

	cfg := vault.DefaultConfig()
	cfg.Address = config.Address

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Token != "" {
		client.SetToken(config.Token)
	}
	if _, err := client.Sys().Health(); err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}

	prefix := "secret"
	if config.PathPrefix != "" {
		prefix = config.PathPrefix
	}
	return &vaultStore{client: client, pathPrefix: prefix}, nil
}

// Get 每次直读 Vault，不做本地缓存，轮换后的值立即生效
func (v *vaultStore) Get(ctx context.Context, key string) (string, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.buildPath(key))
	if err != nil {
		return "", fmt.Errorf("failed to read secret from vault: %w", err)
	}
	if secret == nil {
		return "", fmt.Errorf("secret not found: %s", key)
	}

	if data, ok := secret.Data["value"].(string); ok {
		return data, nil
	}
	// 没有 value 字段时取第一个字符串字段
	for _, val := range secret.Data {
		if str, ok := val.(string); ok {
			return str, nil
		}
	}
	return "", fmt.Errorf("secret value not found: %s", key)
}

func (v *vaultStore) Set(ctx context.Context, key string, value string) error {
	data := map[string]interface{}{"value": value}
	if _, err := v.client.Logical().WriteWithContext(ctx, v.buildPath(key), data); err != nil {
		return fmt.Errorf("failed to write secret to vault: %w", err)
	}
	return nil
}

func (v *vaultStore) Delete(ctx context.Context, key string) error {
	if _, err := v.client.Logical().DeleteWithContext(ctx, v.buildPath(key)); err != nil {
		return fmt.Errorf("failed to delete secret from vault: %w", err)
	}
	return nil
}

func (v *vaultStore) List(ctx context.Context, prefix string) ([]string, error) {
	secret, err := v.client.Logical().ListWithContext(ctx, v.pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets from vault: %w", err)
	}
	if secret == nil {
		return nil, nil
	}
	raw, ok := secret.Data["keys"].([]interface{})
	if !ok {
		return nil, nil
	}

	var result []string
	for _, k := range raw {
		if str, ok := k.(string); ok && strings.HasPrefix(str, prefix) {
			result = append(result, str)
		}
	}
	return result, nil
}

func (v *vaultStore) buildPath(key string) string {
	return fmt.Sprintf("%s/%s", v.pathPrefix, key)
}
