// Copyright 2026 fanjia1024
// Kubernetes mounted-secret store

package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// K8sConfig Kubernetes 后端配置
type K8sConfig struct {
	// ServiceAccountPath service account 挂载目录，
	// 默认 /var/run/secrets/kubernetes.io/serviceaccount
	ServiceAccountPath string `yaml:"service_account_path"`

	// Namespace pod 所在 namespace，默认 default
	Namespace string `yaml:"namespace"`

	// SecretsPath 平台 secret 的挂载目录，默认 /etc/secrets。
	// 每个 secret 一个文件，文件名即 key。
	SecretsPath string `yaml:"secrets_path"`
}

// k8sStore 按文件读取挂载的 secret。卷由 kubelet 随 Secret 对象
// 轮换，这里不做缓存；写操作一律 ErrReadOnly。
type k8sStore struct {
	serviceAccountPath string
	secretsPath        string
	namespace          string
}

// saFiles service account 目录下的固定文件，仅按原名提供
var saFiles = map[string]struct{}{
	"token":     {},
	"ca.crt":    {},
	"namespace": {},
}

// NewK8sStore 创建 Kubernetes secret store
func NewK8sStore(config K8sConfig) (Store, error) {
	saPath := "/var/run/secrets/kubernetes.io/serviceaccount"
	if config.ServiceAccountPath != "" {
		saPath = config.ServiceAccountPath
	}
	if _, err := os.Stat(saPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("kubernetes service account path not found: %s (not running in Kubernetes?)", saPath)
	}

	secretsPath := "/etc/secrets"
	if config.SecretsPath != "" {
		secretsPath = config.SecretsPath
	}
	namespace := "default"
	if config.Namespace != "" {
		namespace = config.Namespace
	}

	return &k8sStore{
		serviceAccountPath: saPath,
		secretsPath:        secretsPath,
		namespace:          namespace,
	}, nil
}

// Get 依次查平台挂载目录、service account 固定文件、
// 标准 secret 挂载路径。文件内容去除首尾空白，避免运维写入的
// 结尾换行混进令牌或 base64 种子。
func (k *k8sStore) Get(ctx context.Context, key string) (string, error) {
	if data, err := os.ReadFile(filepath.Join(k.secretsPath, key)); err == nil {
		return strings.TrimSpace(string(data)), nil
	}

	if _, ok := saFiles[key]; ok {
		if data, err := os.ReadFile(filepath.Join(k.serviceAccountPath, key)); err == nil {
			return strings.TrimSpace(string(data)), nil
		}
	}

	fallback := fmt.Sprintf("/run/secrets/kubernetes.io/%s/%s", k.namespace, key)
	if data, err := os.ReadFile(fallback); err == nil {
		return strings.TrimSpace(string(data)), nil
	}

	return "", fmt.Errorf("secret not found: %s", key)
}

func (k *k8sStore) Set(ctx context.Context, key string, value string) error {
	return fmt.Errorf("set %s: %w", key, ErrReadOnly)
}

func (k *k8sStore) Delete(ctx context.Context, key string) error {
	return fmt.Errorf("delete %s: %w", key, ErrReadOnly)
}

// List 合并平台挂载目录与 service account 目录下的文件名
func (k *k8sStore) List(ctx context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for _, dir := range []string{k.secretsPath, k.serviceAccountPath} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasPrefix(name, prefix) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			keys = append(keys, name)
		}
	}
	return keys, nil
}
