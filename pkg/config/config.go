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

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
	Rewards    RewardsConfig    `mapstructure:"rewards"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig HTTP 与 WebSocket 服务配置
type ServerConfig struct {
	Env        string           `mapstructure:"env"`       // dev | prd，影响日志与 /health 输出
	Host       string           `mapstructure:"host"`      // 监听地址，默认 0.0.0.0
	HTTPPort   int              `mapstructure:"http_port"` // HTTP 端口，环境变量 HTTP_SERVER_PORT
	WSPort     int              `mapstructure:"ws_port"`   // WebSocket 端口，环境变量 WS_SERVER_PORT
	Timeout    string           `mapstructure:"timeout"`   // 请求超时，如 "30s"
	CORS       CORSConfig       `mapstructure:"cors"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
	WS         WSConfig         `mapstructure:"ws"`
}

// WSConfig WebSocket 会话配置
type WSConfig struct {
	AuthTimeout  string `mapstructure:"auth_timeout"`  // 认证挑战等待时长，空则默认 30s
	PingInterval string `mapstructure:"ping_interval"` // 心跳间隔，空则默认 30s
	WriteTimeout string `mapstructure:"write_timeout"` // 单帧写超时，空则默认 10s
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	Auth         bool `mapstructure:"auth"`           // 为 false 时跳过签名链校验（仅本地联调用）
	RateLimit    bool `mapstructure:"rate_limit"`     // 事件入口限流开关
	RateLimitRPS int  `mapstructure:"rate_limit_rps"` // 每地址每秒事件数，<=0 使用默认 20
}

// DatabaseConfig Postgres 存储配置
type DatabaseConfig struct {
	Type     string `mapstructure:"type"`      // postgres | memory
	URL      string `mapstructure:"url"`       // 连接串，环境变量 DATABASE_URL
	MinConns int    `mapstructure:"min_conns"` // 连接池下限，<=0 使用默认 5
	MaxConns int    `mapstructure:"max_conns"` // 连接池上限，<=0 使用默认 10
	Migrate  bool   `mapstructure:"migrate"`   // 启动时执行建表
}

// RedisConfig Redis 队列与发布订阅配置
type RedisConfig struct {
	URL      string `mapstructure:"url"`      // redis:// 连接串，环境变量 REDIS_URL，优先于 host
	Host     string `mapstructure:"host"`     // host:port，环境变量 REDIS_HOST
	DB       int    `mapstructure:"db"`       // DB 编号
	Password string `mapstructure:"password"` // 可选
	Queue    string `mapstructure:"queue"`    // 事件队列键名，空则默认 events:queue
	Channel  string `mapstructure:"channel"`  // 更新广播频道，空则默认 QUEST_UPDATES
}

// ProcessorConfig 事件处理器配置
type ProcessorConfig struct {
	// Enabled 为 false 时 API 进程不启动进程内 Processor，由独立 Worker 进程消费队列（分布式模式）；未配置时默认 true
	Enabled      *bool  `mapstructure:"enabled"`
	Workers      int    `mapstructure:"workers"`       // 分片 worker 数，<=0 使用默认 8
	ShardBuffer  int    `mapstructure:"shard_buffer"`  // 单分片待处理缓冲，<=0 使用默认 64
	RequeueDelay string `mapstructure:"requeue_delay"` // 全局失败重新入队前等待，如 "1s"，空则默认 5s
}

// RewardsConfig 奖励回调配置
type RewardsConfig struct {
	Timeout       string `mapstructure:"timeout"`        // Webhook 请求超时，空则默认 10s
	RetryCount    int    `mapstructure:"retry_count"`    // 失败重试次数，<0 使用默认 2
	RetryDelay    string `mapstructure:"retry_delay"`    // 重试间隔，如 "1s"
	AuthSecret    string `mapstructure:"auth_secret"`    // 向 Webhook 发送的 Bearer 凭证对应 secret key，空则不带
	SigningSecret string `mapstructure:"signing_secret"` // 请求体签名种子对应 secret key（base64 的 32 字节 ed25519 种子），空则不签名
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	Enable      bool   `mapstructure:"enable"`
	BearerToken string `mapstructure:"bearer_token"` // /metrics 校验令牌，环境变量 WKC_METRICS_BEARER_TOKEN
}

// SecretsConfig Secret 存储配置
type SecretsConfig struct {
	Provider string            `mapstructure:"provider"` // env | memory | vault | k8s
	Config   map[string]string `mapstructure:"config"`   // Provider 专属配置（address/token 等）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Tracing TracingConfig `mapstructure:"tracing"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// LoadConfig 加载配置文件；文件缺失时仅用环境变量与默认值。
// 部署环境约定的变量名（DATABASE_URL 等）通过 BindEnv 映射到配置键。
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("无法读取配置文件: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	return &config, nil
}

// bindEnvVars 绑定部署环境变量（沿用运维侧既有命名，不做前缀归一）
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.env", "ENV")
	_ = v.BindEnv("server.http_port", "HTTP_SERVER_PORT")
	_ = v.BindEnv("server.ws_port", "WS_SERVER_PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("metrics.bearer_token", "WKC_METRICS_BEARER_TOKEN")
}

// setDefaults 配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.env", "dev")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 3000)
	v.SetDefault("server.ws_port", 3001)
	v.SetDefault("server.middleware.auth", true)
	v.SetDefault("server.middleware.rate_limit", true)
	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.host", "localhost:6379")
	v.SetDefault("redis.queue", "events:queue")
	v.SetDefault("redis.channel", "QUEST_UPDATES")
	v.SetDefault("processor.workers", 8)
	v.SetDefault("metrics.enable", true)
	v.SetDefault("secrets.provider", "env")
}

// LoadAPIConfig 加载 API 配置（仅 configs/api.yaml）
func LoadAPIConfig() (*Config, error) {
	return LoadConfig("configs/api.yaml")
}

// LoadWorkerConfig 加载 Worker 配置（仅 configs/worker.yaml）
func LoadWorkerConfig() (*Config, error) {
	return LoadConfig("configs/worker.yaml")
}
