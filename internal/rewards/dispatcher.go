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

// Package rewards 实例首次完成后向创建者登记的 Webhook 投递奖励通知。
// 投递是尽力而为：失败只记日志与指标，不影响任务完成本身。
package rewards

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"quest-platform/internal/quest"
	"quest-platform/pkg/config"
	pkgerrors "quest-platform/pkg/errors"
	"quest-platform/pkg/log"
	"quest-platform/pkg/metrics"
	"quest-platform/pkg/signature"
	"quest-platform/pkg/tracing"
	"quest-platform/pkg/utils"
)

// URL 与请求体值中的占位符
const (
	PlaceholderUserAddress = "{user_address}"
	PlaceholderQuestID     = "{quest_id}"
)

// HeaderSignature 请求体签名头，值格式见 pkg/signature
const HeaderSignature = "X-Quest-Signature"

// HookSource 按模板取奖励回调配置
type HookSource interface {
	GetQuestRewardHook(ctx context.Context, questID string) (*quest.RewardHook, error)
}

// Dispatcher 奖励投递器
type Dispatcher struct {
	hooks  HookSource
	client *resty.Client
	token  string
	signer *signature.Signer
	logger *log.Logger
}

// NewDispatcher 创建投递器；token 非空时以 Bearer 随请求发送
func NewDispatcher(hooks HookSource, cfg config.RewardsConfig, token string, logger *log.Logger) *Dispatcher {
	timeout := utils.Duration(cfg.Timeout, 10*time.Second)
	retryCount := cfg.RetryCount
	if retryCount < 0 {
		retryCount = 2
	}
	retryDelay := utils.Duration(cfg.RetryDelay, time.Second)

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(retryCount)
	client.SetRetryWaitTime(retryDelay)
	client.SetRetryMaxWaitTime(retryDelay * 4)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})

	return &Dispatcher{hooks: hooks, client: client, token: token, logger: logger}
}

// SetSigner 启用请求体签名，签名放在 X-Quest-Signature 头
func (d *Dispatcher) SetSigner(s *signature.Signer) {
	d.signer = s
}

// Dispatch 向模板的 Webhook 投递完成通知。
// URL 与请求体值里的 {user_address}、{quest_id} 先替换再发送；
// 响应体 {"ok": true} 视为发放成功。
func (d *Dispatcher) Dispatch(ctx context.Context, questID, userAddress string) {
	ctx, span := tracing.StartRewardSpan(ctx, questID, userAddress)
	defer span.End()

	hook, err := d.hooks.GetQuestRewardHook(ctx, questID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			// 未登记奖励的模板直接跳过
			return
		}
		d.logger.Error("读取奖励回调失败", "quest_id", questID, "error", err)
		metrics.RewardTotal.WithLabelValues("error").Inc()
		return
	}

	url := expand(hook.WebhookURL, questID, userAddress)
	req := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if d.token != "" {
		req.SetHeader("Authorization", "Bearer "+d.token)
	}
	var payload []byte
	if len(hook.RequestBody) > 0 {
		body := make(map[string]string, len(hook.RequestBody))
		for k, v := range hook.RequestBody {
			body[k] = expand(v, questID, userAddress)
		}
		payload, err = json.Marshal(body)
		if err != nil {
			d.logger.Error("奖励请求体编码失败", "quest_id", questID, "error", err)
			metrics.RewardTotal.WithLabelValues("error").Inc()
			return
		}
		req.SetBody(payload)
	}
	if d.signer != nil {
		// 签名覆盖实际发送的字节，无请求体时对空串签名
		req.SetHeader(HeaderSignature, d.signer.Sign(payload))
	}

	resp, err := req.Post(url)
	if err != nil {
		d.logger.Error("奖励 Webhook 调用失败", "quest_id", questID, "user_address", userAddress, "error", err)
		metrics.RewardTotal.WithLabelValues("error").Inc()
		return
	}
	if resp.StatusCode() != http.StatusOK {
		d.logger.Error("奖励 Webhook 返回错误", "quest_id", questID, "status", resp.StatusCode(), "body", resp.String())
		metrics.RewardTotal.WithLabelValues("error").Inc()
		return
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil || !result.OK {
		d.logger.Warn("奖励 Webhook 未确认发放", "quest_id", questID, "user_address", userAddress, "body", resp.String())
		metrics.RewardTotal.WithLabelValues("rejected").Inc()
		return
	}

	d.logger.Info("奖励已投递", "quest_id", questID, "user_address", userAddress)
	metrics.RewardTotal.WithLabelValues("ok").Inc()
}

func expand(s, questID, userAddress string) string {
	s = strings.ReplaceAll(s, PlaceholderUserAddress, userAddress)
	s = strings.ReplaceAll(s, PlaceholderQuestID, questID)
	return s
}
