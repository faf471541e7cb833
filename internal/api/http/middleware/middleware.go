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

// Package middleware HTTP 中间件：签名请求认证、限流、指标端点保护。
package middleware

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"golang.org/x/time/rate"

	"quest-platform/pkg/auth"
)

// SignedFetch 签名请求认证中间件。
// 请求须携带 X-Identity-Auth-Chain-<i>（逐节点 JSON）、X-Identity-Timestamp
// 与可选 X-Identity-Metadata，链尾对 method:path:timestamp:metadata 载荷签名。
type SignedFetch struct {
	now func() time.Time
}

// NewSignedFetch 创建签名请求认证中间件
func NewSignedFetch() *SignedFetch {
	return &SignedFetch{now: time.Now}
}

// Verify 校验签名链并把所有者地址注入 context，失败一律 401
func (s *SignedFetch) Verify() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		chain := readChain(c)
		if len(chain) == 0 {
			c.JSON(consts.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		address, err := auth.VerifySignedFetch(
			chain,
			string(c.Method()),
			string(c.Path()),
			c.Request.Header.Get(auth.HeaderTimestamp),
			c.Request.Header.Get(auth.HeaderMetadata),
			s.now(),
		)
		if err != nil {
			hlog.CtxWarnf(ctx, "signed fetch rejected: %v", err)
			c.JSON(consts.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		c.Next(auth.WithAddress(ctx, address))
	}
}

// readChain 从索引请求头还原签名链，任一节点解析失败即视为无链
func readChain(c *app.RequestContext) auth.Chain {
	var chain auth.Chain
	for i := 0; ; i++ {
		raw := c.Request.Header.Get(auth.HeaderChainPrefix + strconv.Itoa(i))
		if raw == "" {
			break
		}
		var link auth.ChainLink
		if err := json.Unmarshal([]byte(raw), &link); err != nil {
			return nil
		}
		chain = append(chain, link)
	}
	return chain
}

// RateLimit 按调用方地址限流的令牌桶，超限返回 429。
// 须挂在认证中间件之后；未认证请求退化为按来源 IP。
func RateLimit(rps float64, burst int) app.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	return func(ctx context.Context, c *app.RequestContext) {
		key := auth.GetAddress(ctx)
		if key == "" {
			key = c.ClientIP()
		}
		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(consts.StatusTooManyRequests, map[string]string{
				"error": "too many requests",
			})
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}

// MetricsGuard 指标端点保护：bearer_token 查询参数须与配置一致。
// 未配置令牌时端点不可用。
func MetricsGuard(token string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if token == "" || c.Query("bearer_token") != token {
			c.JSON(consts.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}

// AccessLog 访问日志中间件
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		hlog.CtxInfof(ctx, "%s %s -> %d (%v)",
			c.Method(), c.Path(), c.Response.StatusCode(), time.Since(start))
	}
}
