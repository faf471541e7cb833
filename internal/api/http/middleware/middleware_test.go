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

package middleware

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest-platform/pkg/auth"
)

// rateLimitEngine 挂一个从测试头注入调用方地址的前置中间件，模拟认证链
func rateLimitEngine(rps float64, burst int) *server.Hertz {
	hz := server.Default(server.WithHostPorts(":0"))
	inject := func(ctx context.Context, c *app.RequestContext) {
		if addr := string(c.GetHeader("X-Test-Address")); addr != "" {
			ctx = auth.WithAddress(ctx, addr)
		}
		c.Next(ctx)
	}
	hz.PUT("/events", inject, RateLimit(rps, burst), func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "accepted"})
	})
	return hz
}

func performAs(hz *server.Hertz, addr string) int {
	var headers []ut.Header
	if addr != "" {
		headers = append(headers, ut.Header{Key: "X-Test-Address", Value: addr})
	}
	w := ut.PerformRequest(hz.Engine, "PUT", "/events", nil, headers...)
	return w.Result().StatusCode()
}

func TestRateLimit_PerAddressBuckets(t *testing.T) {
	hz := rateLimitEngine(0.001, 1)

	require.Equal(t, consts.StatusOK, performAs(hz, "0xaaa"))
	assert.Equal(t, consts.StatusTooManyRequests, performAs(hz, "0xaaa"))

	// 另一个地址有独立配额
	assert.Equal(t, consts.StatusOK, performAs(hz, "0xbbb"))
	assert.Equal(t, consts.StatusTooManyRequests, performAs(hz, "0xbbb"))
}

func TestRateLimit_Burst(t *testing.T) {
	hz := rateLimitEngine(0.001, 3)

	for i := 0; i < 3; i++ {
		require.Equal(t, consts.StatusOK, performAs(hz, "0xaaa"), "request %d within burst", i)
	}
	assert.Equal(t, consts.StatusTooManyRequests, performAs(hz, "0xaaa"))
}

func TestRateLimit_UnauthenticatedSharesIPBucket(t *testing.T) {
	hz := rateLimitEngine(0.001, 1)

	// 无认证地址时退化为按来源 IP，测试请求同源故共享桶
	require.Equal(t, consts.StatusOK, performAs(hz, ""))
	assert.Equal(t, consts.StatusTooManyRequests, performAs(hz, ""))
}

func TestMetricsGuard_EmptyTokenDisables(t *testing.T) {
	hz := server.Default(server.WithHostPorts(":0"))
	hz.GET("/metrics", MetricsGuard(""), func(ctx context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, "metrics")
	})

	w := ut.PerformRequest(hz.Engine, "GET", "/metrics?bearer_token=", nil)
	assert.Equal(t, consts.StatusUnauthorized, w.Result().StatusCode())
}
