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

package auth

import (
	"context"
)

type contextKey string

const (
	addressKey contextKey = "auth.address"
)

// WithAddress 将已验证的用户地址注入 context（小写十六进制）
func WithAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, addressKey, NormalizeAddress(address))
}

// GetAddress 从 context 获取已验证地址，未认证时返回空串
func GetAddress(ctx context.Context) string {
	if v, ok := ctx.Value(addressKey).(string); ok {
		return v
	}
	return ""
}
