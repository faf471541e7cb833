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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HTTP 签名请求头。签名链逐节点放在 X-Identity-Auth-Chain-<i>。
const (
	HeaderTimestamp   = "X-Identity-Timestamp"
	HeaderMetadata    = "X-Identity-Metadata"
	HeaderChainPrefix = "X-Identity-Auth-Chain-"
)

// MaxTimestampDrift 签名请求时间戳允许的漂移
const MaxTimestampDrift = 2 * time.Minute

var (
	ErrMissingTimestamp = errors.New("signed fetch timestamp header missing")
	ErrStaleTimestamp   = errors.New("signed fetch timestamp outside allowed drift")
)

// SignedFetchPayload 构造 HTTP 签名载荷：method 与 path 取小写，path 不含查询串。
func SignedFetchPayload(method, path, timestamp, metadata string) string {
	return strings.ToLower(method) + ":" + strings.ToLower(path) + ":" + timestamp + ":" + metadata
}

// VerifySignedFetch 校验一次 HTTP 签名请求并返回所有者地址。
// timestamp 为 Unix 毫秒字符串；metadata 可为空串。
func VerifySignedFetch(chain Chain, method, path, timestamp, metadata string, now time.Time) (string, error) {
	if timestamp == "" {
		return "", ErrMissingTimestamp
	}
	millis, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse signed fetch timestamp: %w", err)
	}
	at := time.UnixMilli(millis)
	drift := now.Sub(at)
	if drift < 0 {
		drift = -drift
	}
	if drift > MaxTimestampDrift {
		return "", ErrStaleTimestamp
	}
	payload := SignedFetchPayload(method, path, timestamp, metadata)
	return chain.Verify(payload, now)
}
