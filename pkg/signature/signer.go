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

// Package signature 奖励 Webhook 的 ed25519 请求签名。
// 签名串格式 "ed25519:<key_id>:<base64 签名>"；接收方用 Verify 校验
// 请求体原始字节，key_id 供密钥轮换时路由公钥。
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const algorithm = "ed25519"

// Signer 持有单个签名密钥
type Signer struct {
	keyID string
	key   ed25519.PrivateKey
}

// NewSigner 用现成私钥创建签名器
func NewSigner(keyID string, key ed25519.PrivateKey) *Signer {
	return &Signer{keyID: keyID, key: key}
}

// NewSignerFromSeed 从 32 字节种子派生签名器（种子经 secrets provider 下发）
func NewSignerFromSeed(keyID string, seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Signer{keyID: keyID, key: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenerateSigner 随机生成签名器，供开发与测试
func GenerateSigner(keyID string) (*Signer, ed25519.PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &Signer{keyID: keyID, key: priv}, pub, nil
}

// KeyID 返回密钥标识
func (s *Signer) KeyID() string {
	return s.keyID
}

// PublicKey 返回对应公钥（下发给 Webhook 接收方）
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Sign 对载荷签名并编码为 "ed25519:<key_id>:<base64 签名>"
func (s *Signer) Sign(payload []byte) string {
	sig := ed25519.Sign(s.key, payload)
	return algorithm + ":" + s.keyID + ":" + base64.StdEncoding.EncodeToString(sig)
}

// KeyIDOf 从签名串取 key_id，格式不符时返回空串
func KeyIDOf(signature string) string {
	parts := strings.SplitN(signature, ":", 3)
	if len(parts) != 3 || parts[0] != algorithm {
		return ""
	}
	return parts[1]
}

// Verify 校验签名串与载荷。算法不符、格式不符或签名不匹配返回 false。
func Verify(payload []byte, signature string, pub ed25519.PublicKey) bool {
	parts := strings.SplitN(signature, ":", 3)
	if len(parts) != 3 || parts[0] != algorithm {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, payload, sig)
}
