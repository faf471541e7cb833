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

// Package auth 校验钱包签名链（personal_sign）。
// 链首为 SIGNER（所有者地址），可经 ECDSA_EPHEMERAL 委托给临时密钥，
// 链尾 ECDSA_SIGNED_ENTITY 对最终载荷（挑战串或 signed-fetch 载荷）签名。
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// 链节点类型
const (
	LinkSigner       = "SIGNER"
	LinkEphemeral    = "ECDSA_EPHEMERAL"
	LinkSignedEntity = "ECDSA_SIGNED_ENTITY"
)

var (
	ErrEmptyChain          = errors.New("auth chain is empty")
	ErrBadSigner           = errors.New("auth chain must start with a SIGNER link")
	ErrBadSignature        = errors.New("signature does not match expected signer")
	ErrEphemeralExpired    = errors.New("ephemeral key expired")
	ErrPayloadMismatch     = errors.New("signed payload does not match expected payload")
	ErrMissingSignedEntity = errors.New("auth chain has no signed entity link")
	ErrUnsupportedLink     = errors.New("unsupported auth link type")
)

// ChainLink 签名链单节点
type ChainLink struct {
	Type      string `json:"type"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Chain 签名链，按 JSON 数组传输
type Chain []ChainLink

// NormalizeAddress 地址统一为小写十六进制
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Verify 校验签名链并返回所有者地址（小写）。
// expectedPayload 为链尾必须签署的载荷；now 用于临时密钥过期判断。
func (c Chain) Verify(expectedPayload string, now time.Time) (string, error) {
	if len(c) == 0 {
		return "", ErrEmptyChain
	}
	first := c[0]
	if !strings.EqualFold(first.Type, LinkSigner) || !common.IsHexAddress(first.Payload) {
		return "", ErrBadSigner
	}
	owner := NormalizeAddress(first.Payload)

	// signer 随链推进：所有者 → 临时密钥
	signer := owner
	for _, link := range c[1:] {
		switch strings.ToUpper(link.Type) {
		case LinkEphemeral:
			recovered, err := RecoverAddress(link.Payload, link.Signature)
			if err != nil {
				return "", err
			}
			if recovered != signer {
				return "", fmt.Errorf("%w: ephemeral link signed by %s, want %s", ErrBadSignature, recovered, signer)
			}
			ephemeral, expiration, err := parseEphemeralPayload(link.Payload)
			if err != nil {
				return "", err
			}
			if now.After(expiration) {
				return "", ErrEphemeralExpired
			}
			signer = ephemeral
		case LinkSignedEntity:
			recovered, err := RecoverAddress(link.Payload, link.Signature)
			if err != nil {
				return "", err
			}
			if recovered != signer {
				return "", fmt.Errorf("%w: entity link signed by %s, want %s", ErrBadSignature, recovered, signer)
			}
			if link.Payload != expectedPayload {
				return "", ErrPayloadMismatch
			}
			return owner, nil
		default:
			return "", fmt.Errorf("%w: %s", ErrUnsupportedLink, link.Type)
		}
	}
	return "", ErrMissingSignedEntity
}

// RecoverAddress 从 personal_sign 签名恢复地址（小写）
func RecoverAddress(payload string, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	// 钱包产出的 V 为 27/28，库期望 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(PersonalSignHash([]byte(payload)), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return NormalizeAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// PersonalSignHash EIP-191 personal_sign 消息哈希
func PersonalSignHash(data []byte) []byte {
	msg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)
	return crypto.Keccak256([]byte(msg))
}

// parseEphemeralPayload 解析临时密钥载荷中的地址与过期时间。
// 载荷按行给出 "Ephemeral address: 0x..." 与 "Expiration: <RFC3339>"。
func parseEphemeralPayload(payload string) (address string, expiration time.Time, err error) {
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "ephemeral address:"):
			address = NormalizeAddress(line[len("ephemeral address:"):])
		case strings.HasPrefix(lower, "expiration:"):
			raw := strings.TrimSpace(line[len("expiration:"):])
			expiration, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return "", time.Time{}, fmt.Errorf("parse ephemeral expiration: %w", err)
			}
		}
	}
	if !common.IsHexAddress(address) {
		return "", time.Time{}, fmt.Errorf("ephemeral payload missing address")
	}
	if expiration.IsZero() {
		return "", time.Time{}, fmt.Errorf("ephemeral payload missing expiration")
	}
	return address, expiration, nil
}
