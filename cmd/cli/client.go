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

package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"

	"quest-platform/pkg/auth"
)

func apiBaseURL() string {
	if u := os.Getenv("QUEST_API_URL"); u != "" {
		return u
	}
	return "http://localhost:3000"
}

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL()).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
}

// signer 以环境变量 QUEST_PRIVATE_KEY 中的私钥签署请求
type signer struct {
	key     *ecdsa.PrivateKey
	address string
}

func newSigner(hexKey string) (*signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	address := auth.NormalizeAddress(crypto.PubkeyToAddress(key.PublicKey).Hex())
	return &signer{key: key, address: address}, nil
}

func newSignerFromEnv() (*signer, error) {
	hexKey := os.Getenv("QUEST_PRIVATE_KEY")
	if hexKey == "" {
		return nil, fmt.Errorf("缺少环境变量 QUEST_PRIVATE_KEY")
	}
	return newSigner(hexKey)
}

// headers 构造一次 signed-fetch 请求头：时间戳与两节点签名链（SIGNER + SIGNED_ENTITY）
func (s *signer) headers(method, path string) (map[string]string, error) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	payload := auth.SignedFetchPayload(method, path, ts, "")
	sig, err := crypto.Sign(auth.PersonalSignHash([]byte(payload)), s.key)
	if err != nil {
		return nil, fmt.Errorf("签名失败: %w", err)
	}
	links := []auth.ChainLink{
		{Type: auth.LinkSigner, Payload: s.address},
		{Type: auth.LinkSignedEntity, Payload: payload, Signature: hexutil.Encode(sig)},
	}
	headers := map[string]string{auth.HeaderTimestamp: ts}
	for i, link := range links {
		b, err := json.Marshal(link)
		if err != nil {
			return nil, err
		}
		headers[auth.HeaderChainPrefix+strconv.Itoa(i)] = string(b)
	}
	return headers, nil
}

// doSigned 发送一次签名请求。path 不含查询串（签名载荷只覆盖路径）。
func doSigned(method, path string, queries map[string]string, body interface{}, out interface{}) (*resty.Response, error) {
	s, err := newSignerFromEnv()
	if err != nil {
		return nil, err
	}
	h, err := s.headers(method, path)
	if err != nil {
		return nil, err
	}
	req := newClient().R().SetHeaders(h)
	if len(queries) > 0 {
		req.SetQueryParams(queries)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	return req.Execute(method, path)
}

func healthCheck() error {
	resp, err := newClient().R().Get("/health/live")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("GET /health/live: %s", resp.String())
	}
	return nil
}

func createQuest(file string) (string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	resp, err := doSigned(http.MethodPost, "/api/quests", nil, json.RawMessage(raw), &out)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("POST /api/quests: %s", resp.String())
	}
	return out.ID, nil
}

func listQuests(offset, limit int) ([]map[string]interface{}, error) {
	var out struct {
		Quests []map[string]interface{} `json:"quests"`
	}
	queries := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	resp, err := doSigned(http.MethodGet, "/api/quests", queries, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/quests: %s", resp.String())
	}
	return out.Quests, nil
}

func getQuest(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodGet, "/api/quests/"+id, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/quests/%s: %s", id, resp.String())
	}
	return out, nil
}

func activateQuest(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodPut, "/api/quests/"+id+"/activate", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("PUT activate: %s", resp.String())
	}
	return out, nil
}

func deactivateQuest(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodDelete, "/api/quests/"+id, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("DELETE /api/quests/%s: %s", id, resp.String())
	}
	return out, nil
}

func getQuestStats(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodGet, "/api/quests/"+id+"/stats", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET stats: %s", resp.String())
	}
	return out, nil
}

func getQuestReward(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	queries := map[string]string{"with_hook": "true"}
	resp, err := doSigned(http.MethodGet, "/api/quests/"+id+"/reward", queries, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET reward: %s", resp.String())
	}
	return out, nil
}

func listQuestInstances(id string) ([]map[string]interface{}, error) {
	var out struct {
		Instances []map[string]interface{} `json:"instances"`
	}
	resp, err := doSigned(http.MethodGet, "/api/quests/"+id+"/instances", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET instances: %s", resp.String())
	}
	return out.Instances, nil
}

func getInstance(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodGet, "/api/instances/"+id, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/instances/%s: %s", id, resp.String())
	}
	return out, nil
}

func getInstanceState(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodGet, "/api/instances/"+id+"/state", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET state: %s", resp.String())
	}
	return out, nil
}

func resetInstance(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := doSigned(http.MethodPatch, "/api/instances/"+id+"/reset", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("PATCH reset: %s", resp.String())
	}
	return out, nil
}

func postInstanceEvent(id, file string) (string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	var out struct {
		EventID string `json:"event_id"`
	}
	resp, err := doSigned(http.MethodPost, "/api/instances/"+id+"/events", nil, json.RawMessage(raw), &out)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusAccepted && resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("POST event: %s", resp.String())
	}
	return out.EventID, nil
}

func prettyJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
