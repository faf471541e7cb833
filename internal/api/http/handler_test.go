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

package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	appcore "quest-platform/internal/app"
	"quest-platform/internal/api/http/middleware"
	"quest-platform/internal/quest"
	"quest-platform/internal/store"
	"quest-platform/internal/updates"
	"quest-platform/pkg/auth"
	"quest-platform/pkg/log"
)

type jsonCodec struct{}

func (jsonCodec) EncodeDefinition(d *quest.Definition) ([]byte, error) { return json.Marshal(d) }

func (jsonCodec) DecodeDefinition(data []byte) (*quest.Definition, error) {
	var d quest.Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (jsonCodec) DecodeEvent(data []byte) (*quest.Event, error) {
	var ev quest.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (jsonCodec) EncodeUserUpdate(u *quest.UserUpdate) ([]byte, error) { return json.Marshal(u) }

type sentEvent struct {
	address string
	action  *quest.Action
}

type recordingSender struct {
	mu    sync.Mutex
	sends []sentEvent
}

func (r *recordingSender) Send(ctx context.Context, address string, action *quest.Action) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, sentEvent{address: quest.NormalizeAddress(address), action: action})
	return uuid.NewString(), nil
}

func (r *recordingSender) all() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentEvent(nil), r.sends...)
}

func newKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key, auth.NormalizeAddress(crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func signPersonal(t *testing.T, key *ecdsa.PrivateKey, payload string) string {
	t.Helper()
	sig, err := crypto.Sign(auth.PersonalSignHash([]byte(payload)), key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return hexutil.Encode(sig)
}

// signedHeaders 构造一次签名请求的认证头，path 为不含查询串的具体路径
func signedHeaders(t *testing.T, key *ecdsa.PrivateKey, addr, method, path string) []ut.Header {
	t.Helper()
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	payload := auth.SignedFetchPayload(method, path, ts, "")

	signer, err := json.Marshal(auth.ChainLink{Type: auth.LinkSigner, Payload: addr})
	if err != nil {
		t.Fatalf("marshal signer link: %v", err)
	}
	entity, err := json.Marshal(auth.ChainLink{
		Type:      auth.LinkSignedEntity,
		Payload:   payload,
		Signature: signPersonal(t, key, payload),
	})
	if err != nil {
		t.Fatalf("marshal entity link: %v", err)
	}
	return []ut.Header{
		{Key: auth.HeaderTimestamp, Value: ts},
		{Key: auth.HeaderChainPrefix + "0", Value: string(signer)},
		{Key: auth.HeaderChainPrefix + "1", Value: string(entity)},
	}
}

type fixture struct {
	store  *store.MemoryStore
	sender *recordingSender
	svc    appcore.QuestService
	hz     *server.Hertz
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	bus := updates.NewMemoryBus()
	sender := &recordingSender{}
	logger, err := log.NewLogger(&log.Config{Level: "error"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	svc := appcore.NewQuestService(st, jsonCodec{}, bus, sender, logger)

	hz := server.Default(server.WithHostPorts(":0"))
	NewRouter(NewHandler(svc), middleware.NewSignedFetch(), opts).Register(hz)
	return &fixture{store: st, sender: sender, svc: svc, hz: hz}
}

func (f *fixture) do(t *testing.T, method, url string, body []byte, headers ...ut.Header) *protocol.Response {
	t.Helper()
	w := ut.PerformRequest(f.hz.Engine, method, url,
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)}, headers...)
	return w.Result()
}

func locationAction(x, y string) *quest.Action {
	return &quest.Action{Type: quest.ActionLocation, Parameters: map[string]string{"x": x, "y": y}}
}

// A -> B 两步模板
func twoStepQuest(name string) *quest.Quest {
	return &quest.Quest{
		Name: name,
		Definition: quest.Definition{
			Steps: []quest.Step{
				{ID: "A", Tasks: []quest.Task{{ID: "A_task", ActionItems: []quest.Action{*locationAction("10", "20")}}}},
				{ID: "B", Tasks: []quest.Task{{ID: "B_task", ActionItems: []quest.Action{*locationAction("13", "20")}}}},
			},
			Connections: []quest.Connection{{StepFrom: "A", StepTo: "B"}},
		},
	}
}

// createQuest 走 HTTP 创建模板并返回新 id
func createQuest(t *testing.T, f *fixture, key *ecdsa.PrivateKey, addr string, reward *quest.Reward) string {
	t.Helper()
	body, err := json.Marshal(createQuestRequest{Quest: *twoStepQuest("find the dino"), Reward: reward})
	if err != nil {
		t.Fatalf("marshal quest: %v", err)
	}
	resp := f.do(t, "POST", "/api/quests", body, signedHeaders(t, key, addr, "POST", "/api/quests")...)
	if resp.StatusCode() != 201 {
		t.Fatalf("CreateQuest status: got %d, body %s", resp.StatusCode(), resp.Body())
	}
	var created map[string]string
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created["id"] == "" {
		t.Fatalf("create response missing id: %s", resp.Body())
	}
	return created["id"]
}

func TestHealthLive(t *testing.T) {
	f := newFixture(t, Options{})
	resp := f.do(t, "GET", "/health/live", nil)
	if resp.StatusCode() != 200 {
		t.Errorf("health status: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte("ok")) {
		t.Errorf("health body: %s", resp.Body())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, Options{MetricsToken: "metrics-secret"})

	if resp := f.do(t, "GET", "/metrics", nil); resp.StatusCode() != 401 {
		t.Errorf("metrics without token: got %d, want 401", resp.StatusCode())
	}
	if resp := f.do(t, "GET", "/metrics?bearer_token=wrong", nil); resp.StatusCode() != 401 {
		t.Errorf("metrics wrong token: got %d, want 401", resp.StatusCode())
	}

	resp := f.do(t, "GET", "/metrics?bearer_token=metrics-secret", nil)
	if resp.StatusCode() != 200 {
		t.Fatalf("metrics status: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte("quests_ws_sessions")) {
		t.Errorf("metrics body missing gauge: %s", resp.Body())
	}
}

func TestMetricsDisabledWithoutToken(t *testing.T) {
	f := newFixture(t, Options{})
	if resp := f.do(t, "GET", "/metrics?bearer_token=", nil); resp.StatusCode() != 401 {
		t.Errorf("metrics with empty configured token: got %d, want 401", resp.StatusCode())
	}
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t, Options{})

	if resp := f.do(t, "GET", "/api/quests", nil); resp.StatusCode() != 401 {
		t.Errorf("no headers: got %d, want 401", resp.StatusCode())
	}

	// 错误路径签名：对 /api/quests 的签名拿去请求别的路径
	key, addr := newKey(t)
	headers := signedHeaders(t, key, addr, "GET", "/api/quests")
	if resp := f.do(t, "PUT", "/events", []byte(`{}`), headers...); resp.StatusCode() != 401 {
		t.Errorf("wrong path signature: got %d, want 401", resp.StatusCode())
	}

	// 过期时间戳
	ts := strconv.FormatInt(time.Now().Add(-time.Hour).UnixMilli(), 10)
	payload := auth.SignedFetchPayload("GET", "/api/quests", ts, "")
	signer, _ := json.Marshal(auth.ChainLink{Type: auth.LinkSigner, Payload: addr})
	entity, _ := json.Marshal(auth.ChainLink{
		Type: auth.LinkSignedEntity, Payload: payload, Signature: signPersonal(t, key, payload),
	})
	stale := []ut.Header{
		{Key: auth.HeaderTimestamp, Value: ts},
		{Key: auth.HeaderChainPrefix + "0", Value: string(signer)},
		{Key: auth.HeaderChainPrefix + "1", Value: string(entity)},
	}
	if resp := f.do(t, "GET", "/api/quests", nil, stale...); resp.StatusCode() != 401 {
		t.Errorf("stale timestamp: got %d, want 401", resp.StatusCode())
	}
}

func TestCreateAndGetQuest(t *testing.T) {
	f := newFixture(t, Options{})
	creatorKey, creatorAddr := newKey(t)
	otherKey, otherAddr := newKey(t)

	id := createQuest(t, f, creatorKey, creatorAddr, nil)

	path := "/api/quests/" + id
	resp := f.do(t, "GET", path, nil, signedHeaders(t, creatorKey, creatorAddr, "GET", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("GetQuest creator status: got %d, body %s", resp.StatusCode(), resp.Body())
	}
	if !bytes.Contains(resp.Body(), []byte(`"definition"`)) {
		t.Errorf("creator should see definition: %s", resp.Body())
	}
	if !bytes.Contains(resp.Body(), []byte(creatorAddr)) {
		t.Errorf("quest body missing creator address: %s", resp.Body())
	}

	resp = f.do(t, "GET", path, nil, signedHeaders(t, otherKey, otherAddr, "GET", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("GetQuest other status: got %d", resp.StatusCode())
	}
	if bytes.Contains(resp.Body(), []byte(`"definition"`)) {
		t.Errorf("non-creator must not see definition: %s", resp.Body())
	}

	// 列表同样只对创建者展示定义
	resp = f.do(t, "GET", "/api/quests?offset=0&limit=10", nil,
		signedHeaders(t, otherKey, otherAddr, "GET", "/api/quests")...)
	if resp.StatusCode() != 200 {
		t.Fatalf("ListQuests status: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte(id)) {
		t.Errorf("list missing quest: %s", resp.Body())
	}
	if bytes.Contains(resp.Body(), []byte(`"definition"`)) {
		t.Errorf("list leaked definition to non-creator: %s", resp.Body())
	}

	missing := "/api/quests/" + uuid.NewString()
	if resp := f.do(t, "GET", missing, nil, signedHeaders(t, otherKey, otherAddr, "GET", missing)...); resp.StatusCode() != 404 {
		t.Errorf("missing quest: got %d, want 404", resp.StatusCode())
	}
	bad := "/api/quests/not-a-uuid"
	if resp := f.do(t, "GET", bad, nil, signedHeaders(t, otherKey, otherAddr, "GET", bad)...); resp.StatusCode() != 400 {
		t.Errorf("bad uuid: got %d, want 400", resp.StatusCode())
	}
}

func TestCreateQuest_InvalidDefinition(t *testing.T) {
	f := newFixture(t, Options{})
	key, addr := newKey(t)

	body, _ := json.Marshal(quest.Quest{Name: "empty"})
	resp := f.do(t, "POST", "/api/quests", body, signedHeaders(t, key, addr, "POST", "/api/quests")...)
	if resp.StatusCode() != 400 {
		t.Errorf("invalid definition: got %d, want 400", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte("validation")) {
		t.Errorf("expected validation detail: %s", resp.Body())
	}
}

func TestUpdateAndLifecycle(t *testing.T) {
	f := newFixture(t, Options{})
	creatorKey, creatorAddr := newKey(t)
	strangerKey, strangerAddr := newKey(t)
	ctx := context.Background()

	id := createQuest(t, f, creatorKey, creatorAddr, nil)
	path := "/api/quests/" + id
	body, _ := json.Marshal(twoStepQuest("find the dino v2"))

	if resp := f.do(t, "PUT", path, body, signedHeaders(t, strangerKey, strangerAddr, "PUT", path)...); resp.StatusCode() != 403 {
		t.Errorf("stranger update: got %d, want 403", resp.StatusCode())
	}

	resp := f.do(t, "PUT", path, body, signedHeaders(t, creatorKey, creatorAddr, "PUT", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("update status: got %d, body %s", resp.StatusCode(), resp.Body())
	}
	var updated map[string]string
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	newID := updated["id"]
	if newID == "" || newID == id {
		t.Fatalf("update must return a fresh id, got %q", newID)
	}

	// 旧版本已停用，重新激活被状态机拒绝
	if resp := f.do(t, "PUT", path+"/activate", nil, signedHeaders(t, creatorKey, creatorAddr, "PUT", path+"/activate")...); resp.StatusCode() != 409 {
		t.Errorf("activate updated quest: got %d, want 409", resp.StatusCode())
	}

	newPath := "/api/quests/" + newID
	if resp := f.do(t, "DELETE", newPath, nil, signedHeaders(t, strangerKey, strangerAddr, "DELETE", newPath)...); resp.StatusCode() != 403 {
		t.Errorf("stranger deactivate: got %d, want 403", resp.StatusCode())
	}
	if resp := f.do(t, "DELETE", newPath, nil, signedHeaders(t, creatorKey, creatorAddr, "DELETE", newPath)...); resp.StatusCode() != 200 {
		t.Errorf("deactivate: got %d, want 200", resp.StatusCode())
	}

	q, err := f.svc.GetQuest(ctx, newID)
	if err != nil {
		t.Fatalf("GetQuest: %v", err)
	}
	if q.Active {
		t.Errorf("quest should be deactivated")
	}

	if resp := f.do(t, "PUT", newPath+"/activate", nil, signedHeaders(t, creatorKey, creatorAddr, "PUT", newPath+"/activate")...); resp.StatusCode() != 200 {
		t.Errorf("reactivate: got %d, want 200", resp.StatusCode())
	}

	// 创建者视角的详情带版本链
	resp = f.do(t, "GET", newPath, nil, signedHeaders(t, creatorKey, creatorAddr, "GET", newPath)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("GetQuest status: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte(`"old_versions"`)) || !bytes.Contains(resp.Body(), []byte(id)) {
		t.Errorf("creator detail missing version chain: %s", resp.Body())
	}
}

func TestQuestStats(t *testing.T) {
	f := newFixture(t, Options{})
	creatorKey, creatorAddr := newKey(t)
	strangerKey, strangerAddr := newKey(t)
	ctx := context.Background()

	id := createQuest(t, f, creatorKey, creatorAddr, nil)
	if _, err := f.svc.StartQuest(ctx, id, "0xplayer"); err != nil {
		t.Fatalf("StartQuest: %v", err)
	}

	path := "/api/quests/" + id + "/stats"
	if resp := f.do(t, "GET", path, nil, signedHeaders(t, strangerKey, strangerAddr, "GET", path)...); resp.StatusCode() != 403 {
		t.Errorf("stranger stats: got %d, want 403", resp.StatusCode())
	}

	resp := f.do(t, "GET", path, nil, signedHeaders(t, creatorKey, creatorAddr, "GET", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("stats status: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte(`"active_players":1`)) {
		t.Errorf("stats body: %s", resp.Body())
	}
}

func TestInstanceRoutes(t *testing.T) {
	f := newFixture(t, Options{})
	creatorKey, creatorAddr := newKey(t)
	playerKey, playerAddr := newKey(t)
	strangerKey, strangerAddr := newKey(t)
	ctx := context.Background()

	id := createQuest(t, f, creatorKey, creatorAddr, nil)
	view, err := f.svc.StartQuest(ctx, id, playerAddr)
	if err != nil {
		t.Fatalf("StartQuest: %v", err)
	}
	instanceID := view.Instance.ID
	base := "/api/instances/" + instanceID

	for name, who := range map[string]struct {
		key  *ecdsa.PrivateKey
		addr string
	}{"player": {playerKey, playerAddr}, "creator": {creatorKey, creatorAddr}} {
		resp := f.do(t, "GET", base, nil, signedHeaders(t, who.key, who.addr, "GET", base)...)
		if resp.StatusCode() != 200 {
			t.Fatalf("GetInstance %s: got %d", name, resp.StatusCode())
		}
		if !bytes.Contains(resp.Body(), []byte(`"steps_left":2`)) {
			t.Errorf("GetInstance %s state: %s", name, resp.Body())
		}
	}
	if resp := f.do(t, "GET", base, nil, signedHeaders(t, strangerKey, strangerAddr, "GET", base)...); resp.StatusCode() != 403 {
		t.Errorf("stranger GetInstance: got %d, want 403", resp.StatusCode())
	}

	statePath := base + "/state"
	resp := f.do(t, "GET", statePath, nil, signedHeaders(t, playerKey, playerAddr, "GET", statePath)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("GetInstanceState: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte(`"current_steps"`)) {
		t.Errorf("state body: %s", resp.Body())
	}

	// 代发事件是创建者的运营操作
	eventsPath := base + "/events"
	eventBody, _ := json.Marshal(eventRequest{Action: locationAction("10", "20")})
	if resp := f.do(t, "POST", eventsPath, eventBody, signedHeaders(t, playerKey, playerAddr, "POST", eventsPath)...); resp.StatusCode() != 403 {
		t.Errorf("player PostInstanceEvent: got %d, want 403", resp.StatusCode())
	}
	resp = f.do(t, "POST", eventsPath, eventBody, signedHeaders(t, creatorKey, creatorAddr, "POST", eventsPath)...)
	if resp.StatusCode() != 202 {
		t.Fatalf("creator PostInstanceEvent: got %d, body %s", resp.StatusCode(), resp.Body())
	}
	sends := f.sender.all()
	if len(sends) != 1 || sends[0].address != playerAddr {
		t.Errorf("event should be enqueued for the instance owner, got %+v", sends)
	}

	// 删除事件并清除完成标记
	eventID := uuid.NewString()
	payload, _ := json.Marshal(&quest.Event{ID: eventID, Address: playerAddr, Action: locationAction("10", "20")})
	if err := f.store.AddEvent(ctx, &store.Event{
		ID: eventID, UserAddress: playerAddr, Payload: payload, InstanceID: instanceID, Timestamp: 1000,
	}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	deletePath := eventsPath + "/" + eventID
	if resp := f.do(t, "DELETE", deletePath, nil, signedHeaders(t, playerKey, playerAddr, "DELETE", deletePath)...); resp.StatusCode() != 403 {
		t.Errorf("player DeleteInstanceEvent: got %d, want 403", resp.StatusCode())
	}
	if resp := f.do(t, "DELETE", deletePath, nil, signedHeaders(t, creatorKey, creatorAddr, "DELETE", deletePath)...); resp.StatusCode() != 200 {
		t.Errorf("creator DeleteInstanceEvent: got %d, want 200", resp.StatusCode())
	}
	events, err := f.store.GetEvents(ctx, instanceID)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("event should be removed, got %d", len(events))
	}

	resetPath := base + "/reset"
	if resp := f.do(t, "PATCH", resetPath, nil, signedHeaders(t, playerKey, playerAddr, "PATCH", resetPath)...); resp.StatusCode() != 403 {
		t.Errorf("player ResetInstance: got %d, want 403", resp.StatusCode())
	}
	resp = f.do(t, "PATCH", resetPath, nil, signedHeaders(t, creatorKey, creatorAddr, "PATCH", resetPath)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("creator ResetInstance: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte(`"steps_left":2`)) {
		t.Errorf("reset should return the initial state: %s", resp.Body())
	}
}

func TestPutEvents(t *testing.T) {
	f := newFixture(t, Options{})
	key, addr := newKey(t)

	body, _ := json.Marshal(eventRequest{Action: locationAction("10", "20")})
	resp := f.do(t, "PUT", "/events", body, signedHeaders(t, key, addr, "PUT", "/events")...)
	if resp.StatusCode() != 202 {
		t.Fatalf("PutEvent status: got %d, body %s", resp.StatusCode(), resp.Body())
	}
	if !bytes.Contains(resp.Body(), []byte("event_id")) {
		t.Errorf("PutEvent body: %s", resp.Body())
	}

	// 可信生产方可替他人入队
	body, _ = json.Marshal(eventRequest{Address: "0xSomeoneElse", Action: locationAction("10", "20")})
	if resp := f.do(t, "PUT", "/events", body, signedHeaders(t, key, addr, "PUT", "/events")...); resp.StatusCode() != 202 {
		t.Fatalf("PutEvent for other: got %d", resp.StatusCode())
	}

	sends := f.sender.all()
	if len(sends) != 2 {
		t.Fatalf("sends: got %d, want 2", len(sends))
	}
	if sends[0].address != addr {
		t.Errorf("default address: got %s, want caller %s", sends[0].address, addr)
	}
	if sends[1].address != "0xsomeoneelse" {
		t.Errorf("explicit address: got %s", sends[1].address)
	}
}

func TestEventRateLimit(t *testing.T) {
	f := newFixture(t, Options{EventRPS: 0.001, EventBurst: 1})
	key, addr := newKey(t)
	body, _ := json.Marshal(eventRequest{Action: locationAction("10", "20")})

	if resp := f.do(t, "PUT", "/events", body, signedHeaders(t, key, addr, "PUT", "/events")...); resp.StatusCode() != 202 {
		t.Fatalf("first event: got %d", resp.StatusCode())
	}
	if resp := f.do(t, "PUT", "/events", body, signedHeaders(t, key, addr, "PUT", "/events")...); resp.StatusCode() != 429 {
		t.Errorf("second event: got %d, want 429", resp.StatusCode())
	}
}

func TestRewardRoutes(t *testing.T) {
	f := newFixture(t, Options{})
	creatorKey, creatorAddr := newKey(t)
	playerKey, playerAddr := newKey(t)

	reward := &quest.Reward{
		Hook:  &quest.RewardHook{WebhookURL: "https://hooks.example/quest", RequestBody: map[string]string{"user": "{user_address}"}},
		Items: []quest.RewardItem{{Name: "dino egg", ImageURL: "https://img.example/egg.png"}},
	}
	id := createQuest(t, f, creatorKey, creatorAddr, reward)
	path := "/api/quests/" + id + "/reward"

	resp := f.do(t, "GET", path+"?with_hook=true", nil, signedHeaders(t, creatorKey, creatorAddr, "GET", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("creator reward: got %d", resp.StatusCode())
	}
	if !bytes.Contains(resp.Body(), []byte("webhook_url")) || !bytes.Contains(resp.Body(), []byte("dino egg")) {
		t.Errorf("creator reward body: %s", resp.Body())
	}

	// 不带 with_hook 时即便是创建者也不回传 Webhook
	resp = f.do(t, "GET", path, nil, signedHeaders(t, creatorKey, creatorAddr, "GET", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("creator reward no hook: got %d", resp.StatusCode())
	}
	if bytes.Contains(resp.Body(), []byte("webhook_url")) {
		t.Errorf("hook returned without with_hook: %s", resp.Body())
	}

	resp = f.do(t, "GET", path+"?with_hook=true", nil, signedHeaders(t, playerKey, playerAddr, "GET", path)...)
	if resp.StatusCode() != 200 {
		t.Fatalf("player reward: got %d", resp.StatusCode())
	}
	if bytes.Contains(resp.Body(), []byte("webhook_url")) {
		t.Errorf("hook leaked to non-creator: %s", resp.Body())
	}
	if !bytes.Contains(resp.Body(), []byte("dino egg")) {
		t.Errorf("items are public: %s", resp.Body())
	}

	bare := createQuest(t, f, creatorKey, creatorAddr, nil)
	barePath := "/api/quests/" + bare + "/reward"
	if resp := f.do(t, "GET", barePath, nil, signedHeaders(t, playerKey, playerAddr, "GET", barePath)...); resp.StatusCode() != 404 {
		t.Errorf("reward of rewardless quest: got %d, want 404", resp.StatusCode())
	}
}
