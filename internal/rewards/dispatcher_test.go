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

package rewards

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quest-platform/internal/quest"
	"quest-platform/pkg/config"
	pkgerrors "quest-platform/pkg/errors"
	"quest-platform/pkg/log"
	"quest-platform/pkg/signature"
)

type fakeHooks struct {
	hook *quest.RewardHook
	err  error
}

func (f *fakeHooks) GetQuestRewardHook(ctx context.Context, questID string) (*quest.RewardHook, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hook, nil
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	logger, err := log.NewLogger(&log.Config{Level: "error"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return logger
}

func TestDispatcher_ExpandsPlaceholdersAndSendsBearer(t *testing.T) {
	type received struct {
		path   string
		auth   string
		body   map[string]string
		method string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- received{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body, method: r.Method}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	hooks := &fakeHooks{hook: &quest.RewardHook{
		WebhookURL: srv.URL + "/rewards/" + PlaceholderQuestID,
		RequestBody: map[string]string{
			"beneficiary": PlaceholderUserAddress,
			"campaign":    "launch",
		},
	}}
	d := NewDispatcher(hooks, config.RewardsConfig{Timeout: "2s"}, "secret-token", testLogger(t))

	d.Dispatch(context.Background(), "quest-1", "0xplayer")

	r := <-got
	if r.method != http.MethodPost {
		t.Fatalf("expected POST, got %s", r.method)
	}
	if r.path != "/rewards/quest-1" {
		t.Fatalf("quest_id placeholder not expanded: %s", r.path)
	}
	if r.auth != "Bearer secret-token" {
		t.Fatalf("unexpected auth header %q", r.auth)
	}
	if r.body["beneficiary"] != "0xplayer" || r.body["campaign"] != "launch" {
		t.Fatalf("unexpected body %v", r.body)
	}
}

func TestDispatcher_NoHookIsSilentlySkipped(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	hooks := &fakeHooks{err: pkgerrors.Wrapf(pkgerrors.ErrNotFound, "reward hook for quest %s", "quest-1")}
	d := NewDispatcher(hooks, config.RewardsConfig{Timeout: "2s"}, "", testLogger(t))

	d.Dispatch(context.Background(), "quest-1", "0xplayer")
	if calls != 0 {
		t.Fatalf("dispatch without hook must not call webhook, got %d calls", calls)
	}
}

func TestDispatcher_RetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	hooks := &fakeHooks{hook: &quest.RewardHook{WebhookURL: srv.URL}}
	d := NewDispatcher(hooks, config.RewardsConfig{Timeout: "2s", RetryCount: 3, RetryDelay: "10ms"}, "", testLogger(t))

	d.Dispatch(context.Background(), "quest-1", "0xplayer")
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDispatcher_SignsRequestBody(t *testing.T) {
	signer, pub, err := signature.GenerateSigner("webhook-key")
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}

	type received struct {
		sig  string
		body []byte
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{sig: r.Header.Get(HeaderSignature), body: body}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	hooks := &fakeHooks{hook: &quest.RewardHook{
		WebhookURL:  srv.URL,
		RequestBody: map[string]string{"beneficiary": PlaceholderUserAddress},
	}}
	d := NewDispatcher(hooks, config.RewardsConfig{Timeout: "2s"}, "", testLogger(t))
	d.SetSigner(signer)

	d.Dispatch(context.Background(), "quest-1", "0xplayer")

	r := <-got
	if r.sig == "" {
		t.Fatalf("missing %s header", HeaderSignature)
	}
	if id := signature.KeyIDOf(r.sig); id != "webhook-key" {
		t.Fatalf("key id = %q, want webhook-key", id)
	}
	// 签名必须覆盖收到的原始字节
	if !signature.Verify(r.body, r.sig, pub) {
		t.Fatalf("signature does not verify over received body %s", r.body)
	}
	var body map[string]string
	if err := json.Unmarshal(r.body, &body); err != nil {
		t.Fatalf("Unmarshal body: %v", err)
	}
	if body["beneficiary"] != "0xplayer" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDispatcher_NoSignatureWithoutSigner(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get(HeaderSignature)
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	hooks := &fakeHooks{hook: &quest.RewardHook{WebhookURL: srv.URL}}
	d := NewDispatcher(hooks, config.RewardsConfig{Timeout: "2s"}, "", testLogger(t))

	d.Dispatch(context.Background(), "quest-1", "0xplayer")
	if sig := <-got; sig != "" {
		t.Fatalf("unexpected signature header %q", sig)
	}
}

func TestDispatcher_NoAuthHeaderWithoutToken(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": false})
	}))
	defer srv.Close()

	hooks := &fakeHooks{hook: &quest.RewardHook{WebhookURL: srv.URL}}
	d := NewDispatcher(hooks, config.RewardsConfig{Timeout: "2s"}, "", testLogger(t))

	d.Dispatch(context.Background(), "quest-1", "0xplayer")
	if auth := <-got; auth != "" {
		t.Fatalf("unexpected auth header %q", auth)
	}
}
