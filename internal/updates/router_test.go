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

package updates

import (
	"testing"

	"quest-platform/internal/quest"
)

func TestRouter_FiltersByAddress(t *testing.T) {
	r := NewRouter("0xAlice", []string{"inst-1"})

	mine := &quest.UserUpdate{
		UserAddress: "0xalice",
		State:       &quest.QuestStateUpdate{InstanceID: "inst-1"},
	}
	if !r.Allow(mine) {
		t.Fatalf("update for own instance should pass")
	}

	other := &quest.UserUpdate{
		UserAddress: "0xbob",
		State:       &quest.QuestStateUpdate{InstanceID: "inst-1"},
	}
	if r.Allow(other) {
		t.Fatalf("update for another address must be filtered")
	}
}

func TestRouter_FiltersByInstanceSet(t *testing.T) {
	r := NewRouter("0xalice", []string{"inst-1"})

	unknown := &quest.UserUpdate{
		UserAddress: "0xalice",
		State:       &quest.QuestStateUpdate{InstanceID: "inst-other"},
	}
	if r.Allow(unknown) {
		t.Fatalf("update for an instance outside the set must be filtered")
	}

	completed := &quest.UserUpdate{
		UserAddress: "0xalice",
		Completed:   &quest.QuestCompleted{InstanceID: "inst-1"},
	}
	if !r.Allow(completed) {
		t.Fatalf("completion for a member instance should pass")
	}
}

func TestRouter_StartedAddsInstanceLive(t *testing.T) {
	r := NewRouter("0xalice", nil)

	started := &quest.UserUpdate{
		UserAddress: "0xalice",
		Started: &quest.NewQuestStarted{
			Instance: quest.Instance{ID: "inst-new", QuestID: "q-1", UserAddress: "0xalice"},
		},
	}
	if !r.Allow(started) {
		t.Fatalf("started update should pass")
	}

	follow := &quest.UserUpdate{
		UserAddress: "0xalice",
		State:       &quest.QuestStateUpdate{InstanceID: "inst-new"},
	}
	if !r.Allow(follow) {
		t.Fatalf("instance announced by started update should now be a member")
	}
}

func TestRouter_IgnoredPassesByAddress(t *testing.T) {
	r := NewRouter("0xalice", nil)

	ignored := &quest.UserUpdate{
		UserAddress: "0xalice",
		Ignored:     &quest.EventIgnored{EventID: "ev-1", Reason: "no active quest instances"},
	}
	if !r.Allow(ignored) {
		t.Fatalf("ignored update for own address should pass")
	}
	if r.Allow(&quest.UserUpdate{UserAddress: "0xalice"}) {
		t.Fatalf("update with no payload must be filtered")
	}
}

func TestRouter_Drop(t *testing.T) {
	r := NewRouter("0xalice", []string{"inst-1"})
	r.Drop("inst-1")

	u := &quest.UserUpdate{
		UserAddress: "0xalice",
		State:       &quest.QuestStateUpdate{InstanceID: "inst-1"},
	}
	if r.Allow(u) {
		t.Fatalf("dropped instance must not be forwarded")
	}
}
