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

package store

import (
	"context"
	"errors"
	"testing"

	"quest-platform/internal/quest"
	pkgerrors "quest-platform/pkg/errors"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PGStore)(nil)

func newQuest(name, creator string) *Quest {
	return &Quest{
		Name:           name,
		Description:    "test quest",
		Definition:     []byte("definition-bytes"),
		CreatorAddress: creator,
	}
}

func TestMemoryStore_CreateAndGetQuest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.CreateQuest(ctx, newQuest("treasure hunt", "0xABCDEF0123456789"))
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if id == "" {
		t.Fatal("CreateQuest returned empty id")
	}

	got, err := s.GetQuest(ctx, id)
	if err != nil {
		t.Fatalf("GetQuest: %v", err)
	}
	if got.Name != "treasure hunt" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	if got.CreatorAddress != "0xabcdef0123456789" {
		t.Fatalf("creator address not normalized: %q", got.CreatorAddress)
	}
	if !got.Active {
		t.Fatal("new quest should be active")
	}
	if got.CreatedAt == 0 {
		t.Fatal("created_at not set")
	}

	if _, err := s.GetQuest(ctx, "missing"); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_ActiveQuestLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))

	if active, _ := s.IsActiveQuest(ctx, id); !active {
		t.Fatal("quest should start active")
	}
	if err := s.DeactivateQuest(ctx, id); err != nil {
		t.Fatalf("DeactivateQuest: %v", err)
	}
	if active, _ := s.IsActiveQuest(ctx, id); active {
		t.Fatal("quest should be deactivated")
	}
	if can, _ := s.CanActivateQuest(ctx, id); !can {
		t.Fatal("deactivated quest with no newer version should be activable")
	}
	if err := s.ActivateQuest(ctx, id); err != nil {
		t.Fatalf("ActivateQuest: %v", err)
	}
	if active, _ := s.IsActiveQuest(ctx, id); !active {
		t.Fatal("quest should be active again")
	}

	quests, err := s.GetActiveQuests(ctx, 0, 50)
	if err != nil {
		t.Fatalf("GetActiveQuests: %v", err)
	}
	if len(quests) != 1 {
		t.Fatalf("expected 1 active quest, got %d", len(quests))
	}
}

func TestMemoryStore_UpdateQuest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	prevID, _ := s.CreateQuest(ctx, newQuest("v1", "0xAA"))

	if _, err := s.UpdateQuest(ctx, prevID, newQuest("v2", ""), "0xbb"); !errors.Is(err, quest.ErrNotQuestCreator) {
		t.Fatalf("expected ErrNotQuestCreator, got %v", err)
	}
	if _, err := s.UpdateQuest(ctx, "missing", newQuest("v2", ""), "0xaa"); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	newID, err := s.UpdateQuest(ctx, prevID, newQuest("v2", ""), "0xAa")
	if err != nil {
		t.Fatalf("UpdateQuest: %v", err)
	}

	if active, _ := s.IsActiveQuest(ctx, prevID); active {
		t.Fatal("previous version should be deactivated")
	}
	if active, _ := s.IsActiveQuest(ctx, newID); !active {
		t.Fatal("new version should be active")
	}
	if can, _ := s.CanActivateQuest(ctx, prevID); can {
		t.Fatal("superseded quest must not be activable")
	}

	versions, err := s.GetOldQuestVersions(ctx, newID)
	if err != nil {
		t.Fatalf("GetOldQuestVersions: %v", err)
	}
	if len(versions) != 1 || versions[0] != prevID {
		t.Fatalf("unexpected versions %v", versions)
	}

	updated, _ := s.GetQuest(ctx, newID)
	if updated.CreatorAddress != "0xaa" {
		t.Fatalf("new version should keep the creator, got %q", updated.CreatorAddress)
	}
}

func TestMemoryStore_IsUpdatable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))

	if ok, err := s.IsUpdatable(ctx, id); err != nil || !ok {
		t.Fatalf("fresh quest should be updatable: %v %v", ok, err)
	}
	if _, err := s.StartQuest(ctx, id, "0xuser"); err != nil {
		t.Fatalf("StartQuest: %v", err)
	}
	if ok, _ := s.IsUpdatable(ctx, id); ok {
		t.Fatal("quest with instances must not be updatable")
	}
	if _, err := s.IsUpdatable(ctx, "missing"); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_InstanceLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	questID, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))
	instID, err := s.StartQuest(ctx, questID, "0xUser")
	if err != nil {
		t.Fatalf("StartQuest: %v", err)
	}

	inst, err := s.GetQuestInstance(ctx, instID)
	if err != nil {
		t.Fatalf("GetQuestInstance: %v", err)
	}
	if inst.QuestID != questID || inst.UserAddress != "0xuser" {
		t.Fatalf("unexpected instance %+v", inst)
	}
	if inst.StartTimestamp == 0 {
		t.Fatal("start timestamp not set")
	}

	if active, _ := s.IsActiveQuestInstance(ctx, instID); !active {
		t.Fatal("new instance should be active")
	}
	mine, _ := s.GetActiveUserQuestInstances(ctx, "0xUSER")
	if len(mine) != 1 {
		t.Fatalf("expected 1 active instance, got %d", len(mine))
	}

	if err := s.AbandonQuestInstance(ctx, instID); err != nil {
		t.Fatalf("AbandonQuestInstance: %v", err)
	}
	if active, _ := s.IsActiveQuestInstance(ctx, instID); active {
		t.Fatal("abandoned instance must not be active")
	}
	mine, _ = s.GetActiveUserQuestInstances(ctx, "0xuser")
	if len(mine) != 0 {
		t.Fatalf("abandoned instance still listed: %v", mine)
	}

	if _, err := s.StartQuest(ctx, "missing", "0xuser"); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_CompleteAndReset(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	questID, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))
	instID, _ := s.StartQuest(ctx, questID, "0xuser")

	if err := s.AddEvent(ctx, &Event{ID: "ev-1", UserAddress: "0xuser", Payload: []byte("a"), InstanceID: instID, Timestamp: 100}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if err := s.CompleteQuestInstance(ctx, instID); err != nil {
		t.Fatalf("CompleteQuestInstance: %v", err)
	}
	if completed, _ := s.IsCompletedInstance(ctx, instID); !completed {
		t.Fatal("instance should be completed")
	}
	if active, _ := s.IsActiveQuestInstance(ctx, instID); active {
		t.Fatal("completed instance must not be active")
	}

	// 重置：清空事件并撤销完成标记后实例重新激活
	if err := s.RemoveEventsForInstance(ctx, instID); err != nil {
		t.Fatalf("RemoveEventsForInstance: %v", err)
	}
	if err := s.RemoveInstanceFromCompletedInstances(ctx, instID); err != nil {
		t.Fatalf("RemoveInstanceFromCompletedInstances: %v", err)
	}
	if active, _ := s.IsActiveQuestInstance(ctx, instID); !active {
		t.Fatal("reset instance should be active again")
	}
	events, _ := s.GetEvents(ctx, instID)
	if len(events) != 0 {
		t.Fatalf("reset instance should have no events, got %d", len(events))
	}
}

func TestMemoryStore_AddEventIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	questID, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))
	instID, _ := s.StartQuest(ctx, questID, "0xuser")

	ev := &Event{ID: "ev-1", UserAddress: "0xUser", Payload: []byte("a"), InstanceID: instID, Timestamp: 200}
	if err := s.AddEvent(ctx, ev); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if err := s.AddEvent(ctx, ev); err != nil {
		t.Fatalf("AddEvent repeat: %v", err)
	}
	if err := s.AddEvent(ctx, &Event{ID: "ev-0", UserAddress: "0xuser", Payload: []byte("b"), InstanceID: instID, Timestamp: 100}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	events, err := s.GetEvents(ctx, instID)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events after duplicate insert, got %d", len(events))
	}
	if events[0].ID != "ev-0" || events[1].ID != "ev-1" {
		t.Fatalf("events not ordered by timestamp: %v %v", events[0].ID, events[1].ID)
	}
	if events[1].UserAddress != "0xuser" {
		t.Fatalf("event address not normalized: %q", events[1].UserAddress)
	}

	if err := s.RemoveEvent(ctx, "ev-0"); err != nil {
		t.Fatalf("RemoveEvent: %v", err)
	}
	events, _ = s.GetEvents(ctx, instID)
	if len(events) != 1 || events[0].ID != "ev-1" {
		t.Fatalf("unexpected events after remove: %v", events)
	}
}

func TestMemoryStore_SameEventAcrossInstances(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	q1, _ := s.CreateQuest(ctx, newQuest("q1", "0xaa"))
	q2, _ := s.CreateQuest(ctx, newQuest("q2", "0xaa"))
	i1, _ := s.StartQuest(ctx, q1, "0xuser")
	i2, _ := s.StartQuest(ctx, q2, "0xuser")

	// 同一事件推进两个实例时，两个实例各记一行
	for _, inst := range []string{i1, i2} {
		if err := s.AddEvent(ctx, &Event{ID: "ev-1", UserAddress: "0xuser", Payload: []byte("a"), InstanceID: inst, Timestamp: 100}); err != nil {
			t.Fatalf("AddEvent(%s): %v", inst, err)
		}
	}

	e1, _ := s.GetEvents(ctx, i1)
	e2, _ := s.GetEvents(ctx, i2)
	if len(e1) != 1 || len(e2) != 1 {
		t.Fatalf("expected the event on both instances, got %d/%d", len(e1), len(e2))
	}

	if err := s.RemoveEvent(ctx, "ev-1"); err != nil {
		t.Fatalf("RemoveEvent: %v", err)
	}
	e1, _ = s.GetEvents(ctx, i1)
	e2, _ = s.GetEvents(ctx, i2)
	if len(e1) != 0 || len(e2) != 0 {
		t.Fatalf("RemoveEvent should drop all copies, got %d/%d", len(e1), len(e2))
	}
}

func TestMemoryStore_Rewards(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	questID, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))

	if _, err := s.GetQuestRewardHook(ctx, questID); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found for missing hook, got %v", err)
	}

	hook := &quest.RewardHook{
		WebhookURL:  "https://rewards.example.com/{quest_id}",
		RequestBody: map[string]string{"beneficiary": "{user_address}"},
	}
	if err := s.AddRewardHookToQuest(ctx, questID, hook); err != nil {
		t.Fatalf("AddRewardHookToQuest: %v", err)
	}
	got, err := s.GetQuestRewardHook(ctx, questID)
	if err != nil {
		t.Fatalf("GetQuestRewardHook: %v", err)
	}
	if got.WebhookURL != hook.WebhookURL || got.RequestBody["beneficiary"] != "{user_address}" {
		t.Fatalf("unexpected hook %+v", got)
	}

	items := []quest.RewardItem{
		{Name: "sword", ImageURL: "https://img/sword.png"},
		{Name: "amulet", ImageURL: "https://img/amulet.png"},
	}
	if err := s.AddRewardItemsToQuest(ctx, questID, items); err != nil {
		t.Fatalf("AddRewardItemsToQuest: %v", err)
	}
	gotItems, err := s.GetQuestRewardItems(ctx, questID)
	if err != nil {
		t.Fatalf("GetQuestRewardItems: %v", err)
	}
	if len(gotItems) != 2 || gotItems[0].Name != "amulet" || gotItems[1].Name != "sword" {
		t.Fatalf("unexpected items %v", gotItems)
	}

	if err := s.AddRewardHookToQuest(ctx, "missing", hook); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_IsQuestCreator(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	questID, _ := s.CreateQuest(ctx, newQuest("q", "0xAA"))

	if ok, _ := s.IsQuestCreator(ctx, questID, "0xaa"); !ok {
		t.Fatal("creator check should be case-insensitive")
	}
	if ok, _ := s.IsQuestCreator(ctx, questID, "0xbb"); ok {
		t.Fatal("non-creator reported as creator")
	}
	if ok, _ := s.IsQuestCreator(ctx, "missing", "0xaa"); ok {
		t.Fatal("missing quest reported as owned")
	}
}

func TestMemoryStore_QuestStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	questID, _ := s.CreateQuest(ctx, newQuest("q", "0xaa"))

	i1, _ := s.StartQuest(ctx, questID, "0xplayer1")
	i2, _ := s.StartQuest(ctx, questID, "0xplayer2")
	i3, _ := s.StartQuest(ctx, questID, "0xplayer3")
	_, _ = s.StartQuest(ctx, questID, "0xplayer1")

	_ = s.AbandonQuestInstance(ctx, i2)
	_ = s.CompleteQuestInstance(ctx, i3)

	stats, err := s.GetQuestStats(ctx, questID)
	if err != nil {
		t.Fatalf("GetQuestStats: %v", err)
	}
	if stats.ActivePlayers != 1 {
		t.Fatalf("expected 1 distinct active player, got %d", stats.ActivePlayers)
	}
	if stats.Abandoned != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected abandoned/completed %d/%d", stats.Abandoned, stats.Completed)
	}
	if stats.StartedLast24h != 4 {
		t.Fatalf("expected 4 instances in the last 24h, got %d", stats.StartedLast24h)
	}

	count, _ := s.CountActiveQuestInstancesByQuestID(ctx, questID)
	if count != 2 {
		t.Fatalf("expected 2 active instances (i1 + duplicate), got %d", count)
	}
	if active, _ := s.IsActiveQuestInstance(ctx, i1); !active {
		t.Fatal("i1 should still be active")
	}
}

func TestMemoryStore_Pagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.CreateQuest(ctx, newQuest("q", "0xaa")); err != nil {
			t.Fatalf("CreateQuest: %v", err)
		}
	}

	page, err := s.GetActiveQuests(ctx, 0, 2)
	if err != nil {
		t.Fatalf("GetActiveQuests: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	page, _ = s.GetActiveQuests(ctx, 4, 2)
	if len(page) != 1 {
		t.Fatalf("expected trailing page of 1, got %d", len(page))
	}
	page, _ = s.GetActiveQuests(ctx, 10, 2)
	if len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(page))
	}

	byCreator, _ := s.GetQuestsByCreator(ctx, "0xAA", 0, 50)
	if len(byCreator) != 5 {
		t.Fatalf("expected 5 quests by creator, got %d", len(byCreator))
	}
}
