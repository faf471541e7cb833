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
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quest-platform/internal/quest"
	pkgerrors "quest-platform/pkg/errors"
)

type updateLink struct {
	questID    string
	previousID string
}

// MemoryStore 内存实现，用于测试与本地开发
type MemoryStore struct {
	mu sync.RWMutex

	quests      map[string]*Quest
	questOrder  []string
	deactivated map[string]struct{}
	updates     []updateLink

	instances     map[string]*quest.Instance
	instanceOrder []string
	abandoned     map[string]struct{}
	completed     map[string]struct{}

	events      map[string]*Event
	eventOrder  map[string][]string
	rewardHooks map[string]*quest.RewardHook
	rewardItems map[string][]quest.RewardItem
}

// NewMemoryStore 创建内存 Store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quests:      make(map[string]*Quest),
		deactivated: make(map[string]struct{}),
		instances:   make(map[string]*quest.Instance),
		abandoned:   make(map[string]struct{}),
		completed:   make(map[string]struct{}),
		events:      make(map[string]*Event),
		eventOrder:  make(map[string][]string),
		rewardHooks: make(map[string]*quest.RewardHook),
		rewardItems: make(map[string][]quest.RewardItem),
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) CreateQuest(ctx context.Context, q *Quest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createQuestLocked(q)
}

func (s *MemoryStore) createQuestLocked(q *Quest) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if _, ok := s.quests[q.ID]; ok {
		return "", pkgerrors.Wrapf(pkgerrors.ErrAlreadyExists, "quest %s", q.ID)
	}
	stored := *q
	stored.CreatorAddress = quest.NormalizeAddress(q.CreatorAddress)
	if stored.CreatedAt == 0 {
		stored.CreatedAt = time.Now().Unix()
	}
	s.quests[q.ID] = &stored
	s.questOrder = append(s.questOrder, q.ID)
	return q.ID, nil
}

func (s *MemoryStore) UpdateQuest(ctx context.Context, prevID string, q *Quest, creator string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.quests[prevID]
	if !ok {
		return "", pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", prevID)
	}
	if prev.CreatorAddress != quest.NormalizeAddress(creator) {
		return "", quest.ErrNotQuestCreator
	}
	next := *q
	next.CreatorAddress = prev.CreatorAddress
	newID, err := s.createQuestLocked(&next)
	if err != nil {
		return "", err
	}
	s.deactivated[prevID] = struct{}{}
	s.updates = append(s.updates, updateLink{questID: newID, previousID: prevID})
	return newID, nil
}

func (s *MemoryStore) GetQuest(ctx context.Context, id string) (*Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quests[id]
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", id)
	}
	return s.copyQuestLocked(q), nil
}

func (s *MemoryStore) copyQuestLocked(q *Quest) *Quest {
	out := *q
	_, deactivated := s.deactivated[q.ID]
	out.Active = !deactivated
	return &out
}

func (s *MemoryStore) GetActiveQuests(ctx context.Context, offset, limit int) ([]*Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Quest
	for i := len(s.questOrder) - 1; i >= 0; i-- {
		id := s.questOrder[i]
		if _, deactivated := s.deactivated[id]; deactivated {
			continue
		}
		all = append(all, s.copyQuestLocked(s.quests[id]))
	}
	return paginateQuests(all, offset, limit), nil
}

func (s *MemoryStore) GetQuestsByCreator(ctx context.Context, creator string, offset, limit int) ([]*Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr := quest.NormalizeAddress(creator)
	var all []*Quest
	for i := len(s.questOrder) - 1; i >= 0; i-- {
		q := s.quests[s.questOrder[i]]
		if q.CreatorAddress != addr {
			continue
		}
		all = append(all, s.copyQuestLocked(q))
	}
	return paginateQuests(all, offset, limit), nil
}

func paginateQuests(all []*Quest, offset, limit int) []*Quest {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func (s *MemoryStore) IsActiveQuest(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quests[id]; !ok {
		return false, nil
	}
	_, deactivated := s.deactivated[id]
	return !deactivated, nil
}

func (s *MemoryStore) IsUpdatable(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quests[id]; !ok {
		return false, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", id)
	}
	for _, inst := range s.instances {
		if inst.QuestID == id {
			return false, nil
		}
	}
	return true, nil
}

func (s *MemoryStore) CanActivateQuest(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, deactivated := s.deactivated[id]; !deactivated {
		return false, nil
	}
	for _, link := range s.updates {
		if link.previousID == id {
			return false, nil
		}
	}
	return true, nil
}

func (s *MemoryStore) ActivateQuest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deactivated, id)
	return nil
}

func (s *MemoryStore) DeactivateQuest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quests[id]; !ok {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", id)
	}
	s.deactivated[id] = struct{}{}
	return nil
}

func (s *MemoryStore) GetOldQuestVersions(ctx context.Context, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var versions []string
	for _, link := range s.updates {
		if link.questID == id {
			versions = append(versions, link.previousID)
		}
	}
	return versions, nil
}

func (s *MemoryStore) StartQuest(ctx context.Context, questID, userAddress string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quests[questID]; !ok {
		return "", pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", questID)
	}
	id := uuid.NewString()
	s.instances[id] = &quest.Instance{
		ID:             id,
		QuestID:        questID,
		UserAddress:    quest.NormalizeAddress(userAddress),
		StartTimestamp: time.Now().Unix(),
	}
	s.instanceOrder = append(s.instanceOrder, id)
	return id, nil
}

func (s *MemoryStore) AbandonQuestInstance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", id)
	}
	s.abandoned[id] = struct{}{}
	return nil
}

func (s *MemoryStore) CompleteQuestInstance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", id)
	}
	s.completed[id] = struct{}{}
	return nil
}

func (s *MemoryStore) IsCompletedInstance(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, completed := s.completed[id]
	return completed, nil
}

func (s *MemoryStore) IsActiveQuestInstance(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.instances[id]; !ok {
		return false, nil
	}
	return s.instanceActiveLocked(id), nil
}

func (s *MemoryStore) instanceActiveLocked(id string) bool {
	if _, abandoned := s.abandoned[id]; abandoned {
		return false
	}
	if _, completed := s.completed[id]; completed {
		return false
	}
	return true
}

func (s *MemoryStore) GetQuestInstance(ctx context.Context, id string) (*quest.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", id)
	}
	out := *inst
	return &out, nil
}

func (s *MemoryStore) GetActiveUserQuestInstances(ctx context.Context, userAddress string) ([]*quest.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr := quest.NormalizeAddress(userAddress)
	var instances []*quest.Instance
	for _, id := range s.instanceOrder {
		inst := s.instances[id]
		if inst.UserAddress != addr || !s.instanceActiveLocked(id) {
			continue
		}
		out := *inst
		instances = append(instances, &out)
	}
	return instances, nil
}

func (s *MemoryStore) GetActiveQuestInstancesByQuestID(ctx context.Context, questID string, offset, limit int) ([]*quest.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*quest.Instance
	for _, id := range s.instanceOrder {
		inst := s.instances[id]
		if inst.QuestID != questID || !s.instanceActiveLocked(id) {
			continue
		}
		out := *inst
		all = append(all, &out)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) CountActiveQuestInstancesByQuestID(ctx context.Context, questID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for id, inst := range s.instances {
		if inst.QuestID == questID && s.instanceActiveLocked(id) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) RemoveInstanceFromCompletedInstances(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.completed, id)
	return nil
}

func eventKey(eventID, instanceID string) string {
	return eventID + "/" + instanceID
}

func (s *MemoryStore) AddEvent(ctx context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := eventKey(ev.ID, ev.InstanceID)
	if _, ok := s.events[key]; ok {
		return nil
	}
	if _, ok := s.instances[ev.InstanceID]; !ok {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", ev.InstanceID)
	}
	stored := *ev
	stored.UserAddress = quest.NormalizeAddress(ev.UserAddress)
	if stored.Timestamp == 0 {
		stored.Timestamp = time.Now().Unix()
	}
	s.events[key] = &stored
	s.eventOrder[ev.InstanceID] = append(s.eventOrder[ev.InstanceID], key)
	return nil
}

func (s *MemoryStore) GetEvents(ctx context.Context, instanceID string) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []*Event
	for _, key := range s.eventOrder[instanceID] {
		out := *s.events[key]
		events = append(events, &out)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp < events[j].Timestamp
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (s *MemoryStore) RemoveEvent(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for instanceID, order := range s.eventOrder {
		kept := order[:0]
		for _, key := range order {
			if s.events[key].ID == eventID {
				delete(s.events, key)
				continue
			}
			kept = append(kept, key)
		}
		s.eventOrder[instanceID] = kept
	}
	return nil
}

func (s *MemoryStore) RemoveEventsForInstance(ctx context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.eventOrder[instanceID] {
		delete(s.events, key)
	}
	delete(s.eventOrder, instanceID)
	return nil
}

func (s *MemoryStore) AddRewardHookToQuest(ctx context.Context, questID string, hook *quest.RewardHook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quests[questID]; !ok {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", questID)
	}
	stored := quest.RewardHook{WebhookURL: hook.WebhookURL}
	if hook.RequestBody != nil {
		stored.RequestBody = make(map[string]string, len(hook.RequestBody))
		for k, v := range hook.RequestBody {
			stored.RequestBody[k] = v
		}
	}
	s.rewardHooks[questID] = &stored
	return nil
}

func (s *MemoryStore) GetQuestRewardHook(ctx context.Context, questID string) (*quest.RewardHook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hook, ok := s.rewardHooks[questID]
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "reward hook for quest %s", questID)
	}
	out := quest.RewardHook{WebhookURL: hook.WebhookURL}
	if hook.RequestBody != nil {
		out.RequestBody = make(map[string]string, len(hook.RequestBody))
		for k, v := range hook.RequestBody {
			out.RequestBody[k] = v
		}
	}
	return &out, nil
}

func (s *MemoryStore) AddRewardItemsToQuest(ctx context.Context, questID string, items []quest.RewardItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quests[questID]; !ok {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", questID)
	}
	s.rewardItems[questID] = append(s.rewardItems[questID], items...)
	return nil
}

func (s *MemoryStore) GetQuestRewardItems(ctx context.Context, questID string) ([]quest.RewardItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]quest.RewardItem, len(s.rewardItems[questID]))
	copy(items, s.rewardItems[questID])
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *MemoryStore) IsQuestCreator(ctx context.Context, questID, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quests[questID]
	if !ok {
		return false, nil
	}
	return q.CreatorAddress == quest.NormalizeAddress(address), nil
}

func (s *MemoryStore) GetQuestStats(ctx context.Context, questID string) (*QuestStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &QuestStats{}
	cutoff := time.Now().Add(-24 * time.Hour).Unix()
	players := make(map[string]struct{})
	for id, inst := range s.instances {
		if inst.QuestID != questID {
			continue
		}
		if _, abandoned := s.abandoned[id]; abandoned {
			stats.Abandoned++
		}
		if _, completed := s.completed[id]; completed {
			stats.Completed++
		}
		if s.instanceActiveLocked(id) {
			players[inst.UserAddress] = struct{}{}
		}
		if inst.StartTimestamp > cutoff {
			stats.StartedLast24h++
		}
	}
	stats.ActivePlayers = int64(len(players))
	return stats, nil
}
