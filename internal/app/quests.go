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

package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quest-platform/internal/quest"
	"quest-platform/internal/store"
	"quest-platform/internal/updates"
	pkgerrors "quest-platform/pkg/errors"
	"quest-platform/pkg/log"
	"quest-platform/pkg/metrics"
)

// Codec 门面所需的编解码能力（生产为 protocol.Codec）
type Codec interface {
	EncodeDefinition(d *quest.Definition) ([]byte, error)
	DecodeDefinition(data []byte) (*quest.Definition, error)
	DecodeEvent(data []byte) (*quest.Event, error)
	EncodeUserUpdate(u *quest.UserUpdate) ([]byte, error)
}

// EventSender 事件入队入口（生产为 processor.Sender）
type EventSender interface {
	Send(ctx context.Context, address string, action *quest.Action) (string, error)
}

// InstanceView 实例视图 DTO：实例 + 所属模板 + 回放出的当前状态
type InstanceView struct {
	Instance quest.Instance `json:"instance"`
	Quest    *quest.Quest   `json:"quest,omitempty"`
	State    *quest.State   `json:"state"`
}

// QuestService 任务门面：HTTP 与 WS 层仅依赖此接口，不直接调用 store。
// 所有权错误（quest.ErrNotQuestCreator 等）与校验错误由此层给出，
// 传输层只负责映射状态码。
type QuestService interface {
	CreateQuest(ctx context.Context, creator string, q *quest.Quest) (string, error)
	GetQuest(ctx context.Context, id string) (*quest.Quest, error)
	ListActiveQuests(ctx context.Context, offset, limit int) ([]*quest.Quest, error)
	ListQuestsByCreator(ctx context.Context, creator string, offset, limit int) ([]*quest.Quest, error)
	UpdateQuest(ctx context.Context, id, caller string, q *quest.Quest) (string, error)
	DeactivateQuest(ctx context.Context, id, caller string) error
	ActivateQuest(ctx context.Context, id, caller string) error
	GetOldQuestVersions(ctx context.Context, id string) ([]string, error)
	GetQuestStats(ctx context.Context, id, caller string) (*store.QuestStats, error)

	StartQuest(ctx context.Context, questID, userAddress string) (*InstanceView, error)
	AbandonInstance(ctx context.Context, instanceID, caller string) error
	ResetInstance(ctx context.Context, instanceID, caller string) (*InstanceView, error)
	GetInstance(ctx context.Context, instanceID, caller string) (*InstanceView, error)
	ListUserInstances(ctx context.Context, userAddress string) ([]*InstanceView, error)
	ListQuestInstances(ctx context.Context, questID, caller string, offset, limit int) ([]*InstanceView, error)

	SendEvent(ctx context.Context, address string, action *quest.Action) (string, error)
	SendEventForInstance(ctx context.Context, instanceID, caller string, action *quest.Action) (string, error)
	RemoveInstanceEvent(ctx context.Context, instanceID, eventID, caller string) error

	SetRewardHook(ctx context.Context, questID, caller string, hook *quest.RewardHook) error
	AddRewardItems(ctx context.Context, questID, caller string, items []quest.RewardItem) error
	GetReward(ctx context.Context, questID, caller string) (*quest.Reward, error)
}

type questService struct {
	store  store.Store
	codec  Codec
	bus    updates.Bus
	sender EventSender
	logger *log.Logger
}

// NewQuestService 创建任务门面
func NewQuestService(st store.Store, codec Codec, bus updates.Bus, sender EventSender, logger *log.Logger) QuestService {
	return &questService{store: st, codec: codec, bus: bus, sender: sender, logger: logger}
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

func checkUUID(id string) error {
	if uuid.Validate(id) != nil {
		return fmt.Errorf("%w: %q", quest.ErrNotUUID, id)
	}
	return nil
}

func (s *questService) CreateQuest(ctx context.Context, creator string, q *quest.Quest) (string, error) {
	q.CreatorAddress = quest.NormalizeAddress(creator)
	if err := q.Validate(); err != nil {
		return "", err
	}
	defBytes, err := s.codec.EncodeDefinition(&q.Definition)
	if err != nil {
		return "", fmt.Errorf("encode definition: %w", err)
	}
	id, err := s.store.CreateQuest(ctx, &store.Quest{
		Name:           q.Name,
		Description:    q.Description,
		ImageURL:       q.ImageURL,
		Definition:     defBytes,
		CreatorAddress: q.CreatorAddress,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("模板已创建", "quest_id", id, "creator", q.CreatorAddress)
	return id, nil
}

func (s *questService) rowToQuest(row *store.Quest) (*quest.Quest, error) {
	def, err := s.codec.DecodeDefinition(row.Definition)
	if err != nil {
		return nil, fmt.Errorf("decode definition of quest %s: %w", row.ID, err)
	}
	q := &quest.Quest{
		ID:             row.ID,
		Name:           row.Name,
		Description:    row.Description,
		ImageURL:       row.ImageURL,
		CreatorAddress: row.CreatorAddress,
		Active:         row.Active,
		CreatedAt:      row.CreatedAt,
	}
	if def != nil {
		q.Definition = *def
	}
	return q, nil
}

func (s *questService) GetQuest(ctx context.Context, id string) (*quest.Quest, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	row, err := s.store.GetQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.rowToQuest(row)
}

func (s *questService) ListActiveQuests(ctx context.Context, offset, limit int) ([]*quest.Quest, error) {
	offset, limit = normalizePage(offset, limit)
	rows, err := s.store.GetActiveQuests(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.rowsToQuests(rows), nil
}

func (s *questService) ListQuestsByCreator(ctx context.Context, creator string, offset, limit int) ([]*quest.Quest, error) {
	offset, limit = normalizePage(offset, limit)
	rows, err := s.store.GetQuestsByCreator(ctx, creator, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.rowsToQuests(rows), nil
}

// rowsToQuests 解码失败的行跳过并记日志，不让单个坏行拖垮整页
func (s *questService) rowsToQuests(rows []*store.Quest) []*quest.Quest {
	out := make([]*quest.Quest, 0, len(rows))
	for _, row := range rows {
		q, err := s.rowToQuest(row)
		if err != nil {
			s.logger.Error("跳过无法解码的模板", "quest_id", row.ID, "error", err)
			continue
		}
		out = append(out, q)
	}
	return out
}

func (s *questService) requireCreator(ctx context.Context, questID, caller string) (*store.Quest, error) {
	row, err := s.store.GetQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if row.CreatorAddress != quest.NormalizeAddress(caller) {
		return nil, quest.ErrNotQuestCreator
	}
	return row, nil
}

func (s *questService) UpdateQuest(ctx context.Context, id, caller string, q *quest.Quest) (string, error) {
	if err := checkUUID(id); err != nil {
		return "", err
	}
	if _, err := s.requireCreator(ctx, id, caller); err != nil {
		return "", err
	}
	updatable, err := s.store.IsUpdatable(ctx, id)
	if err != nil {
		return "", err
	}
	if !updatable {
		return "", quest.ErrQuestNotUpdatable
	}
	if err := q.Validate(); err != nil {
		return "", err
	}
	defBytes, err := s.codec.EncodeDefinition(&q.Definition)
	if err != nil {
		return "", fmt.Errorf("encode definition: %w", err)
	}
	newID, err := s.store.UpdateQuest(ctx, id, &store.Quest{
		Name:        q.Name,
		Description: q.Description,
		ImageURL:    q.ImageURL,
		Definition:  defBytes,
	}, caller)
	if err != nil {
		return "", err
	}
	s.logger.Info("模板已更新", "quest_id", id, "new_quest_id", newID)
	return newID, nil
}

func (s *questService) DeactivateQuest(ctx context.Context, id, caller string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	if _, err := s.requireCreator(ctx, id, caller); err != nil {
		return err
	}
	if err := s.store.DeactivateQuest(ctx, id); err != nil {
		return err
	}
	s.logger.Info("模板已停用", "quest_id", id)
	return nil
}

func (s *questService) ActivateQuest(ctx context.Context, id, caller string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	if _, err := s.requireCreator(ctx, id, caller); err != nil {
		return err
	}
	can, err := s.store.CanActivateQuest(ctx, id)
	if err != nil {
		return err
	}
	if !can {
		return quest.ErrQuestNotActivable
	}
	if err := s.store.ActivateQuest(ctx, id); err != nil {
		return err
	}
	s.logger.Info("模板已重新启用", "quest_id", id)
	return nil
}

func (s *questService) GetOldQuestVersions(ctx context.Context, id string) ([]string, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if _, err := s.store.GetQuest(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetOldQuestVersions(ctx, id)
}

func (s *questService) GetQuestStats(ctx context.Context, id, caller string) (*store.QuestStats, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	if _, err := s.requireCreator(ctx, id, caller); err != nil {
		return nil, err
	}
	return s.store.GetQuestStats(ctx, id)
}

// replayInstance 解码模板定义并回放实例全部事件，得到当前状态
func (s *questService) replayInstance(ctx context.Context, inst *quest.Instance, row *store.Quest) (*quest.State, error) {
	def, err := s.codec.DecodeDefinition(row.Definition)
	if err != nil {
		return nil, fmt.Errorf("decode definition of quest %s: %w", row.ID, err)
	}
	graph := quest.NewGraph(def)
	stored, err := s.store.GetEvents(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	history := make([]*quest.Event, 0, len(stored))
	for _, se := range stored {
		ev, err := s.codec.DecodeEvent(se.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode stored event %s: %w", se.ID, err)
		}
		history = append(history, ev)
	}
	return graph.Replay(history), nil
}

func (s *questService) instanceView(ctx context.Context, inst *quest.Instance) (*InstanceView, error) {
	row, err := s.store.GetQuest(ctx, inst.QuestID)
	if err != nil {
		return nil, err
	}
	state, err := s.replayInstance(ctx, inst, row)
	if err != nil {
		return nil, err
	}
	q, err := s.rowToQuest(row)
	if err != nil {
		return nil, err
	}
	return &InstanceView{Instance: *inst, Quest: q, State: state}, nil
}

func (s *questService) StartQuest(ctx context.Context, questID, userAddress string) (*InstanceView, error) {
	if err := checkUUID(questID); err != nil {
		return nil, err
	}
	addr := quest.NormalizeAddress(userAddress)

	active, err := s.store.IsActiveQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if !active {
		// 区分不存在与已停用
		if _, err := s.store.GetQuest(ctx, questID); err != nil {
			return nil, err
		}
		return nil, quest.ErrQuestDeactivated
	}

	mine, err := s.store.GetActiveUserQuestInstances(ctx, addr)
	if err != nil {
		return nil, err
	}
	for _, inst := range mine {
		if inst.QuestID == questID {
			return nil, quest.ErrQuestAlreadyStarted
		}
	}

	instanceID, err := s.store.StartQuest(ctx, questID, addr)
	if err != nil {
		return nil, err
	}
	inst, err := s.store.GetQuestInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	view, err := s.instanceView(ctx, inst)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &quest.UserUpdate{
		UserAddress: addr,
		Started: &quest.NewQuestStarted{
			Instance: *inst,
			Quest:    view.Quest,
			State:    view.State,
		},
	}, "started")
	s.logger.Info("实例已开启", "quest_id", questID, "instance_id", instanceID, "user_address", addr)
	return view, nil
}

func (s *questService) requireInstance(ctx context.Context, instanceID string) (*quest.Instance, error) {
	if err := checkUUID(instanceID); err != nil {
		return nil, err
	}
	return s.store.GetQuestInstance(ctx, instanceID)
}

func (s *questService) AbandonInstance(ctx context.Context, instanceID, caller string) error {
	inst, err := s.requireInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	if inst.UserAddress != quest.NormalizeAddress(caller) {
		return quest.ErrNotInstanceOwner
	}
	if err := s.store.AbandonQuestInstance(ctx, instanceID); err != nil {
		return err
	}
	s.logger.Info("实例已放弃", "instance_id", instanceID)
	return nil
}

// ResetInstance 运营操作：清空实例事件与完成标记，使其回到初始状态重新可玩。
// 仅模板创建者可重置；重置后的初始状态会广播给订阅中的会话。
func (s *questService) ResetInstance(ctx context.Context, instanceID, caller string) (*InstanceView, error) {
	inst, err := s.requireInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCreator(ctx, inst.QuestID, caller); err != nil {
		return nil, err
	}
	if err := s.store.RemoveEventsForInstance(ctx, instanceID); err != nil {
		return nil, err
	}
	if err := s.store.RemoveInstanceFromCompletedInstances(ctx, instanceID); err != nil {
		return nil, err
	}
	view, err := s.instanceView(ctx, inst)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, &quest.UserUpdate{
		UserAddress: inst.UserAddress,
		State: &quest.QuestStateUpdate{
			InstanceID: inst.ID,
			QuestID:    inst.QuestID,
			State:      view.State,
		},
	}, "state")
	s.logger.Info("实例已重置", "instance_id", instanceID)
	return view, nil
}

func (s *questService) GetInstance(ctx context.Context, instanceID, caller string) (*InstanceView, error) {
	inst, err := s.requireInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	addr := quest.NormalizeAddress(caller)
	if inst.UserAddress != addr {
		// 模板创建者可查看自己模板下的实例
		isCreator, err := s.store.IsQuestCreator(ctx, inst.QuestID, addr)
		if err != nil {
			return nil, err
		}
		if !isCreator {
			return nil, quest.ErrNotInstanceOwner
		}
	}
	return s.instanceView(ctx, inst)
}

func (s *questService) ListUserInstances(ctx context.Context, userAddress string) ([]*InstanceView, error) {
	instances, err := s.store.GetActiveUserQuestInstances(ctx, userAddress)
	if err != nil {
		return nil, err
	}
	views := make([]*InstanceView, 0, len(instances))
	for _, inst := range instances {
		view, err := s.instanceView(ctx, inst)
		if err != nil {
			s.logger.Error("跳过无法回放的实例", "instance_id", inst.ID, "error", err)
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *questService) ListQuestInstances(ctx context.Context, questID, caller string, offset, limit int) ([]*InstanceView, error) {
	if err := checkUUID(questID); err != nil {
		return nil, err
	}
	if _, err := s.requireCreator(ctx, questID, caller); err != nil {
		return nil, err
	}
	offset, limit = normalizePage(offset, limit)
	instances, err := s.store.GetActiveQuestInstancesByQuestID(ctx, questID, offset, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*InstanceView, 0, len(instances))
	for _, inst := range instances {
		view, err := s.instanceView(ctx, inst)
		if err != nil {
			s.logger.Error("跳过无法回放的实例", "instance_id", inst.ID, "error", err)
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *questService) SendEvent(ctx context.Context, address string, action *quest.Action) (string, error) {
	return s.sender.Send(ctx, address, action)
}

// SendEventForInstance 创建者代实例归属用户入队事件（运营补发）
func (s *questService) SendEventForInstance(ctx context.Context, instanceID, caller string, action *quest.Action) (string, error) {
	inst, err := s.requireInstance(ctx, instanceID)
	if err != nil {
		return "", err
	}
	if _, err := s.requireCreator(ctx, inst.QuestID, caller); err != nil {
		return "", err
	}
	return s.sender.Send(ctx, inst.UserAddress, action)
}

// RemoveInstanceEvent 删除已入库事件并撤销完成标记，下次回放按剩余事件重新推导
func (s *questService) RemoveInstanceEvent(ctx context.Context, instanceID, eventID, caller string) error {
	if err := checkUUID(eventID); err != nil {
		return err
	}
	inst, err := s.requireInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	if _, err := s.requireCreator(ctx, inst.QuestID, caller); err != nil {
		return err
	}
	if err := s.store.RemoveEvent(ctx, eventID); err != nil {
		return err
	}
	if err := s.store.RemoveInstanceFromCompletedInstances(ctx, instanceID); err != nil {
		return err
	}
	s.logger.Info("事件已删除", "instance_id", instanceID, "event_id", eventID)
	return nil
}

func (s *questService) SetRewardHook(ctx context.Context, questID, caller string, hook *quest.RewardHook) error {
	if err := checkUUID(questID); err != nil {
		return err
	}
	if _, err := s.requireCreator(ctx, questID, caller); err != nil {
		return err
	}
	if hook == nil || hook.WebhookURL == "" {
		return quest.NewValidationError("webhook_url", "webhook url is required")
	}
	return s.store.AddRewardHookToQuest(ctx, questID, hook)
}

func (s *questService) AddRewardItems(ctx context.Context, questID, caller string, items []quest.RewardItem) error {
	if err := checkUUID(questID); err != nil {
		return err
	}
	if _, err := s.requireCreator(ctx, questID, caller); err != nil {
		return err
	}
	if len(items) == 0 {
		return quest.NewValidationError("items", "at least one reward item is required")
	}
	for _, item := range items {
		if item.Name == "" {
			return quest.NewValidationError("items", "reward item name is required")
		}
	}
	return s.store.AddRewardItemsToQuest(ctx, questID, items)
}

// GetReward 返回模板奖励。物品对所有人可见；
// 回调配置含投递地址，仅创建者可见。
func (s *questService) GetReward(ctx context.Context, questID, caller string) (*quest.Reward, error) {
	if err := checkUUID(questID); err != nil {
		return nil, err
	}
	row, err := s.store.GetQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.GetQuestRewardItems(ctx, questID)
	if err != nil {
		return nil, err
	}
	reward := &quest.Reward{Items: items}
	if row.CreatorAddress == quest.NormalizeAddress(caller) {
		hook, err := s.store.GetQuestRewardHook(ctx, questID)
		if err != nil && !pkgerrors.IsNotFound(err) {
			return nil, err
		}
		reward.Hook = hook
	}
	if reward.Hook == nil && len(reward.Items) == 0 {
		return nil, quest.ErrQuestHasNoReward
	}
	return reward, nil
}

func (s *questService) publish(ctx context.Context, u *quest.UserUpdate, kind string) {
	payload, err := s.codec.EncodeUserUpdate(u)
	if err != nil {
		s.logger.Error("编码更新失败", "kind", kind, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, payload); err != nil {
		s.logger.Error("广播更新失败", "kind", kind, "error", err)
		return
	}
	metrics.UpdateTotal.WithLabelValues(kind).Inc()
}
