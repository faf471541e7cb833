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

// Package processor 消费事件队列并推进任务实例。
// 事件按玩家地址哈希进分片，同一玩家的事件在同一分片内串行，
// 保证单实例的事件回放确定可重现。状态不落库，推进结果以事件行
// 与更新广播体现。
package processor

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quest-platform/internal/eventqueue"
	"quest-platform/internal/quest"
	"quest-platform/internal/store"
	"quest-platform/internal/updates"
	"quest-platform/pkg/log"
	"quest-platform/pkg/metrics"
	"quest-platform/pkg/tracing"
)

// Codec 处理器所需的编解码能力，由调用方注入（生产为 protocol.Codec）
type Codec interface {
	EncodeEvent(ev *quest.Event) ([]byte, error)
	DecodeEvent(data []byte) (*quest.Event, error)
	DecodeDefinition(data []byte) (*quest.Definition, error)
	EncodeUserUpdate(u *quest.UserUpdate) ([]byte, error)
}

// RewardNotifier 实例首次完成时投递奖励（生产为 rewards.Dispatcher）
type RewardNotifier interface {
	Dispatch(ctx context.Context, questID, userAddress string)
}

const (
	defaultWorkers      = 8
	defaultShardBuffer  = 64
	defaultRequeueDelay = 5 * time.Second
)

// Options 处理器参数；零值取默认
type Options struct {
	Workers      int
	ShardBuffer  int
	RequeueDelay time.Duration
	Rewards      RewardNotifier
}

// Processor 事件处理器
type Processor struct {
	store        store.Store
	queue        eventqueue.Queue
	bus          updates.Bus
	codec        Codec
	rewards      RewardNotifier
	logger       *log.Logger
	workers      int
	requeueDelay time.Duration

	shards []chan *queuedEvent
	stopCh chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// 分片内传递解码结果与原始字节；落库直接写原始字节，避免二次编码
type queuedEvent struct {
	raw []byte
	ev  *quest.Event
}

// NewProcessor 创建处理器
func NewProcessor(st store.Store, queue eventqueue.Queue, bus updates.Bus, codec Codec, logger *log.Logger, opts Options) *Processor {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	buffer := opts.ShardBuffer
	if buffer <= 0 {
		buffer = defaultShardBuffer
	}
	delay := opts.RequeueDelay
	if delay <= 0 {
		delay = defaultRequeueDelay
	}
	shards := make([]chan *queuedEvent, workers)
	for i := range shards {
		shards[i] = make(chan *queuedEvent, buffer)
	}
	return &Processor{
		store:        st,
		queue:        queue,
		bus:          bus,
		codec:        codec,
		rewards:      opts.Rewards,
		logger:       logger,
		workers:      workers,
		requeueDelay: delay,
		shards:       shards,
		stopCh:       make(chan struct{}),
	}
}

// Start 启动分片 worker 与出队循环
func (p *Processor) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runShard(ctx, i)
	}
	p.wg.Add(1)
	go p.runDispatch(ctx)
	p.wg.Add(1)
	go p.runQueueDepth(ctx)
	p.logger.Info("事件处理器已启动", "workers", p.workers)
}

// Stop 停止处理器：发停止信号并取消内部 ctx 解除出队阻塞，等待全部循环退出
func (p *Processor) Stop() {
	close(p.stopCh)
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("事件处理器已停止")
}

func (p *Processor) runDispatch(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
		payload, err := p.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("出队失败", "error", err)
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		ev, err := p.codec.DecodeEvent(payload)
		if err != nil {
			p.logger.Warn("丢弃无法解码的事件", "error", err)
			metrics.EventTotal.WithLabelValues("invalid").Inc()
			continue
		}
		if ev.ID == "" || ev.Address == "" || ev.Action == nil {
			p.logger.Warn("丢弃字段不全的事件", "event_id", ev.ID, "address", ev.Address)
			metrics.EventTotal.WithLabelValues("invalid").Inc()
			continue
		}
		shard := p.shards[p.shardFor(ev.Address)]
		select {
		case shard <- &queuedEvent{raw: payload, ev: ev}:
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Processor) runShard(ctx context.Context, index int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			// 分片缓冲中剩余的事件由重投递兜底
			return
		case <-ctx.Done():
			return
		case item := <-p.shards[index]:
			p.handle(ctx, item)
		}
	}
}

func (p *Processor) runQueueDepth(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if length, err := p.queue.Len(ctx); err == nil {
				metrics.EventQueueDepth.Set(float64(length))
			}
		}
	}
}

func (p *Processor) shardFor(address string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(address))
	return int(h.Sum32() % uint32(p.workers))
}

// handle 处理单个事件：找玩家全部活跃实例，逐实例回放并尝试推进。
// 单实例失败只跳过该实例；活跃实例查询失败时整个事件延迟重投递。
func (p *Processor) handle(ctx context.Context, item *queuedEvent) {
	ctx, span := tracing.StartEventSpan(ctx, item.ev.ID, item.ev.Address)
	defer span.End()
	timer := prometheus.NewTimer(metrics.EventDuration)
	defer timer.ObserveDuration()

	ev := item.ev
	instances, err := p.store.GetActiveUserQuestInstances(ctx, ev.Address)
	if err != nil {
		p.logger.Error("查询活跃实例失败，事件重投递", "event_id", ev.ID, "error", err)
		p.requeue(ctx, item)
		return
	}
	if len(instances) == 0 {
		p.publishIgnored(ctx, ev, "no active quest instances")
		metrics.EventTotal.WithLabelValues("ignored").Inc()
		return
	}

	advanced := false
	for _, inst := range instances {
		changed, err := p.processInstance(ctx, item, inst)
		if err != nil {
			p.logger.Error("实例处理失败，跳过", "event_id", ev.ID, "instance_id", inst.ID, "error", err)
			metrics.EventTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if changed {
			advanced = true
		}
	}
	if !advanced {
		p.publishIgnored(ctx, ev, "event did not advance any quest")
		metrics.EventTotal.WithLabelValues("ignored").Inc()
		return
	}
	metrics.EventTotal.WithLabelValues("applied").Inc()
}

// processInstance 对单个实例回放历史并应用新事件。
// 返回 true 表示事件推进了该实例（事件已落库、更新已广播）。
func (p *Processor) processInstance(ctx context.Context, item *queuedEvent, inst *quest.Instance) (bool, error) {
	row, err := p.store.GetQuest(ctx, inst.QuestID)
	if err != nil {
		return false, fmt.Errorf("get quest %s: %w", inst.QuestID, err)
	}
	def, err := p.codec.DecodeDefinition(row.Definition)
	if err != nil {
		return false, fmt.Errorf("decode definition of quest %s: %w", inst.QuestID, err)
	}
	graph := quest.NewGraph(def)

	stored, err := p.store.GetEvents(ctx, inst.ID)
	if err != nil {
		return false, fmt.Errorf("get events of instance %s: %w", inst.ID, err)
	}
	history := make([]*quest.Event, 0, len(stored))
	for _, se := range stored {
		hev, err := p.codec.DecodeEvent(se.Payload)
		if err != nil {
			return false, fmt.Errorf("decode stored event %s: %w", se.ID, err)
		}
		history = append(history, hev)
	}

	state := graph.Replay(history)
	next, changed := graph.ApplyEvent(state, item.ev)
	if !changed {
		return false, nil
	}

	if err := p.store.AddEvent(ctx, &store.Event{
		ID:          item.ev.ID,
		UserAddress: item.ev.Address,
		Payload:     item.raw,
		InstanceID:  inst.ID,
	}); err != nil {
		return false, fmt.Errorf("add event %s: %w", item.ev.ID, err)
	}

	p.publish(ctx, &quest.UserUpdate{
		UserAddress: item.ev.Address,
		State: &quest.QuestStateUpdate{
			InstanceID: inst.ID,
			QuestID:    inst.QuestID,
			EventID:    item.ev.ID,
			State:      next,
		},
	}, "state")

	if next.IsCompleted() {
		if err := p.store.CompleteQuestInstance(ctx, inst.ID); err != nil {
			p.logger.Error("标记实例完成失败", "instance_id", inst.ID, "error", err)
		} else {
			p.publish(ctx, &quest.UserUpdate{
				UserAddress: item.ev.Address,
				Completed: &quest.QuestCompleted{
					InstanceID: inst.ID,
					QuestID:    inst.QuestID,
					QuestName:  row.Name,
				},
			}, "completed")
			if p.rewards != nil {
				go p.rewards.Dispatch(context.Background(), inst.QuestID, item.ev.Address)
			}
		}
	}
	return true, nil
}

func (p *Processor) publishIgnored(ctx context.Context, ev *quest.Event, reason string) {
	p.publish(ctx, &quest.UserUpdate{
		UserAddress: ev.Address,
		Ignored:     &quest.EventIgnored{EventID: ev.ID, Reason: reason},
	}, "ignored")
}

func (p *Processor) publish(ctx context.Context, u *quest.UserUpdate, kind string) {
	payload, err := p.codec.EncodeUserUpdate(u)
	if err != nil {
		p.logger.Error("编码更新失败", "kind", kind, "error", err)
		return
	}
	if err := p.bus.Publish(ctx, payload); err != nil {
		p.logger.Error("广播更新失败", "kind", kind, "error", err)
		return
	}
	metrics.UpdateTotal.WithLabelValues(kind).Inc()
}

func (p *Processor) requeue(ctx context.Context, item *queuedEvent) {
	metrics.EventTotal.WithLabelValues("requeued").Inc()
	select {
	case <-p.stopCh:
	case <-ctx.Done():
	case <-time.After(p.requeueDelay):
	}
	if _, err := p.queue.Push(ctx, item.raw); err != nil {
		p.logger.Error("事件重投递失败", "event_id", item.ev.ID, "error", err)
	}
}
