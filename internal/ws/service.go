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

package ws

import (
	"errors"

	"quest-platform/internal/protocol"
	"quest-platform/internal/protocol/pb"
	"quest-platform/internal/quest"
	"quest-platform/internal/updates"
	pkgerrors "quest-platform/pkg/errors"
	"quest-platform/pkg/metrics"
)

// ModuleQuests 会话端口上唯一可加载的模块
const ModuleQuests = "QuestsService"

// 过程名
const (
	ProcStartQuest         = "StartQuest"
	ProcAbortQuest         = "AbortQuest"
	ProcSendEvent          = "SendEvent"
	ProcGetAllQuests       = "GetAllQuests"
	ProcGetQuestDefinition = "GetQuestDefinition"
	ProcSubscribe          = "Subscribe"
)

// RemoteError 错误码
const (
	codeInternal            uint32 = 1
	codeBadRequest          uint32 = 2
	codeValidation          uint32 = 3
	codeNotUUID             uint32 = 4
	codeNotFound            uint32 = 5
	codeNotOwner            uint32 = 6
	codeQuestAlreadyStarted uint32 = 7
	codeQuestDeactivated    uint32 = 8
)

// errorCode 领域错误映射为线缆错误码。未识别的一律 internal，
// 不向客户端透出内部细节。
func errorCode(err error) (uint32, string) {
	switch {
	case quest.IsValidationError(err):
		return codeValidation, err.Error()
	case errors.Is(err, quest.ErrNotUUID):
		return codeNotUUID, err.Error()
	case pkgerrors.IsNotFound(err):
		return codeNotFound, err.Error()
	case errors.Is(err, quest.ErrNotQuestCreator), errors.Is(err, quest.ErrNotInstanceOwner):
		return codeNotOwner, err.Error()
	case errors.Is(err, quest.ErrQuestAlreadyStarted):
		return codeQuestAlreadyStarted, err.Error()
	case errors.Is(err, quest.ErrQuestDeactivated):
		return codeQuestDeactivated, err.Error()
	default:
		return codeInternal, "internal server error"
	}
}

// handleRequest 执行单次过程调用并回写响应帧
func (s *session) handleRequest(msgID uint32, req *pb.Request) {
	if _, ok := s.questsPort(req.GetPortId()); !ok {
		s.sendError(msgID, codeBadRequest, "port has no QuestsService module")
		return
	}

	switch req.GetProcedure() {
	case ProcStartQuest:
		s.procStartQuest(msgID, req.GetPayload())
	case ProcAbortQuest:
		s.procAbortQuest(msgID, req.GetPayload())
	case ProcSendEvent:
		s.procSendEvent(msgID, req.GetPayload())
	case ProcGetAllQuests:
		s.procGetAllQuests(msgID)
	case ProcGetQuestDefinition:
		s.procGetQuestDefinition(msgID, req.GetPayload())
	case ProcSubscribe:
		s.procSubscribe(msgID, req.GetPortId())
	default:
		s.sendError(msgID, codeBadRequest, "unknown procedure: "+req.GetProcedure())
	}
}

func (s *session) procStartQuest(msgID uint32, payload []byte) {
	var req pb.StartQuestRequest
	if err := req.Unmarshal(payload); err != nil {
		s.sendError(msgID, codeBadRequest, "malformed StartQuestRequest")
		return
	}
	view, err := s.svc.StartQuest(s.ctx, req.GetQuestId(), s.address)
	if err != nil {
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}
	s.respond(msgID, &pb.StartQuestResponse{QuestInstanceId: view.Instance.ID})
}

func (s *session) procAbortQuest(msgID uint32, payload []byte) {
	var req pb.AbortQuestRequest
	if err := req.Unmarshal(payload); err != nil {
		s.sendError(msgID, codeBadRequest, "malformed AbortQuestRequest")
		return
	}
	if err := s.svc.AbandonInstance(s.ctx, req.GetQuestInstanceId(), s.address); err != nil {
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}
	s.respond(msgID, &pb.AbortQuestResponse{})
}

func (s *session) procSendEvent(msgID uint32, payload []byte) {
	var req pb.EventRequest
	if err := req.Unmarshal(payload); err != nil {
		s.sendError(msgID, codeBadRequest, "malformed EventRequest")
		return
	}
	eventID, err := s.svc.SendEvent(s.ctx, s.address, protocol.ActionFromPB(req.GetAction()))
	if err != nil {
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}
	s.respond(msgID, &pb.EventResponse{EventId: eventID})
}

func (s *session) procGetAllQuests(msgID uint32) {
	views, err := s.svc.ListUserInstances(s.ctx, s.address)
	if err != nil {
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}
	resp := &pb.GetAllQuestsResponse{Instances: make([]*pb.QuestInstance, 0, len(views))}
	for _, v := range views {
		resp.Instances = append(resp.Instances, protocol.InstanceToPB(&v.Instance, v.Quest, v.State))
	}
	s.respond(msgID, resp)
}

func (s *session) procGetQuestDefinition(msgID uint32, payload []byte) {
	var req pb.GetQuestDefinitionRequest
	if err := req.Unmarshal(payload); err != nil {
		s.sendError(msgID, codeBadRequest, "malformed GetQuestDefinitionRequest")
		return
	}
	q, err := s.svc.GetQuest(s.ctx, req.GetQuestId())
	if err != nil {
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}
	s.respond(msgID, &pb.GetQuestDefinitionResponse{Quest: protocol.QuestToPB(q)})
}

// procSubscribe 开启订阅流：先依次回填各活跃实例的当前状态，
// 再转发总线上的后续更新。回填一定先于任何实时更新落帧。
func (s *session) procSubscribe(msgID uint32, portID uint32) {
	p, ok := s.questsPort(portID)
	if !ok {
		s.sendError(msgID, codeBadRequest, "port has no QuestsService module")
		return
	}
	s.mu.Lock()
	if p.subscribed {
		s.mu.Unlock()
		s.sendError(msgID, codeBadRequest, "port already subscribed")
		return
	}
	p.subscribed = true
	s.mu.Unlock()

	// 先挂上总线再回填：回填期间到达的更新排在缓冲里，
	// 流顺序仍是回填在前
	sub, err := s.bus.Subscribe(s.ctx)
	if err != nil {
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}

	views, err := s.svc.ListUserInstances(s.ctx, s.address)
	if err != nil {
		sub.Close()
		code, msg := errorCode(err)
		s.sendError(msgID, code, msg)
		return
	}

	instanceIDs := make([]string, 0, len(views))
	for _, v := range views {
		instanceIDs = append(instanceIDs, v.Instance.ID)
	}
	router := updates.NewRouter(s.address, instanceIDs)

	s.send(&pb.WsPacket{
		MessageIdentifier: msgID,
		Message:           &pb.WsPacket_Response{Response: &pb.Response{}},
	})

	for _, v := range views {
		u := &quest.UserUpdate{
			UserAddress: s.address,
			State: &quest.QuestStateUpdate{
				InstanceID: v.Instance.ID,
				QuestID:    v.Instance.QuestID,
				State:      v.State,
			},
		}
		data, err := protocol.UserUpdateToPB(u).Marshal()
		if err != nil {
			s.logger.Error("编码回填状态失败", "instance_id", v.Instance.ID, "error", err)
			continue
		}
		s.stream(portID, data)
	}

	metrics.WSSubscriptions.Inc()
	s.wg.Add(1)
	go s.forwardUpdates(portID, sub, router)
	s.logger.Info("订阅已开启", "address", s.address, "port_id", portID, "instances", len(instanceIDs))
}

// forwardUpdates 把总线更新过滤后推上订阅流，随会话 ctx 结束
func (s *session) forwardUpdates(portID uint32, sub updates.Subscription, router *updates.Router) {
	defer s.wg.Done()
	defer metrics.WSSubscriptions.Dec()
	defer sub.Close()

	codec := protocol.Codec{}
	for {
		select {
		case payload, ok := <-sub.Updates():
			if !ok {
				return
			}
			// 解码仅用于过滤；命中后原字节直接上流，不再重编码
			u, err := codec.DecodeUserUpdate(payload)
			if err != nil {
				s.logger.Warn("无法解码的总线更新", "error", err)
				continue
			}
			if !router.Allow(u) {
				continue
			}
			s.stream(portID, payload)
		case <-s.ctx.Done():
			return
		}
	}
}
