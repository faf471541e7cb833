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
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quest-platform/internal/app"
	"quest-platform/internal/protocol/pb"
	"quest-platform/internal/updates"
	"quest-platform/pkg/auth"
	"quest-platform/pkg/log"
	"quest-platform/pkg/metrics"
)

// port 会话内的多路复用端口
type port struct {
	name       string
	module     string // 加载的模块名，空表示尚未加载
	subscribed bool
}

// session 单个已升级连接的全部状态。读循环归 run 所有，
// 写统一经 out 通道由 writeLoop 串行落盘；过程调用在独立
// goroutine 里执行，订阅流推送不会阻塞它们。
type session struct {
	conn   *websocket.Conn
	svc    app.QuestService
	bus    updates.Bus
	logger *log.Logger
	opts   Options

	address string

	ctx    context.Context
	cancel context.CancelFunc
	out    chan *pb.WsPacket
	wg     sync.WaitGroup

	mu         sync.Mutex
	ports      map[uint32]*port
	nextPortID uint32
}

func newSession(conn *websocket.Conn, svc app.QuestService, bus updates.Bus, logger *log.Logger, opts Options) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		conn:   conn,
		svc:    svc,
		bus:    bus,
		logger: logger,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		out:    make(chan *pb.WsPacket, 64),
		ports:  make(map[uint32]*port),
	}
}

func (s *session) run() {
	defer s.conn.Close()

	if !s.authenticate() {
		return
	}

	metrics.WSSessions.Inc()
	defer metrics.WSSessions.Dec()
	s.logger.Info("WS 会话已认证", "address", s.address, "remote", s.conn.RemoteAddr().String())

	s.wg.Add(1)
	go s.writeLoop()

	s.readLoop()

	// 读循环退出即会话结束：取消订阅与在途调用，等全部 goroutine 收尾
	s.cancel()
	s.wg.Wait()
	s.logger.Info("WS 会话关闭", "address", s.address)
}

// authenticate 发送挑战并校验签名链应答。失败关闭连接。
func (s *session) authenticate() bool {
	challenge, err := newChallenge()
	if err != nil {
		s.logger.Error("生成挑战失败", "error", err)
		return false
	}

	deadline := time.Now().Add(s.opts.AuthTimeout)
	_ = s.conn.SetWriteDeadline(deadline)
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(challenge)); err != nil {
		s.logger.Warn("发送挑战失败", "error", err)
		return false
	}

	_ = s.conn.SetReadDeadline(deadline)
	msgType, payload, err := s.conn.ReadMessage()
	if err != nil {
		s.logger.Warn("等待认证应答失败", "error", err)
		return false
	}
	if msgType != websocket.TextMessage {
		s.closeWith(websocket.CloseUnsupportedData, "authentication reply must be a text frame")
		return false
	}

	var chain auth.Chain
	if err := json.Unmarshal(payload, &chain); err != nil {
		s.closeWith(websocket.ClosePolicyViolation, "malformed auth chain")
		return false
	}
	address, err := chain.Verify(challenge, time.Now())
	if err != nil {
		s.logger.Warn("签名链校验失败", "error", err)
		s.closeWith(websocket.ClosePolicyViolation, "authentication failed")
		return false
	}
	s.address = address
	return true
}

func (s *session) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.opts.WriteTimeout))
}

// readLoop 读二进制帧并分发，任何读错误结束会话
func (s *session) readLoop() {
	pongWait := s.opts.PingInterval * 2
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("WS 读取中断", "address", s.address, "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		if msgType != websocket.BinaryMessage {
			continue
		}

		var packet pb.WsPacket
		if err := packet.Unmarshal(payload); err != nil {
			s.logger.Warn("无法解析的帧", "address", s.address, "error", err)
			continue
		}
		s.dispatch(&packet)
	}
}

// writeLoop 串行写出，并按周期发 ping 控制帧
func (s *session) writeLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case packet := <-s.out:
			data, err := packet.Marshal()
			if err != nil {
				s.logger.Error("编码帧失败", "error", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.logger.Warn("WS 写出失败", "address", s.address, "error", err)
				s.cancel()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.opts.WriteTimeout)); err != nil {
				s.cancel()
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// send 入写队列；会话结束时放弃
func (s *session) send(packet *pb.WsPacket) {
	select {
	case s.out <- packet:
	case <-s.ctx.Done():
	}
}

// dispatch 按信封载荷分发。过程调用在新 goroutine 中执行，
// 读循环不被慢调用阻塞。
func (s *session) dispatch(packet *pb.WsPacket) {
	msgID := packet.GetMessageIdentifier()
	switch m := packet.GetMessage().(type) {
	case *pb.WsPacket_CreatePort:
		s.handleCreatePort(msgID, m.CreatePort)
	case *pb.WsPacket_RequestModule:
		s.handleRequestModule(msgID, m.RequestModule)
	case *pb.WsPacket_Request:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleRequest(msgID, m.Request)
		}()
	default:
		s.sendError(msgID, codeBadRequest, "unsupported packet")
	}
}

func (s *session) handleCreatePort(msgID uint32, req *pb.CreatePort) {
	s.mu.Lock()
	s.nextPortID++
	portID := s.nextPortID
	s.ports[portID] = &port{name: req.GetPortName()}
	s.mu.Unlock()

	s.send(&pb.WsPacket{
		MessageIdentifier: msgID,
		Message: &pb.WsPacket_CreatePortResponse{
			CreatePortResponse: &pb.CreatePortResponse{PortId: portID},
		},
	})
}

func (s *session) handleRequestModule(msgID uint32, req *pb.RequestModule) {
	if req.GetModuleName() != ModuleQuests {
		s.sendError(msgID, codeBadRequest, "unknown module: "+req.GetModuleName())
		return
	}

	s.mu.Lock()
	p, ok := s.ports[req.GetPortId()]
	if ok {
		p.module = req.GetModuleName()
	}
	s.mu.Unlock()
	if !ok {
		s.sendError(msgID, codeBadRequest, "unknown port")
		return
	}

	s.send(&pb.WsPacket{
		MessageIdentifier: msgID,
		Message: &pb.WsPacket_RequestModuleResponse{
			RequestModuleResponse: &pb.RequestModuleResponse{PortId: req.GetPortId()},
		},
	})
}

// questsPort 取出已加载 QuestsService 模块的端口
func (s *session) questsPort(portID uint32) (*port, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ports[portID]
	if !ok || p.module != ModuleQuests {
		return nil, false
	}
	return p, true
}

func (s *session) respond(msgID uint32, payload pb.Message) {
	data, err := payload.Marshal()
	if err != nil {
		s.sendError(msgID, codeInternal, "internal server error")
		return
	}
	s.send(&pb.WsPacket{
		MessageIdentifier: msgID,
		Message:           &pb.WsPacket_Response{Response: &pb.Response{Payload: data}},
	})
}

func (s *session) sendError(msgID uint32, code uint32, message string) {
	s.send(&pb.WsPacket{
		MessageIdentifier: msgID,
		Message: &pb.WsPacket_RemoteError{
			RemoteError: &pb.RemoteError{ErrorCode: code, ErrorMessage: message},
		},
	})
}

// stream 向端口推送订阅流消息
func (s *session) stream(portID uint32, payload []byte) {
	s.send(&pb.WsPacket{
		Message: &pb.WsPacket_StreamMessage{
			StreamMessage: &pb.StreamMessage{PortId: portID, Payload: payload},
		},
	})
}
