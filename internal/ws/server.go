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

// Package ws 是平台的 WebSocket 前门：每个连接先完成签名链握手，
// 之后在多路复用端口上承载 QuestsService 过程调用与订阅流。
// 帧格式：握手为文本帧，认证通过后全部为 WsPacket 二进制帧。
package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quest-platform/internal/app"
	"quest-platform/internal/updates"
	"quest-platform/pkg/log"
)

const (
	defaultAuthTimeout  = 30 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Options WS 服务配置
type Options struct {
	Addr         string        // 监听地址，如 :3001
	AuthTimeout  time.Duration // 握手应答时限
	PingInterval time.Duration // 应用层 ping 周期
	WriteTimeout time.Duration // 单帧写超时
}

func (o *Options) applyDefaults() {
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = defaultAuthTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
}

// Server WebSocket 服务
type Server struct {
	svc      app.QuestService
	bus      updates.Bus
	logger   *log.Logger
	opts     Options
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer 创建 WS 服务
func NewServer(svc app.QuestService, bus updates.Bus, logger *log.Logger, opts Options) *Server {
	opts.applyDefaults()
	s := &Server{
		svc:    svc,
		bus:    bus,
		logger: logger,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// 客户端为游戏内嵌场景与脚本，来源校验交由签名链
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	s.httpSrv = &http.Server{Addr: opts.Addr, Handler: mux}
	return s
}

// Run 阻塞运行直至 Shutdown 或监听失败
func (s *Server) Run() error {
	s.logger.Info("WS 服务启动", "addr", s.opts.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ws server: %w", err)
	}
	return nil
}

// Shutdown 停止接受新连接并关闭监听。已建立的会话随连接关闭退出。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WS 升级失败", "remote", r.RemoteAddr, "error", err)
		return
	}
	sess := newSession(conn, s.svc, s.bus, s.logger, s.opts)
	sess.run()
}

// newChallenge 生成握手挑战串，随机段为 32 个十六进制字符
func newChallenge() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate challenge: %w", err)
	}
	return "signature_challenge_" + hex.EncodeToString(buf), nil
}
