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

package pb

// transport.proto 的消息：WS 二进制帧信封与多路复用控制。

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// WsPacket WS 帧统一信封。message_identifier 由客户端分配，
// 响应帧回带同一标识以配对请求。
type WsPacket struct {
	MessageIdentifier uint32
	Message           isWsPacket_Message
}

type isWsPacket_Message interface {
	isWsPacket_Message()
}

type WsPacket_CreatePort struct {
	CreatePort *CreatePort
}

type WsPacket_CreatePortResponse struct {
	CreatePortResponse *CreatePortResponse
}

type WsPacket_RequestModule struct {
	RequestModule *RequestModule
}

type WsPacket_RequestModuleResponse struct {
	RequestModuleResponse *RequestModuleResponse
}

type WsPacket_Request struct {
	Request *Request
}

type WsPacket_Response struct {
	Response *Response
}

type WsPacket_StreamMessage struct {
	StreamMessage *StreamMessage
}

type WsPacket_RemoteError struct {
	RemoteError *RemoteError
}

func (*WsPacket_CreatePort) isWsPacket_Message() {}

func (*WsPacket_CreatePortResponse) isWsPacket_Message() {}

func (*WsPacket_RequestModule) isWsPacket_Message() {}

func (*WsPacket_RequestModuleResponse) isWsPacket_Message() {}

func (*WsPacket_Request) isWsPacket_Message() {}

func (*WsPacket_Response) isWsPacket_Message() {}

func (*WsPacket_StreamMessage) isWsPacket_Message() {}

func (*WsPacket_RemoteError) isWsPacket_Message() {}

func (x *WsPacket) GetMessageIdentifier() uint32 {
	if x != nil {
		return x.MessageIdentifier
	}
	return 0
}

func (x *WsPacket) GetMessage() isWsPacket_Message {
	if x != nil {
		return x.Message
	}
	return nil
}

func (x *WsPacket) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *WsPacket) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendUint32(b, 1, x.MessageIdentifier)
	switch m := x.Message.(type) {
	case *WsPacket_CreatePort:
		b = appendMessage(b, 2, m.CreatePort.appendTo(nil))
	case *WsPacket_CreatePortResponse:
		b = appendMessage(b, 3, m.CreatePortResponse.appendTo(nil))
	case *WsPacket_RequestModule:
		b = appendMessage(b, 4, m.RequestModule.appendTo(nil))
	case *WsPacket_RequestModuleResponse:
		b = appendMessage(b, 5, m.RequestModuleResponse.appendTo(nil))
	case *WsPacket_Request:
		b = appendMessage(b, 6, m.Request.appendTo(nil))
	case *WsPacket_Response:
		b = appendMessage(b, 7, m.Response.appendTo(nil))
	case *WsPacket_StreamMessage:
		b = appendMessage(b, 8, m.StreamMessage.appendTo(nil))
	case *WsPacket_RemoteError:
		b = appendMessage(b, 9, m.RemoteError.appendTo(nil))
	}
	return b
}

func (x *WsPacket) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.VarintType:
			x.MessageIdentifier = uint32(s.varint())
		case s.num == 2 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(CreatePort)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_CreatePort{CreatePort: m}
			}
		case s.num == 3 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(CreatePortResponse)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_CreatePortResponse{CreatePortResponse: m}
			}
		case s.num == 4 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(RequestModule)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_RequestModule{RequestModule: m}
			}
		case s.num == 5 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(RequestModuleResponse)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_RequestModuleResponse{RequestModuleResponse: m}
			}
		case s.num == 6 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(Request)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_Request{Request: m}
			}
		case s.num == 7 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(Response)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_Response{Response: m}
			}
		case s.num == 8 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(StreamMessage)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_StreamMessage{StreamMessage: m}
			}
		case s.num == 9 && s.typ == protowire.BytesType:
			if body := s.sub(); s.err == nil {
				m := new(RemoteError)
				if err := m.Unmarshal(body); err != nil {
					return err
				}
				x.Message = &WsPacket_RemoteError{RemoteError: m}
			}
		default:
			s.skip()
		}
	}
	return s.err
}

type CreatePort struct {
	PortName string
}

func (x *CreatePort) GetPortName() string {
	if x != nil {
		return x.PortName
	}
	return ""
}

func (x *CreatePort) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *CreatePort) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendString(b, 1, x.PortName)
}

func (x *CreatePort) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.PortName = s.stringVal()
			continue
		}
		s.skip()
	}
	return s.err
}

type CreatePortResponse struct {
	PortId uint32
}

func (x *CreatePortResponse) GetPortId() uint32 {
	if x != nil {
		return x.PortId
	}
	return 0
}

func (x *CreatePortResponse) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *CreatePortResponse) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendUint32(b, 1, x.PortId)
}

func (x *CreatePortResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.VarintType {
			x.PortId = uint32(s.varint())
			continue
		}
		s.skip()
	}
	return s.err
}

type RequestModule struct {
	PortId     uint32
	ModuleName string
}

func (x *RequestModule) GetPortId() uint32 {
	if x != nil {
		return x.PortId
	}
	return 0
}

func (x *RequestModule) GetModuleName() string {
	if x != nil {
		return x.ModuleName
	}
	return ""
}

func (x *RequestModule) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *RequestModule) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendUint32(b, 1, x.PortId)
	return appendString(b, 2, x.ModuleName)
}

func (x *RequestModule) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.VarintType:
			x.PortId = uint32(s.varint())
		case s.num == 2 && s.typ == protowire.BytesType:
			x.ModuleName = s.stringVal()
		default:
			s.skip()
		}
	}
	return s.err
}

type RequestModuleResponse struct {
	PortId uint32
}

func (x *RequestModuleResponse) GetPortId() uint32 {
	if x != nil {
		return x.PortId
	}
	return 0
}

func (x *RequestModuleResponse) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *RequestModuleResponse) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendUint32(b, 1, x.PortId)
}

func (x *RequestModuleResponse) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.VarintType {
			x.PortId = uint32(s.varint())
			continue
		}
		s.skip()
	}
	return s.err
}

// Request 过程调用，payload 为对应过程请求消息的编码字节
type Request struct {
	PortId    uint32
	Procedure string
	Payload   []byte
}

func (x *Request) GetPortId() uint32 {
	if x != nil {
		return x.PortId
	}
	return 0
}

func (x *Request) GetProcedure() string {
	if x != nil {
		return x.Procedure
	}
	return ""
}

func (x *Request) GetPayload() []byte {
	if x != nil {
		return x.Payload
	}
	return nil
}

func (x *Request) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Request) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendUint32(b, 1, x.PortId)
	b = appendString(b, 2, x.Procedure)
	return appendBytes(b, 3, x.Payload)
}

func (x *Request) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.VarintType:
			x.PortId = uint32(s.varint())
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Procedure = s.stringVal()
		case s.num == 3 && s.typ == protowire.BytesType:
			x.Payload = s.bytesVal()
		default:
			s.skip()
		}
	}
	return s.err
}

type Response struct {
	Payload []byte
}

func (x *Response) GetPayload() []byte {
	if x != nil {
		return x.Payload
	}
	return nil
}

func (x *Response) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *Response) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	return appendBytes(b, 1, x.Payload)
}

func (x *Response) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		if s.num == 1 && s.typ == protowire.BytesType {
			x.Payload = s.bytesVal()
			continue
		}
		s.skip()
	}
	return s.err
}

// StreamMessage 服务端主动推送，payload 为 UserUpdate 的编码字节
type StreamMessage struct {
	PortId  uint32
	Payload []byte
}

func (x *StreamMessage) GetPortId() uint32 {
	if x != nil {
		return x.PortId
	}
	return 0
}

func (x *StreamMessage) GetPayload() []byte {
	if x != nil {
		return x.Payload
	}
	return nil
}

func (x *StreamMessage) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *StreamMessage) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendUint32(b, 1, x.PortId)
	return appendBytes(b, 2, x.Payload)
}

func (x *StreamMessage) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.VarintType:
			x.PortId = uint32(s.varint())
		case s.num == 2 && s.typ == protowire.BytesType:
			x.Payload = s.bytesVal()
		default:
			s.skip()
		}
	}
	return s.err
}

type RemoteError struct {
	ErrorCode    uint32
	ErrorMessage string
}

func (x *RemoteError) GetErrorCode() uint32 {
	if x != nil {
		return x.ErrorCode
	}
	return 0
}

func (x *RemoteError) GetErrorMessage() string {
	if x != nil {
		return x.ErrorMessage
	}
	return ""
}

func (x *RemoteError) Marshal() ([]byte, error) { return x.appendTo(nil), nil }

func (x *RemoteError) appendTo(b []byte) []byte {
	if x == nil {
		return b
	}
	b = appendUint32(b, 1, x.ErrorCode)
	return appendString(b, 2, x.ErrorMessage)
}

func (x *RemoteError) Unmarshal(data []byte) error {
	s := scanner{buf: data}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.VarintType:
			x.ErrorCode = uint32(s.varint())
		case s.num == 2 && s.typ == protowire.BytesType:
			x.ErrorMessage = s.stringVal()
		default:
			s.skip()
		}
	}
	return s.err
}
