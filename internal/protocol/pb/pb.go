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

// Package pb 平台的线上消息，与 ../quests.proto、../transport.proto 一一对应，
// 基于 protowire 手写编解码而非 protoc 生成。字段编号是线上契约，
// 本包与 proto 文件必须同步修改。
//
// 编码遵循 proto3 语义：标量零值不落线，未知字段跳过，map 按键排序，
// 同一消息总是编出同一串字节。访问器按生成代码惯例对 nil 接收者返回零值。
package pb

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message 本包所有消息的统一编解码接口
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// scanner 顺序遍历一段 wire 编码中的字段。取值方法出错时记下
// err 并返回零值，next 随即停止迭代。
type scanner struct {
	buf []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func (s *scanner) next() bool {
	if s.err != nil || len(s.buf) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(s.buf)
	if n < 0 {
		s.err = protowire.ParseError(n)
		return false
	}
	s.num, s.typ, s.buf = num, typ, s.buf[n:]
	return true
}

func (s *scanner) fail(n int) {
	if s.err == nil {
		s.err = protowire.ParseError(n)
	}
}

func (s *scanner) stringVal() string {
	v, n := protowire.ConsumeString(s.buf)
	if n < 0 {
		s.fail(n)
		return ""
	}
	s.buf = s.buf[n:]
	return v
}

// sub 取出一段长度前缀的子消息，返回切片与输入共享底层数组
func (s *scanner) sub() []byte {
	v, n := protowire.ConsumeBytes(s.buf)
	if n < 0 {
		s.fail(n)
		return nil
	}
	s.buf = s.buf[n:]
	return v
}

// bytesVal 取 bytes 字段并拷贝，供消息长期持有
func (s *scanner) bytesVal() []byte {
	v := s.sub()
	if s.err != nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (s *scanner) varint() uint64 {
	v, n := protowire.ConsumeVarint(s.buf)
	if n < 0 {
		s.fail(n)
		return 0
	}
	s.buf = s.buf[n:]
	return v
}

// skip 跳过当前字段的值，未知字段沿用此路径
func (s *scanner) skip() {
	n := protowire.ConsumeFieldValue(s.num, s.typ, s.buf)
	if n < 0 {
		s.fail(n)
		return
	}
	s.buf = s.buf[n:]
}

// ---- 编码辅助。标量零值返回原缓冲，不写字段。 ----

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

// appendMessage 无条件写入子消息字段；可选消息的省略由调用方判定
func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// repeated string 的元素按位置存在，空串也要落线
func appendStringList(b []byte, num protowire.Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func appendStringMap(b []byte, num protowire.Number, m map[string]string) []byte {
	if len(m) == 0 {
		return b
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendString(entry, 2, m[k])
		b = appendMessage(b, num, entry)
	}
	return b
}

// consumeStringMapEntry 解出一条 map<string,string> 条目。
// 缺失的键或值按 proto3 规则取零值。
func consumeStringMapEntry(b []byte) (string, string, error) {
	var key, val string
	s := scanner{buf: b}
	for s.next() {
		switch {
		case s.num == 1 && s.typ == protowire.BytesType:
			key = s.stringVal()
		case s.num == 2 && s.typ == protowire.BytesType:
			val = s.stringVal()
		default:
			s.skip()
		}
	}
	return key, val, s.err
}
