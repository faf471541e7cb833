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

import (
	"bytes"
	"reflect"
	"testing"
)

var _ = []Message{
	(*Event)(nil),
	(*QuestDefinition)(nil),
	(*UserUpdate)(nil),
	(*WsPacket)(nil),
	(*AbortQuestResponse)(nil),
}

// 字节向量按 proto3 wire 格式手算，钉住字段编号不被无意改动。

func TestActionWireBytes(t *testing.T) {
	a := &Action{Type: "JUMP", Parameters: map[string]string{"x": "1"}}
	got, err := a.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := []byte{
		0x0a, 0x04, 'J', 'U', 'M', 'P', // type = 1
		0x12, 0x06, 0x0a, 0x01, 'x', 0x12, 0x01, '1', // parameters = 2
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("wire bytes = %x, want %x", got, want)
	}
}

func TestActionMapSortedAndDeterministic(t *testing.T) {
	a := &Action{Type: "VISIT", Parameters: map[string]string{"b": "2", "a": "1"}}
	first, err := a.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	wantTail := []byte{
		0x12, 0x06, 0x0a, 0x01, 'a', 0x12, 0x01, '1',
		0x12, 0x06, 0x0a, 0x01, 'b', 0x12, 0x01, '2',
	}
	if !bytes.HasSuffix(first, wantTail) {
		t.Fatalf("map entries not in key order: %x", first)
	}
	for i := 0; i < 20; i++ {
		again, _ := a.Marshal()
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding not deterministic: %x vs %x", first, again)
		}
	}
}

func TestWsPacketResponseWireBytes(t *testing.T) {
	p := &WsPacket{
		MessageIdentifier: 7,
		Message:           &WsPacket_Response{Response: &Response{Payload: []byte{0xaa}}},
	}
	got, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := []byte{
		0x08, 0x07, // message_identifier = 1
		0x3a, 0x03, 0x0a, 0x01, 0xaa, // response = 7
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("wire bytes = %x, want %x", got, want)
	}
}

func TestWsPacketRequestRoundTrip(t *testing.T) {
	inner, err := (&StartQuestRequest{QuestId: "quest-7"}).Marshal()
	if err != nil {
		t.Fatalf("marshal inner: %v", err)
	}
	p := &WsPacket{
		MessageIdentifier: 3,
		Message: &WsPacket_Request{Request: &Request{
			PortId:    1,
			Procedure: "StartQuest",
			Payload:   inner,
		}},
	}
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got WsPacket
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.GetMessageIdentifier() != 3 {
		t.Fatalf("message_identifier = %d, want 3", got.GetMessageIdentifier())
	}
	req, ok := got.GetMessage().(*WsPacket_Request)
	if !ok {
		t.Fatalf("oneof = %T, want *WsPacket_Request", got.GetMessage())
	}
	if req.Request.GetPortId() != 1 || req.Request.GetProcedure() != "StartQuest" {
		t.Fatalf("request = %+v", req.Request)
	}
	var start StartQuestRequest
	if err := start.Unmarshal(req.Request.GetPayload()); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if start.GetQuestId() != "quest-7" {
		t.Fatalf("quest_id = %q, want quest-7", start.GetQuestId())
	}
}

func TestUserUpdateStateRoundTrip(t *testing.T) {
	u := &UserUpdate{
		UserAddress: "0xabc",
		Message: &UserUpdate_QuestStateUpdate{QuestStateUpdate: &QuestStateUpdate{
			QuestInstanceId: "qi-1",
			QuestId:         "q-1",
			EventId:         "ev-9",
			QuestState: &QuestState{
				CurrentSteps: map[string]*StepContent{
					"step-a": {TasksCompleted: []*Task{{Id: "t1"}}},
					"step-b": {ToDos: []*Task{{
						Id: "t2",
						ActionItems: []*Action{{
							Type:       "VISIT",
							Parameters: map[string]string{"location": "gym"},
						}},
					}}},
				},
				StepsLeft:      2,
				RequiredSteps:  []string{"step-b", "_END_"},
				StepsCompleted: []string{"step-0"},
			},
		}},
	}

	data, err := u.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got UserUpdate
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(&got, u) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", &got, u)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	data, err := (&Event{Id: "ev-1", Address: "0xabc"}).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// 追加字段 99（varint）与字段 100（length-delimited），旧解码器应跳过
	data = append(data, 0x98, 0x06, 0x01)
	data = append(data, 0xa2, 0x06, 0x02, 0x01, 0x02)

	var got Event
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal with unknown fields: %v", err)
	}
	if got.GetId() != "ev-1" || got.GetAddress() != "0xabc" {
		t.Fatalf("known fields lost: %+v", &got)
	}
}

func TestZeroValuesOmitted(t *testing.T) {
	if data, _ := (&Quest{}).Marshal(); len(data) != 0 {
		t.Fatalf("empty Quest encoded %d bytes: %x", len(data), data)
	}
	if data, _ := (&WsPacket{}).Marshal(); len(data) != 0 {
		t.Fatalf("empty WsPacket encoded %d bytes: %x", len(data), data)
	}
	var ev Event
	if err := ev.Unmarshal(nil); err != nil {
		t.Fatalf("unmarshal empty payload: %v", err)
	}
	if ev.GetId() != "" || ev.GetAction() != nil {
		t.Fatalf("empty payload produced %+v", &ev)
	}
}

func TestTruncatedInputFails(t *testing.T) {
	data, err := (&Action{Type: "JUMP", Parameters: map[string]string{"x": "1"}}).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Action
	if err := got.Unmarshal(data[:len(data)-1]); err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func TestNilGetters(t *testing.T) {
	var q *Quest
	if q.GetId() != "" || q.GetDefinition() != nil || q.GetActive() {
		t.Fatal("nil Quest getters must return zero values")
	}
	var inst *QuestInstance
	if inst.GetQuest() != nil || inst.GetState() != nil || inst.GetStartTimestamp() != 0 {
		t.Fatal("nil QuestInstance getters must return zero values")
	}
}
